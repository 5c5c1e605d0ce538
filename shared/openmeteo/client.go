package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const userAgent = "weather-app/1.0"

// TransportError reports a failed exchange with an Open-Meteo endpoint: network
// failure, timeout, non-2xx status or a reply that is not valid JSON
type TransportError struct {
	Op         string
	URL        string
	StatusCode int    // 0 when no response was received
	Reason     string // Open-Meteo "reason" field, when present
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Reason != "":
		return fmt.Sprintf("%s: API returned status %d: %s", e.Op, e.StatusCode, e.Reason)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: API returned status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client performs GET requests against Open-Meteo with a fixed per-request
// timeout, no retries, and a shared rate limiter
type Client struct {
	http *resty.Client
}

// NewLimiter returns the limiter shared by all Open-Meteo clients of a process.
// rps <= 0 disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func NewClient(timeout time.Duration, limiter *rate.Limiter) *Client {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)

	if limiter != nil {
		client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
			if err := limiter.Wait(req.Context()); err != nil {
				return fmt.Errorf("rate limit wait canceled: %w", err)
			}
			return nil
		})
	}

	return &Client{http: client}
}

// GetJSON issues a GET to endpoint with params and decodes a 2xx JSON body into out.
// Every failure is returned as *TransportError.
func (c *Client) GetJSON(ctx context.Context, op, endpoint string, params map[string]string, out any) error {
	log.Printf("Fetching %s from: %s", op, endpoint)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}

	if !resp.IsSuccess() {
		return &TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode(),
			Reason:     errorReason(resp.Body()),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{
			Op:  op,
			URL: endpoint,
			Err: fmt.Errorf("failed to decode response: %w", err),
		}
	}

	log.Printf("Fetched %s in %v", op, resp.Time().Round(time.Millisecond))
	return nil
}

// errorReason extracts the reason from an Open-Meteo error body
// ({"error": true, "reason": "..."})
func errorReason(body []byte) string {
	var apiErr struct {
		Error  bool   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || !apiErr.Error {
		return ""
	}
	return apiErr.Reason
}
