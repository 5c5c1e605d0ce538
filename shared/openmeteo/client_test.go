package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestGetJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Bijnor" {
			t.Errorf("Expected name=Bijnor, got %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "weather-app/") {
			t.Errorf("Unexpected User-Agent: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": 42}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil)

	var out struct {
		Value int `json:"value"`
	}
	err := client.GetJSON(context.Background(), "test", server.URL, map[string]string{"name": "Bijnor"}, &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("Expected 42, got %d", out.Value)
	}
}

func TestGetJSONErrors(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		expectStatus int
		expectReason string
	}{
		{
			name: "Server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectStatus: http.StatusInternalServerError,
		},
		{
			name: "Bad request with reason",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
			},
			expectStatus: http.StatusBadRequest,
			expectReason: "Latitude must be in range of -90 to 90°.",
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{not json`))
			},
			expectStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(5*time.Second, nil)
			var out map[string]any
			err := client.GetJSON(context.Background(), "test", server.URL, nil, &out)

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("Expected *TransportError, got %v", err)
			}
			if te.StatusCode != tt.expectStatus {
				t.Errorf("Expected status %d, got %d", tt.expectStatus, te.StatusCode)
			}
			if te.Reason != tt.expectReason {
				t.Errorf("Expected reason %q, got %q", tt.expectReason, te.Reason)
			}
			if te.Error() == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestGetJSONTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(50*time.Millisecond, nil)
	var out map[string]any
	err := client.GetJSON(context.Background(), "test", server.URL, nil, &out)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError on timeout, got %v", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("Expected no status code on timeout, got %d", te.StatusCode)
	}
}

func TestGetJSONUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(time.Second, nil)
	var out map[string]any
	err := client.GetJSON(context.Background(), "test", url, nil, &out)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError for unreachable server, got %v", err)
	}
}

func TestRateLimiterCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	// One token per hour with an empty bucket: the second call must wait
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	client := NewClient(time.Second, limiter)

	var out map[string]any
	if err := client.GetJSON(context.Background(), "test", server.URL, nil, &out); err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.GetJSON(ctx, "test", server.URL, nil, &out)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError when rate limit wait is canceled, got %v", err)
	}
}

func TestNewLimiter(t *testing.T) {
	if l := NewLimiter(0, 0); l.Limit() != rate.Inf {
		t.Errorf("Expected unlimited limiter for rps=0, got %v", l.Limit())
	}
	if l := NewLimiter(2, 0); l.Burst() != 1 {
		t.Errorf("Expected burst to be at least 1, got %d", l.Burst())
	}
}
