package weatherlookup

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// CoordinateSource supplies the user's current position. Implementations yield
// at most one result per call; failures are *LocationUnavailableError.
type CoordinateSource interface {
	CurrentCoordinates(ctx context.Context) (lat, lon float64, err error)
}

// PayloadSource adapts a browser geolocation payload, either
// {"latitude": .., "longitude": ..} or {"error": "message"}
type PayloadSource []byte

type geolocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     *string  `json:"error"`
}

func (p PayloadSource) CurrentCoordinates(ctx context.Context) (float64, float64, error) {
	return ParseGeolocationPayload(p)
}

// ParseGeolocationPayload decodes the geolocation bridge result. An empty payload
// means the host environment produced no value.
func ParseGeolocationPayload(raw []byte) (float64, float64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, 0, &LocationUnavailableError{Reason: "no location was provided"}
	}

	// Some bridges deliver the payload as a JSON-encoded string
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return ParseGeolocationPayload([]byte(inner))
		}
	}

	var payload geolocationPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return 0, 0, &LocationUnavailableError{Reason: "error parsing location: " + err.Error()}
	}
	if payload.Error != nil {
		return 0, 0, &LocationUnavailableError{Reason: *payload.Error}
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		return 0, 0, &LocationUnavailableError{Reason: "location payload is missing coordinates"}
	}

	return FixedCoordinates{Latitude: *payload.Latitude, Longitude: *payload.Longitude}.CurrentCoordinates(context.Background())
}

// FixedCoordinates is a CoordinateSource for coordinates known up front
type FixedCoordinates struct {
	Latitude  float64
	Longitude float64
}

func (f FixedCoordinates) CurrentCoordinates(ctx context.Context) (float64, float64, error) {
	if math.IsNaN(f.Latitude) || math.IsInf(f.Latitude, 0) || math.IsNaN(f.Longitude) || math.IsInf(f.Longitude, 0) {
		return 0, 0, &LocationUnavailableError{Reason: "coordinates are not finite numbers"}
	}
	return f.Latitude, f.Longitude, nil
}
