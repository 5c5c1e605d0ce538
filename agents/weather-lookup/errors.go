package weatherlookup

import (
	"errors"

	"weather-app/shared/openmeteo"
)

// TransportError is returned when Open-Meteo cannot be reached, times out or
// answers with a non-success status
type TransportError = openmeteo.TransportError

// ErrNoSelection is returned when a forecast is requested before any location
// has been selected
var ErrNoSelection = errors.New("no location selected")

// LocationUnavailableError reports that the current position could not be
// obtained (permission denied, unsupported, malformed payload)
type LocationUnavailableError struct {
	Reason string
}

func (e *LocationUnavailableError) Error() string {
	if e.Reason == "" {
		return "current location unavailable"
	}
	return "current location unavailable: " + e.Reason
}

// IsTransportError reports whether err is (or wraps) a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
