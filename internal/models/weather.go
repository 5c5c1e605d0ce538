package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnitSystem selects the temperature and wind speed units used for both request
// parameters and display
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// ErrInvalidUnits is returned for any unit system other than metric or imperial
var ErrInvalidUnits = errors.New("unit system must be metric or imperial")

type unitSpec struct {
	temperatureParam string
	windSpeedParam   string
	temperatureLabel string
	windSpeedLabel   string
}

var unitTable = map[UnitSystem]unitSpec{
	UnitsMetric: {
		temperatureParam: "celsius",
		windSpeedParam:   "kmh",
		temperatureLabel: "°C",
		windSpeedLabel:   "km/h",
	},
	UnitsImperial: {
		temperatureParam: "fahrenheit",
		windSpeedParam:   "mph",
		temperatureLabel: "°F",
		windSpeedLabel:   "mph",
	},
}

// ParseUnitSystem accepts "metric" or "imperial" (case-insensitive)
func ParseUnitSystem(s string) (UnitSystem, error) {
	// Return the package constant so the result never aliases the caller's buffer
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnits, s)
}

func (u UnitSystem) Valid() bool {
	_, ok := unitTable[u]
	return ok
}

// TemperatureParam is the Open-Meteo temperature_unit value
func (u UnitSystem) TemperatureParam() string { return unitTable[u].temperatureParam }

// WindSpeedParam is the Open-Meteo windspeed_unit value
func (u UnitSystem) WindSpeedParam() string { return unitTable[u].windSpeedParam }

func (u UnitSystem) TemperatureLabel() string { return unitTable[u].temperatureLabel }

func (u UnitSystem) WindSpeedLabel() string { return unitTable[u].windSpeedLabel }

// CurrentConditions represents the instantaneous observation from Open-Meteo
type CurrentConditions struct {
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"wind_speed"`
	WindDirection *float64 `json:"wind_direction"`
	ConditionCode *int     `json:"condition_code"` // WMO weather code
	Time          string   `json:"time"`           // local time, e.g. "2024-05-01T13:00"
}

// ObservedAt parses Time in the given location
func (c *CurrentConditions) ObservedAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(TimeLayout, c.Time, loc)
}

// TimeLayout is the timestamp layout Open-Meteo uses for hourly and current data
const TimeLayout = "2006-01-02T15:04"

// HourlySeries holds parallel hourly sequences aligned by position with Time
type HourlySeries struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature"`
	RelativeHumidity []*float64 `json:"relative_humidity"`
	WindSpeed        []*float64 `json:"wind_speed"`
}

// DailySeries holds parallel daily sequences aligned by position with Time
type DailySeries struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_max"`
	TemperatureMin   []*float64 `json:"temperature_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_max"`
}

// ForecastResult is the normalized forecast. Any section may be nil when the
// service did not return it.
type ForecastResult struct {
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timezone  string             `json:"timezone"`
	Units     UnitSystem         `json:"units"`
	Current   *CurrentConditions `json:"current,omitempty"`
	Hourly    *HourlySeries      `json:"hourly,omitempty"`
	Daily     *DailySeries       `json:"daily,omitempty"`
}

// HourlyWindow is the display slice of the hourly series
type HourlyWindow struct {
	Times        []string   `json:"times"`
	Labels       []string   `json:"labels"`
	Temperatures []*float64 `json:"temperatures"`
}
