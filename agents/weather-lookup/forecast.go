package weatherlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"weather-app/internal/models"
	"weather-app/shared/config"
	"weather-app/shared/openmeteo"
)

var (
	hourlyVariables = []string{"temperature_2m", "relative_humidity_2m", "wind_speed_10m"}
	dailyVariables  = []string{"temperature_2m_max", "temperature_2m_min", "precipitation_sum", "windspeed_10m_max"}
)

// Forecaster retrieves forecast data for a coordinate pair
type Forecaster interface {
	Fetch(ctx context.Context, lat, lon float64, units models.UnitSystem) (*models.ForecastResult, error)
}

// ForecastClient handles interactions with the Open-Meteo forecast API.
// Every call performs a fresh request; caching is layered on by shared/cache.
type ForecastClient struct {
	client *openmeteo.Client
	url    string
}

// forecastResponse keeps each section raw so one malformed section does not
// discard the others
type forecastResponse struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Timezone       string          `json:"timezone"`
	CurrentWeather json.RawMessage `json:"current_weather"`
	Hourly         json.RawMessage `json:"hourly"`
	Daily          json.RawMessage `json:"daily"`
}

type currentWeatherJSON struct {
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"windspeed"`
	WindDirection *float64 `json:"winddirection"`
	WeatherCode   *float64 `json:"weathercode"`
	Time          string   `json:"time"`
}

type hourlyJSON struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	WindSpeed        []*float64 `json:"wind_speed_10m"`
}

type dailyJSON struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"windspeed_10m_max"`
}

func NewForecastClient(cfg *config.OpenMeteoConfig, client *openmeteo.Client) *ForecastClient {
	return &ForecastClient{
		client: client,
		url:    cfg.ForecastURL,
	}
}

// Fetch requests current conditions plus hourly and daily series for one point
func (f *ForecastClient) Fetch(ctx context.Context, lat, lon float64, units models.UnitSystem) (*models.ForecastResult, error) {
	if !units.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUnits, units)
	}

	params := map[string]string{
		"latitude":         strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude":        strconv.FormatFloat(lon, 'f', -1, 64),
		"current_weather":  "true",
		"hourly":           strings.Join(hourlyVariables, ","),
		"daily":            strings.Join(dailyVariables, ","),
		"temperature_unit": units.TemperatureParam(),
		"windspeed_unit":   units.WindSpeedParam(),
		"timezone":         "auto",
	}

	log.Printf("Fetching forecast for %.4f, %.4f (%s)", lat, lon, units)

	var resp forecastResponse
	if err := f.client.GetJSON(ctx, "forecast", f.url, params, &resp); err != nil {
		return nil, err
	}

	return &models.ForecastResult{
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
		Units:     units,
		Current:   decodeCurrent(resp.CurrentWeather),
		Hourly:    decodeHourly(resp.Hourly),
		Daily:     decodeDaily(resp.Daily),
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func decodeCurrent(raw json.RawMessage) *models.CurrentConditions {
	if isAbsent(raw) {
		return nil
	}
	var cw currentWeatherJSON
	if err := json.Unmarshal(raw, &cw); err != nil {
		log.Printf("Warning: ignoring malformed current_weather: %v", err)
		return nil
	}

	current := &models.CurrentConditions{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		WindDirection: cw.WindDirection,
		Time:          cw.Time,
	}
	if cw.WeatherCode != nil {
		code := int(*cw.WeatherCode)
		current.ConditionCode = &code
	}
	return current
}

func decodeHourly(raw json.RawMessage) *models.HourlySeries {
	if isAbsent(raw) {
		return nil
	}
	var h hourlyJSON
	if err := json.Unmarshal(raw, &h); err != nil {
		log.Printf("Warning: ignoring malformed hourly series: %v", err)
		return nil
	}
	if len(h.Time) == 0 {
		return nil
	}

	n := len(h.Time)
	return &models.HourlySeries{
		Time:             h.Time,
		Temperature:      align(h.Temperature, n),
		RelativeHumidity: align(h.RelativeHumidity, n),
		WindSpeed:        align(h.WindSpeed, n),
	}
}

func decodeDaily(raw json.RawMessage) *models.DailySeries {
	if isAbsent(raw) {
		return nil
	}
	var d dailyJSON
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Printf("Warning: ignoring malformed daily series: %v", err)
		return nil
	}
	if len(d.Time) == 0 {
		return nil
	}

	n := len(d.Time)
	return &models.DailySeries{
		Time:             d.Time,
		TemperatureMax:   align(d.TemperatureMax, n),
		TemperatureMin:   align(d.TemperatureMin, n),
		PrecipitationSum: align(d.PrecipitationSum, n),
		WindSpeedMax:     align(d.WindSpeedMax, n),
	}
}

// align returns values resized to n: missing entries are nil, extra entries dropped
func align(values []*float64, n int) []*float64 {
	out := make([]*float64, n)
	copy(out, values)
	return out
}
