package weatherlookup

import (
	"strings"

	"weather-app/internal/models"
)

// WindowHours is the length of the hourly display window
const WindowHours = 24

// SelectWindow returns the [start, end) range of at most size entries starting
// at the exact match of currentTime in times, or at 0 when there is no match
func SelectWindow(times []string, currentTime string, size int) (start, end int) {
	if currentTime != "" {
		for i, t := range times {
			if t == currentTime {
				start = i
				break
			}
		}
	}
	end = start + size
	if end > len(times) {
		end = len(times)
	}
	if end < start {
		end = start
	}
	return start, end
}

// NextHours selects the next size hourly temperatures starting at the current
// observation. Returns nil when the result has no hourly series.
func NextHours(result *models.ForecastResult, size int) *models.HourlyWindow {
	if result == nil || result.Hourly == nil {
		return nil
	}

	currentTime := ""
	if result.Current != nil {
		currentTime = result.Current.Time
	}

	hourly := result.Hourly
	start, end := SelectWindow(hourly.Time, currentTime, size)

	window := &models.HourlyWindow{
		Times:        hourly.Time[start:end],
		Labels:       make([]string, 0, end-start),
		Temperatures: align(hourly.Temperature, len(hourly.Time))[start:end],
	}
	for _, t := range window.Times {
		window.Labels = append(window.Labels, HourLabel(t))
	}
	return window
}

// HourLabel returns the HH:MM part of an Open-Meteo timestamp
func HourLabel(timestamp string) string {
	clock := timestamp
	if i := strings.LastIndex(timestamp, "T"); i >= 0 {
		clock = timestamp[i+1:]
	}
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return clock
}
