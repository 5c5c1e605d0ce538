package models

import (
	"errors"
	"testing"
	"unsafe"
)

func TestParseUnitSystem(t *testing.T) {
	tests := []struct {
		input     string
		expected  UnitSystem
		expectErr bool
	}{
		{"metric", UnitsMetric, false},
		{"imperial", UnitsImperial, false},
		{" Imperial ", UnitsImperial, false},
		{"kelvin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			units, err := ParseUnitSystem(tt.input)
			if tt.expectErr {
				if !errors.Is(err, ErrInvalidUnits) {
					t.Errorf("Expected ErrInvalidUnits, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if units != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, units)
			}
		})
	}
}

func TestUnitMapping(t *testing.T) {
	tests := []struct {
		units     UnitSystem
		tempParam string
		windParam string
		tempLabel string
		windLabel string
	}{
		{UnitsMetric, "celsius", "kmh", "°C", "km/h"},
		{UnitsImperial, "fahrenheit", "mph", "°F", "mph"},
	}

	for _, tt := range tests {
		t.Run(string(tt.units), func(t *testing.T) {
			if got := tt.units.TemperatureParam(); got != tt.tempParam {
				t.Errorf("TemperatureParam() = %q, want %q", got, tt.tempParam)
			}
			if got := tt.units.WindSpeedParam(); got != tt.windParam {
				t.Errorf("WindSpeedParam() = %q, want %q", got, tt.windParam)
			}
			if got := tt.units.TemperatureLabel(); got != tt.tempLabel {
				t.Errorf("TemperatureLabel() = %q, want %q", got, tt.tempLabel)
			}
			if got := tt.units.WindSpeedLabel(); got != tt.windLabel {
				t.Errorf("WindSpeedLabel() = %q, want %q", got, tt.windLabel)
			}
		})
	}

	if len(unitTable) != 2 {
		t.Errorf("Expected exactly 2 unit systems, got %d", len(unitTable))
	}
	if UnitSystem("kelvin").Valid() {
		t.Error("kelvin should not be a valid unit system")
	}
}

func TestLocationCandidateLabel(t *testing.T) {
	tests := []struct {
		name      string
		candidate LocationCandidate
		expected  string
	}{
		{"All fields", LocationCandidate{Name: "Bijnor", AdminRegion: "Uttar Pradesh", Country: "India"}, "Bijnor, Uttar Pradesh, India"},
		{"No admin region", LocationCandidate{Name: "Monaco", Country: "Monaco"}, "Monaco, Monaco"},
		{"No country", LocationCandidate{Name: "Somewhere", AdminRegion: "Region"}, "Somewhere, Region"},
		{"Current position", LocationCandidate{Name: CurrentLocationName, Latitude: 1, Longitude: 2}, "Your Location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Label(); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConditionDescription(t *testing.T) {
	if got := ConditionDescription(3); got != "Overcast" {
		t.Errorf("Expected Overcast, got %q", got)
	}
	if got := ConditionDescription(42); got != "" {
		t.Errorf("Expected empty description for unknown code, got %q", got)
	}
}

func TestParseUnitSystemDoesNotAliasInput(t *testing.T) {
	// Simulates a string backed by a buffer the caller reuses
	buf := []byte("imperial")
	units, err := ParseUnitSystem(unsafe.String(&buf[0], len(buf)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	copy(buf, "metrical")
	if units != UnitsImperial {
		t.Errorf("Parsed units changed with the input buffer: %q", units)
	}
}
