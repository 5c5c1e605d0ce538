package weatherlookup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"weather-app/internal/models"
)

type stubGeocoder struct {
	results map[string][]models.LocationCandidate
	err     error
	calls   int
}

func (g *stubGeocoder) ResolveByName(ctx context.Context, query string, maxResults int) ([]models.LocationCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return []models.LocationCandidate{}, nil
	}
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	results := g.results[query]
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

type stubForecaster struct {
	result *models.ForecastResult
	err    error
	calls  int
	last   struct {
		lat, lon float64
		units    models.UnitSystem
	}
}

func (f *stubForecaster) Fetch(ctx context.Context, lat, lon float64, units models.UnitSystem) (*models.ForecastResult, error) {
	f.calls++
	f.last.lat, f.last.lon, f.last.units = lat, lon, units
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.Units = units
	return &r, nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

var bijnorCandidates = []models.LocationCandidate{
	{Name: "Bijnor", AdminRegion: "Uttar Pradesh", Country: "India", Latitude: 29.37, Longitude: 78.13},
	{Name: "Bijnor", AdminRegion: "Uttar Pradesh", Country: "India", Latitude: 26.93, Longitude: 80.95},
}

func sampleResult() *models.ForecastResult {
	return &models.ForecastResult{
		Latitude:  29.37,
		Longitude: 78.13,
		Timezone:  "Asia/Kolkata",
		Current: &models.CurrentConditions{
			Temperature:   floatPtr(31.4),
			WindSpeed:     floatPtr(11.2),
			ConditionCode: intPtr(0),
			Time:          "2024-05-01T10:00",
		},
		Hourly: &models.HourlySeries{
			Time:        []string{"2024-05-01T09:00", "2024-05-01T10:00", "2024-05-01T11:00"},
			Temperature: []*float64{floatPtr(30), floatPtr(31.4), floatPtr(32)},
		},
		Daily: &models.DailySeries{
			Time:             []string{"2024-05-01"},
			TemperatureMax:   []*float64{floatPtr(35.2)},
			TemperatureMin:   []*float64{floatPtr(22.1)},
			PrecipitationSum: []*float64{floatPtr(0)},
			WindSpeedMax:     []*float64{floatPtr(14.5)},
		},
	}
}

func newTestLookup() (*Lookup, *stubGeocoder, *stubForecaster) {
	geo := &stubGeocoder{results: map[string][]models.LocationCandidate{"Bijnor": bijnorCandidates}}
	fc := &stubForecaster{result: sampleResult()}
	return NewLookup(geo, fc, 5), geo, fc
}

func TestSearchSelectsFirstCandidate(t *testing.T) {
	lookup, _, fc := newTestLookup()
	session := NewSession("s1", models.UnitsMetric)
	ctx := context.Background()

	outcome, err := lookup.Search(ctx, session, "Bijnor")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if outcome.Status != StatusFound {
		t.Errorf("Expected status %s, got %s", StatusFound, outcome.Status)
	}
	if len(outcome.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(outcome.Options))
	}
	if outcome.Selected == nil || outcome.Selected.Latitude != 29.37 {
		t.Fatalf("Expected first candidate selected, got %+v", outcome.Selected)
	}
	if labels := outcome.Labels(); labels[0] != "Bijnor, Uttar Pradesh, India" {
		t.Errorf("Unexpected label %q", labels[0])
	}

	view, err := lookup.Forecast(ctx, session)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if fc.last.units != models.UnitsMetric {
		t.Errorf("Expected metric request, got %s", fc.last.units)
	}
	if !strings.HasSuffix(view.Current.Temperature, "°C") {
		t.Errorf("Expected Celsius temperature, got %q", view.Current.Temperature)
	}
	if view.Label != "Bijnor, Uttar Pradesh, India" {
		t.Errorf("Unexpected view label %q", view.Label)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	lookup, geo, fc := newTestLookup()
	session := NewSession("s1", models.UnitsMetric)
	session.Selected = &bijnorCandidates[0]

	outcome, err := lookup.Search(context.Background(), session, "   ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if outcome.Status != StatusNoResults {
		t.Errorf("Expected %s, got %s", StatusNoResults, outcome.Status)
	}
	if outcome.Selected != nil || session.Selected != nil {
		t.Error("An empty search must leave no selection")
	}
	if geo.calls != 0 {
		t.Errorf("Expected no geocoding calls, got %d", geo.calls)
	}

	if _, err := lookup.Forecast(context.Background(), session); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if fc.calls != 0 {
		t.Errorf("Expected no forecast calls, got %d", fc.calls)
	}
}

func TestSearchTransportErrorClearsSelection(t *testing.T) {
	lookup, geo, _ := newTestLookup()
	geo.err = &TransportError{Op: "geocoding", Reason: "connection refused"}

	session := NewSession("s1", models.UnitsMetric)
	session.Options = bijnorCandidates
	session.Selected = &bijnorCandidates[1]

	_, err := lookup.Search(context.Background(), session, "Bijnor")
	if !IsTransportError(err) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if session.Selected != nil || session.Options != nil {
		t.Error("A failed search must clear the session")
	}
}

func TestPick(t *testing.T) {
	lookup, _, fc := newTestLookup()
	session := NewSession("s1", models.UnitsImperial)
	ctx := context.Background()

	if _, err := lookup.Search(ctx, session, "Bijnor"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	tests := []struct {
		index     int
		expectErr bool
	}{
		{1, false},
		{0, false},
		{2, true},
		{-1, true},
	}

	for _, tt := range tests {
		_, err := lookup.Pick(session, tt.index)
		if (err != nil) != tt.expectErr {
			t.Errorf("Pick(%d) error = %v, expectErr %v", tt.index, err, tt.expectErr)
		}
	}

	if _, err := lookup.Pick(session, 1); err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	view, err := lookup.Forecast(ctx, session)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if fc.last.lat != 26.93 || fc.last.lon != 80.95 {
		t.Errorf("Forecast requested for wrong point: %v, %v", fc.last.lat, fc.last.lon)
	}
	if !strings.HasSuffix(view.Current.Temperature, "°F") {
		t.Errorf("Expected Fahrenheit temperature, got %q", view.Current.Temperature)
	}
	if !strings.HasSuffix(view.Current.Wind, "mph") {
		t.Errorf("Expected mph wind, got %q", view.Current.Wind)
	}
}

func TestUseCurrentLocation(t *testing.T) {
	lookup, _, fc := newTestLookup()
	session := NewSession("s1", models.UnitsMetric)
	ctx := context.Background()

	candidate, err := lookup.UseCurrentLocation(ctx, session, FixedCoordinates{Latitude: 51.5, Longitude: -0.12})
	if err != nil {
		t.Fatalf("UseCurrentLocation failed: %v", err)
	}
	if candidate.Name != models.CurrentLocationName {
		t.Errorf("Expected placeholder name, got %q", candidate.Name)
	}
	if session.Selected == nil || session.Selected.Latitude != 51.5 {
		t.Fatalf("Expected current location selected, got %+v", session.Selected)
	}

	view, err := lookup.Forecast(ctx, session)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if view.Label != models.CurrentLocationName {
		t.Errorf("Expected label %q, got %q", models.CurrentLocationName, view.Label)
	}
	if fc.last.lat != 51.5 || fc.last.lon != -0.12 {
		t.Errorf("Forecast requested for wrong point: %v, %v", fc.last.lat, fc.last.lon)
	}
}

func TestUseCurrentLocationUnavailable(t *testing.T) {
	lookup, _, fc := newTestLookup()
	session := NewSession("s1", models.UnitsMetric)
	session.Selected = &bijnorCandidates[0]

	_, err := lookup.UseCurrentLocation(context.Background(), session, PayloadSource(`{"error": "User denied Geolocation"}`))
	var unavailable *LocationUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected LocationUnavailableError, got %v", err)
	}
	if unavailable.Reason != "User denied Geolocation" {
		t.Errorf("Unexpected reason %q", unavailable.Reason)
	}
	if session.Selected != nil {
		t.Error("A failed current-location request must clear the selection")
	}

	if _, err := lookup.Forecast(context.Background(), session); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if fc.calls != 0 {
		t.Errorf("Expected no forecast calls, got %d", fc.calls)
	}
}

func TestForecastTransportError(t *testing.T) {
	lookup, _, fc := newTestLookup()
	fc.err = &TransportError{Op: "forecast", StatusCode: 500}

	session := NewSession("s1", models.UnitsMetric)
	session.Selected = &bijnorCandidates[0]

	if _, err := lookup.Forecast(context.Background(), session); !IsTransportError(err) {
		t.Errorf("Expected TransportError, got %v", err)
	}
}

func TestNewSessionDefaultsUnits(t *testing.T) {
	if s := NewSession("x", models.UnitSystem("kelvin")); s.Units != models.UnitsMetric {
		t.Errorf("Expected metric fallback, got %s", s.Units)
	}
	if s := NewSession("x", models.UnitsImperial); s.Units != models.UnitsImperial {
		t.Errorf("Expected imperial, got %s", s.Units)
	}
}
