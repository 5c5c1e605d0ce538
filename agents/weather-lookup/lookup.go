package weatherlookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"weather-app/internal/models"
)

// SearchStatus distinguishes a successful search from an empty one
type SearchStatus string

const (
	StatusFound     SearchStatus = "found"
	StatusNoResults SearchStatus = "no_results"
)

// SearchOutcome is the result of one city search
type SearchOutcome struct {
	Query    string                     `json:"query"`
	Status   SearchStatus               `json:"status"`
	Options  []models.LocationCandidate `json:"options"`
	Selected *models.LocationCandidate  `json:"selected,omitempty"`
}

// Labels returns the disambiguation label of every option, in order
func (o *SearchOutcome) Labels() []string {
	labels := make([]string, len(o.Options))
	for i, opt := range o.Options {
		labels[i] = opt.Label()
	}
	return labels
}

// Session is the per-user interaction state: the unit system, the options of
// the last search, and the single active selection
type Session struct {
	ID       string
	Units    models.UnitSystem
	Options  []models.LocationCandidate
	Selected *models.LocationCandidate
}

func NewSession(id string, units models.UnitSystem) *Session {
	if !units.Valid() {
		units = models.UnitsMetric
	}
	return &Session{ID: id, Units: units}
}

// replaceSelection drops any previous options and selection
func (s *Session) replaceSelection(options []models.LocationCandidate, selected *models.LocationCandidate) {
	s.Options = options
	s.Selected = selected
}

// Lookup drives location resolution and forecast acquisition for a session
type Lookup struct {
	geocoder   Geocoder
	forecaster Forecaster
	maxResults int
}

func NewLookup(geocoder Geocoder, forecaster Forecaster, maxResults int) *Lookup {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Lookup{
		geocoder:   geocoder,
		forecaster: forecaster,
		maxResults: maxResults,
	}
}

// Search resolves query and makes its best-ranked candidate the active
// selection. A transport failure clears the session and is returned.
func (l *Lookup) Search(ctx context.Context, s *Session, query string) (*SearchOutcome, error) {
	query = strings.TrimSpace(query)

	candidates, err := l.geocoder.ResolveByName(ctx, query, l.maxResults)
	if err != nil {
		s.replaceSelection(nil, nil)
		return nil, fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	outcome := &SearchOutcome{
		Query:   query,
		Status:  StatusNoResults,
		Options: candidates,
	}
	if len(candidates) == 0 {
		s.replaceSelection(nil, nil)
		return outcome, nil
	}

	selected := candidates[0]
	s.replaceSelection(candidates, &selected)
	outcome.Status = StatusFound
	outcome.Selected = &selected
	return outcome, nil
}

// Pick selects one of the options of the last search
func (l *Lookup) Pick(s *Session, index int) (models.LocationCandidate, error) {
	if index < 0 || index >= len(s.Options) {
		return models.LocationCandidate{}, fmt.Errorf("option %d out of range (have %d)", index, len(s.Options))
	}
	selected := s.Options[index]
	s.Selected = &selected
	return selected, nil
}

// UseCurrentLocation replaces the selection with the synthetic current-position
// candidate. When the source fails, the session is cleared and no forecast is
// attempted by callers.
func (l *Lookup) UseCurrentLocation(ctx context.Context, s *Session, source CoordinateSource) (models.LocationCandidate, error) {
	lat, lon, err := source.CurrentCoordinates(ctx)
	if err != nil {
		s.replaceSelection(nil, nil)
		var unavailable *LocationUnavailableError
		if errors.As(err, &unavailable) {
			return models.LocationCandidate{}, err
		}
		return models.LocationCandidate{}, &LocationUnavailableError{Reason: err.Error()}
	}

	candidate := ResolveByCoordinates(lat, lon)
	s.replaceSelection(nil, &candidate)
	log.Printf("Current Location: %.4f, %.4f", lat, lon)
	return candidate, nil
}

// Forecast fetches the forecast for the active selection in the session's units
func (l *Lookup) Forecast(ctx context.Context, s *Session) (*models.ForecastView, error) {
	if s.Selected == nil {
		return nil, ErrNoSelection
	}
	loc := *s.Selected

	result, err := l.forecaster.Fetch(ctx, loc.Latitude, loc.Longitude, s.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast for %s: %w", loc.Label(), err)
	}

	return BuildView(loc, result), nil
}
