package weatherlookup

import (
	"context"
	"log"
	"strconv"
	"strings"

	"weather-app/internal/models"
	"weather-app/shared/config"
	"weather-app/shared/openmeteo"
)

// DefaultMaxResults is used when a caller passes a non-positive result limit
const DefaultMaxResults = 5

// Geocoder resolves free-text place names to ranked candidates
type Geocoder interface {
	ResolveByName(ctx context.Context, query string, maxResults int) ([]models.LocationCandidate, error)
}

// LocationResolver handles interactions with the Open-Meteo geocoding API
type LocationResolver struct {
	client     *openmeteo.Client
	url        string
	language   string
	maxResults int
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string   `json:"name"`
	Admin1    string   `json:"admin1"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func NewLocationResolver(cfg *config.OpenMeteoConfig, client *openmeteo.Client) *LocationResolver {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	return &LocationResolver{
		client:     client,
		url:        cfg.GeocodingURL,
		language:   language,
		maxResults: maxResults,
	}
}

// ResolveByName returns up to maxResults candidates for query in the service's
// relevance order. A blank query returns an empty slice without a request.
func (r *LocationResolver) ResolveByName(ctx context.Context, query string, maxResults int) ([]models.LocationCandidate, error) {
	name := strings.TrimSpace(query)
	if name == "" {
		return []models.LocationCandidate{}, nil
	}
	if maxResults <= 0 {
		maxResults = r.maxResults
	}

	params := map[string]string{
		"name":     name,
		"count":    strconv.Itoa(maxResults),
		"language": r.language,
		"format":   "json",
	}

	var resp geocodingResponse
	if err := r.client.GetJSON(ctx, "geocoding", r.url, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.LocationCandidate, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Name == "" || res.Latitude == nil || res.Longitude == nil {
			log.Printf("Warning: skipping geocoding result without name or coordinates: %+v", res)
			continue
		}
		candidates = append(candidates, models.LocationCandidate{
			Name:        res.Name,
			AdminRegion: res.Admin1,
			Country:     res.Country,
			Latitude:    *res.Latitude,
			Longitude:   *res.Longitude,
		})
		if len(candidates) == maxResults {
			break
		}
	}

	log.Printf("Geocoding %q returned %d candidate(s)", name, len(candidates))
	return candidates, nil
}

// ResolveByCoordinates builds the synthetic current-position candidate
func ResolveByCoordinates(lat, lon float64) models.LocationCandidate {
	return models.LocationCandidate{
		Name:      models.CurrentLocationName,
		Latitude:  lat,
		Longitude: lon,
	}
}
