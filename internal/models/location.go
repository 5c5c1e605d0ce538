package models

import "strings"

// CurrentLocationName is the placeholder name of a candidate built from raw coordinates
const CurrentLocationName = "Your Location"

// LocationCandidate represents a single geocoding match (or the synthetic
// current-position candidate). Empty AdminRegion/Country mean "not provided".
type LocationCandidate struct {
	Name        string  `json:"name"`
	AdminRegion string  `json:"admin_region,omitempty"`
	Country     string  `json:"country,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Label formats the candidate for disambiguation: name, admin region, country,
// comma-joined with empty parts skipped.
func (c LocationCandidate) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.AdminRegion, c.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
