package models

import "time"

// ForecastDigest represents a daily forecast report for email delivery
type ForecastDigest struct {
	Date      time.Time     `json:"date"`
	View      *ForecastView `json:"view"`
	Narrative string        `json:"narrative,omitempty"` // optional AI-written summary
}
