package models

// ForecastView is the display-ready form of a forecast for one selected location,
// shared by the HTTP shell, the CLI and the digest email
type ForecastView struct {
	Location LocationCandidate `json:"location"`
	Label    string            `json:"label"`
	Units    UnitSystem        `json:"units"`
	Timezone string            `json:"timezone,omitempty"`
	Current  *CurrentView      `json:"current,omitempty"`
	Daily    []DailyLine       `json:"daily,omitempty"`
	Hourly   *HourlyWindow     `json:"hourly,omitempty"`
	Notices  []string          `json:"notices,omitempty"`
}

// CurrentView holds formatted current conditions
type CurrentView struct {
	Temperature string `json:"temperature"` // e.g. "23.4°C"
	Wind        string `json:"wind"`        // e.g. "11.2 km/h"
	Condition   string `json:"condition"`   // WMO code and description
	Time        string `json:"time"`
}

// DailyLine holds one formatted day of the daily forecast
type DailyLine struct {
	Date          string `json:"date"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Precipitation string `json:"precipitation"`
	MaxWind       string `json:"max_wind"`
	Text          string `json:"text"`
}
