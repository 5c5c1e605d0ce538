package weatherlookup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"weather-app/internal/models"
)

const missingValue = "—"

// Notices attached to a view when a forecast section is absent
const (
	NoticeNoCurrent = "Current conditions are not available"
	NoticeNoDaily   = "Daily forecast is not available"
	NoticeNoHourly  = "Hourly forecast is not available"
)

// BuildView formats a forecast result for display. Absent sections are omitted
// and reported as notices.
func BuildView(loc models.LocationCandidate, result *models.ForecastResult) *models.ForecastView {
	view := &models.ForecastView{
		Location: loc,
		Label:    loc.Label(),
		Units:    result.Units,
		Timezone: result.Timezone,
	}
	units := result.Units

	if c := result.Current; c != nil {
		view.Current = &models.CurrentView{
			Temperature: formatWithUnit(c.Temperature, units.TemperatureLabel()),
			Wind:        formatWithUnit(c.WindSpeed, " "+units.WindSpeedLabel()),
			Condition:   formatCondition(c.ConditionCode),
			Time:        c.Time,
		}
	} else {
		view.Notices = append(view.Notices, NoticeNoCurrent)
	}

	if d := result.Daily; d != nil {
		for i, date := range d.Time {
			line := models.DailyLine{
				Date:          date,
				High:          formatWithUnit(valueAt(d.TemperatureMax, i), units.TemperatureLabel()),
				Low:           formatWithUnit(valueAt(d.TemperatureMin, i), units.TemperatureLabel()),
				Precipitation: formatWithUnit(valueAt(d.PrecipitationSum, i), " mm"),
				MaxWind:       formatWithUnit(valueAt(d.WindSpeedMax, i), " "+units.WindSpeedLabel()),
			}
			line.Text = fmt.Sprintf("%s: High %s, Low %s, Precip %s, Max Wind %s",
				line.Date, line.High, line.Low, line.Precipitation, line.MaxWind)
			view.Daily = append(view.Daily, line)
		}
	} else {
		view.Notices = append(view.Notices, NoticeNoDaily)
	}

	if window := NextHours(result, WindowHours); window != nil {
		view.Hourly = window
	} else {
		view.Notices = append(view.Notices, NoticeNoHourly)
	}

	return view
}

func valueAt(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

// FormatValue renders a nullable number without trailing zeros
func FormatValue(v *float64) string {
	if v == nil {
		return missingValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatWithUnit(v *float64, unit string) string {
	if v == nil {
		return missingValue
	}
	return FormatValue(v) + unit
}

func formatCondition(code *int) string {
	if code == nil {
		return missingValue
	}
	if desc := models.ConditionDescription(*code); desc != "" {
		return fmt.Sprintf("%d (%s)", *code, desc)
	}
	return strconv.Itoa(*code)
}

// RenderText writes the view as plain text for terminals
func RenderText(w io.Writer, view *models.ForecastView) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Weather for %s\n", view.Label)
	if c := view.Current; c != nil {
		b.WriteString("\nCurrent Weather\n")
		fmt.Fprintf(&b, "  Temperature:  %s\n", c.Temperature)
		fmt.Fprintf(&b, "  Wind Speed:   %s\n", c.Wind)
		fmt.Fprintf(&b, "  Weather Code: %s\n", c.Condition)
		fmt.Fprintf(&b, "  Time:         %s\n", c.Time)
	}
	if len(view.Daily) > 0 {
		b.WriteString("\nDaily Forecast\n")
		for _, d := range view.Daily {
			fmt.Fprintf(&b, "  %s\n", d.Text)
		}
	}
	if h := view.Hourly; h != nil && len(h.Times) > 0 {
		fmt.Fprintf(&b, "\nNext %d Hours (%s)\n", len(h.Times), view.Units.TemperatureLabel())
		for i, label := range h.Labels {
			fmt.Fprintf(&b, "  %s  %s\n", label, FormatValue(valueAt(h.Temperatures, i)))
		}
	}
	for _, n := range view.Notices {
		fmt.Fprintf(&b, "\nNote: %s\n", n)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
