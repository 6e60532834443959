package report

import (
	"strings"
	"time"
	"unicode"
)

// Snapshot is the machine-readable form of a finished report.
type Snapshot struct {
	RunID        string      `json:"run_id"`
	City         string      `json:"city"`
	ObservedAt   time.Time   `json:"observed_at"`
	TemperatureC float64     `json:"temperature_c"`
	Description  string      `json:"description"`
	HumidityPct  int         `json:"humidity_pct"`
	WindSpeedMS  float64     `json:"wind_speed_ms"`
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	AQI          *int        `json:"aqi,omitempty"`
	AQIObserved  *time.Time  `json:"aqi_observed_at,omitempty"`
	Components   []Component `json:"components,omitempty"`
}

// NewSnapshot builds a snapshot from o. It reports false when o has no
// weather record, i.e. the run printed only the failure line.
func NewSnapshot(runID string, o Outcome) (Snapshot, bool) {
	if o.Weather == nil {
		return Snapshot{}, false
	}
	w := o.Weather
	s := Snapshot{
		RunID:        runID,
		City:         w.City,
		ObservedAt:   w.ObservedAt,
		TemperatureC: w.Temperature,
		Description:  w.Description,
		HumidityPct:  w.Humidity,
		WindSpeedMS:  w.WindSpeed,
		Lat:          w.Coord.Lat,
		Lon:          w.Coord.Lon,
	}
	if aq := o.AirQuality; aq != nil {
		aqi := aq.AQI
		observed := aq.ObservedAt
		s.AQI = &aqi
		s.AQIObserved = &observed
		s.Components = aq.Components
	}
	return s, true
}

// CitySlug lower-cases name and folds everything but letters and digits to
// single dashes, for use as a topic segment.
func CitySlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
