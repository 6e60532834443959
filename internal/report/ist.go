package report

import (
	"fmt"
	"time"

	"weather-aqi-agent/internal/owm"
)

// IST is the fixed UTC+5:30 display zone used for every report time,
// regardless of the host's local zone.
var IST = time.FixedZone("IST", 5*60*60+30*60)

const istLayout = "2006-01-02 15:04:05 MST"

// FormatIST renders t in IST as "YYYY-MM-DD HH:MM:SS IST".
func FormatIST(t time.Time) string {
	return t.In(IST).Format(istLayout)
}

// ISTFromUTCString converts a "YYYY-MM-DD HH:MM:SS UTC" timestamp to IST.
func ISTFromUTCString(s string) (string, error) {
	t, err := time.ParseInLocation(owm.UTCLayout, s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("parse utc timestamp %q: %w", s, err)
	}
	return FormatIST(t), nil
}
