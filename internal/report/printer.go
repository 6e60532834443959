// Package report prints the weather and air-quality report for one city.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"weather-aqi-agent/internal/owm"
)

// ErrWeatherUnavailable is returned by Run when the weather lookup failed and
// nothing beyond the failure line was printed.
var ErrWeatherUnavailable = errors.New("weather data unavailable")

// Fetcher is the subset of the API client the report needs.
type Fetcher interface {
	Weather(ctx context.Context, city, apiKey string) (owm.WeatherRecord, error)
	AirPollution(ctx context.Context, coord owm.Coord, apiKey string) (owm.PollutionRecord, error)
}

// Outcome holds what a run managed to fetch. AirQuality is nil when the
// pollution lookup or its extraction failed.
type Outcome struct {
	Weather    *owm.WeatherRecord
	AirQuality *AirQuality
}

type Printer struct {
	out     io.Writer
	fetcher Fetcher
	logger  *slog.Logger
}

func NewPrinter(out io.Writer, fetcher Fetcher, logger *slog.Logger) *Printer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{out: out, fetcher: fetcher, logger: logger}
}

// Run fetches weather for city once, prints it, then fetches air pollution at
// the weather coordinates and prints that. Only a failed weather lookup is
// returned as an error; air-quality problems are printed and the run
// completes.
func (p *Printer) Run(ctx context.Context, city, apiKey string) (Outcome, error) {
	rec, err := p.fetcher.Weather(ctx, city, apiKey)
	if err != nil {
		p.logger.Warn("weather fetch failed",
			"city", city,
			"kind", owm.KindOf(err).String(),
			"error", err,
		)
		fmt.Fprintln(p.out, "Could not retrieve weather data. Please check the city name or try again later.")
		return Outcome{}, fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	}
	outcome := Outcome{Weather: &rec}
	p.printWeather(rec)

	pollution, err := p.fetcher.AirPollution(ctx, rec.Coord, apiKey)
	if err != nil {
		p.logger.Warn("air pollution fetch failed",
			"city", city,
			"lat", rec.Coord.Lat,
			"lon", rec.Coord.Lon,
			"kind", owm.KindOf(err).String(),
			"error", err,
		)
		fmt.Fprintln(p.out, "Could not retrieve AQI data.")
		return outcome, nil
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "--- Air Quality Information ---")
	aq, err := ExtractAirQuality(pollution)
	if err != nil {
		p.logger.Warn("air quality extraction failed", "city", city, "error", err)
		p.printDiagnostic(pollution, err)
		return outcome, nil
	}
	outcome.AirQuality = &aq
	p.printAirQuality(rec, aq)

	p.logger.Debug("report printed", "city", rec.City, "aqi", aq.AQI, "components", len(aq.Components))
	return outcome, nil
}

func (p *Printer) printWeather(rec owm.WeatherRecord) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "--- Weather Information ---")
	fmt.Fprintf(p.out, "City: %s\n", rec.City)
	fmt.Fprintf(p.out, "Temperature: %s°C\n", formatFloat(rec.Temperature))
	fmt.Fprintf(p.out, "Description: %s\n", rec.Description)
	fmt.Fprintf(p.out, "Humidity: %d%%\n", rec.Humidity)
	fmt.Fprintf(p.out, "Wind Speed: %s m/s\n", formatFloat(rec.WindSpeed))

	reportTime, err := ISTFromUTCString(rec.Timestamp())
	if err != nil {
		p.logger.Warn("weather timestamp conversion failed", "error", err)
		reportTime = "N/A"
	}
	fmt.Fprintf(p.out, "Report Time: %s\n", reportTime)
}

func (p *Printer) printAirQuality(rec owm.WeatherRecord, aq AirQuality) {
	fmt.Fprintf(p.out, "Air Quality Index (AQI): %d\n", aq.AQI)
	fmt.Fprintf(p.out, "  Pollutants (Reported at: %s):\n", FormatIST(aq.ObservedAt))
	fmt.Fprintf(p.out, "  Latitude: %s\n", formatFloat(rec.Coord.Lat))
	fmt.Fprintf(p.out, "  Longitude: %s\n", formatFloat(rec.Coord.Lon))
	for _, c := range aq.Components {
		fmt.Fprintf(p.out, "    %s: %s μg/m³\n", c.Name, formatComponent(c.Value))
	}
}

// printDiagnostic dumps the pollution body re-indented, keys in their
// original order.
func (p *Printer) printDiagnostic(rec owm.PollutionRecord, cause error) {
	fmt.Fprintln(p.out, "Report Time: N/A")
	fmt.Fprintf(p.out, "Error parsing AQI data: %v\n", cause)

	var buf bytes.Buffer
	if err := json.Indent(&buf, rec.Body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(rec.Body)
	}
	fmt.Fprintln(p.out, buf.String())
}

// formatFloat prints the shortest decimal that round-trips, so 15.2 stays
// "15.2" and -0.1 stays "-0.1".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatComponent prints plain decimal literals as sent and rewrites
// exponent forms such as 1.2e-2 as 0.012.
func formatComponent(n json.Number) string {
	if !strings.ContainsAny(n.String(), "eE") {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return formatFloat(f)
}
