package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-aqi-agent/internal/owm"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) recordsFor(msg string) []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.records {
		if m["msg"].String() == msg {
			out = append(out, m)
		}
	}
	return out
}

type fakeFetcher struct {
	weather      owm.WeatherRecord
	weatherErr   error
	pollution    owm.PollutionRecord
	pollutionErr error

	weatherCalls   []string
	pollutionCalls []owm.Coord
	apiKeys        []string
}

func (f *fakeFetcher) Weather(_ context.Context, city, apiKey string) (owm.WeatherRecord, error) {
	f.weatherCalls = append(f.weatherCalls, city)
	f.apiKeys = append(f.apiKeys, apiKey)
	return f.weather, f.weatherErr
}

func (f *fakeFetcher) AirPollution(_ context.Context, coord owm.Coord, apiKey string) (owm.PollutionRecord, error) {
	f.pollutionCalls = append(f.pollutionCalls, coord)
	f.apiKeys = append(f.apiKeys, apiKey)
	return f.pollution, f.pollutionErr
}

func london() owm.WeatherRecord {
	return owm.WeatherRecord{
		City:        "London",
		Temperature: 15.2,
		Description: "clear sky",
		Humidity:    70,
		WindSpeed:   3.1,
		Coord:       owm.Coord{Lat: 51.5, Lon: -0.1},
		ObservedAt:  time.Unix(1700000000, 0).UTC(),
	}
}

const weatherSection = `
--- Weather Information ---
City: London
Temperature: 15.2°C
Description: clear sky
Humidity: 70%
Wind Speed: 3.1 m/s
Report Time: 2023-11-15 03:43:20 IST
`

func TestPrinter_Run_fullReport(t *testing.T) {
	f := &fakeFetcher{
		weather:   london(),
		pollution: pollution(`{"list":[{"main":{"aqi":2},"dt":1700000000,"components":{"co":200.5,"no":0.01}}]}`),
	}
	var out bytes.Buffer

	outcome, err := NewPrinter(&out, f, slog.New(&captureHandler{})).Run(context.Background(), "London", "k3y")
	require.NoError(t, err)

	want := weatherSection + `
--- Air Quality Information ---
Air Quality Index (AQI): 2
  Pollutants (Reported at: 2023-11-15 03:43:20 IST):
  Latitude: 51.5
  Longitude: -0.1
    co: 200.5 μg/m³
    no: 0.01 μg/m³
`
	assert.Equal(t, want, out.String())
	assert.Contains(t, out.String(), "Temperature: 15.2°C")
	assert.Contains(t, out.String(), "AQI): 2")
	assert.Contains(t, out.String(), "co: 200.5 μg/m³")

	require.NotNil(t, outcome.Weather)
	require.NotNil(t, outcome.AirQuality)
	assert.Equal(t, 2, outcome.AirQuality.AQI)

	assert.Equal(t, []string{"London"}, f.weatherCalls, "weather is fetched exactly once")
	assert.Equal(t, []owm.Coord{{Lat: 51.5, Lon: -0.1}}, f.pollutionCalls)
	assert.Equal(t, []string{"k3y", "k3y"}, f.apiKeys)
}

func TestPrinter_Run_weatherFailure(t *testing.T) {
	cause := &owm.FetchError{Endpoint: "weather", Kind: owm.KindStatus, StatusCode: 404, Message: "city not found"}
	f := &fakeFetcher{weatherErr: cause}
	h := &captureHandler{}
	var out bytes.Buffer

	outcome, err := NewPrinter(&out, f, slog.New(h)).Run(context.Background(), "Atlantis", "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
	assert.Equal(t, owm.KindStatus, owm.KindOf(err))
	assert.Nil(t, outcome.Weather)

	assert.Equal(t, "Could not retrieve weather data. Please check the city name or try again later.\n", out.String())
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "exactly one failure line")
	assert.Empty(t, f.pollutionCalls, "no further network calls")

	recs := h.recordsFor("weather fetch failed")
	require.Len(t, recs, 1)
	assert.Equal(t, "status", recs[0]["kind"].String())
	assert.Equal(t, "Atlantis", recs[0]["city"].String())
}

func TestPrinter_Run_pollutionFailure(t *testing.T) {
	f := &fakeFetcher{
		weather:      london(),
		pollutionErr: &owm.FetchError{Endpoint: "air_pollution", Kind: owm.KindTransport, Err: errors.New("connection reset")},
	}
	h := &captureHandler{}
	var out bytes.Buffer

	outcome, err := NewPrinter(&out, f, slog.New(h)).Run(context.Background(), "London", "k")
	require.NoError(t, err)

	assert.Equal(t, weatherSection+"Could not retrieve AQI data.\n", out.String())
	require.NotNil(t, outcome.Weather)
	assert.Nil(t, outcome.AirQuality)

	recs := h.recordsFor("air pollution fetch failed")
	require.Len(t, recs, 1)
	assert.Equal(t, "transport", recs[0]["kind"].String())
}

func TestPrinter_Run_malformedPollution(t *testing.T) {
	f := &fakeFetcher{
		weather:   london(),
		pollution: pollution(`{"coord":{"lon":-0.1,"lat":51.5}}`),
	}
	h := &captureHandler{}
	var out bytes.Buffer

	outcome, err := NewPrinter(&out, f, slog.New(h)).Run(context.Background(), "London", "k")
	require.NoError(t, err)

	want := weatherSection + `
--- Air Quality Information ---
Report Time: N/A
Error parsing AQI data: missing key "list" in body
{
  "coord": {
    "lon": -0.1,
    "lat": 51.5
  }
}
`
	assert.Equal(t, want, out.String())
	require.NotNil(t, outcome.Weather)
	assert.Nil(t, outcome.AirQuality)
	assert.Len(t, h.recordsFor("air quality extraction failed"), 1)
}

func TestPrinter_Run_emptyListDumpsBody(t *testing.T) {
	f := &fakeFetcher{
		weather:   london(),
		pollution: pollution(`{"list":[]}`),
	}
	var out bytes.Buffer

	_, err := NewPrinter(&out, f, nil).Run(context.Background(), "London", "k")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(out.String(), "Report Time: N/A\nError parsing AQI data: list index 0 out of range (length 0)\n{\n  \"list\": []\n}\n"), out.String())
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		15.2:  "15.2",
		-0.1:  "-0.1",
		3:     "3",
		51.5:  "51.5",
		0.001: "0.001",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFloat(in))
	}
}

func TestFormatComponent(t *testing.T) {
	tests := map[string]string{
		"200.5":  "200.5",
		"0":      "0",
		"5.0":    "5.0",
		"1.2e-2": "0.012",
		"3E2":    "300",
		"-4.5e1": "-45",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatComponent(json.Number(in)), in)
	}
}

func TestPrinter_Run_exponentComponent(t *testing.T) {
	f := &fakeFetcher{
		weather:   london(),
		pollution: pollution(`{"list":[{"main":{"aqi":1},"dt":1700000000,"components":{"so2":1.2e-2,"no":0}}]}`),
	}
	var out bytes.Buffer

	_, err := NewPrinter(&out, f, slog.New(&captureHandler{})).Run(context.Background(), "London", "k3y")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "    so2: 0.012 μg/m³\n    no: 0 μg/m³\n")
}
