package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
)

// UTCLayout is the textual form of WeatherRecord timestamps.
const UTCLayout = "2006-01-02 15:04:05 UTC"

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherRecord is the normalized current-weather observation for one city.
type WeatherRecord struct {
	City        string
	Temperature float64 // °C
	Description string
	Humidity    int     // percent
	WindSpeed   float64 // m/s
	Coord       Coord
	ObservedAt  time.Time // UTC
}

// Timestamp returns the observation time as "YYYY-MM-DD HH:MM:SS UTC".
func (r WeatherRecord) Timestamp() string {
	return r.ObservedAt.UTC().Format(UTCLayout)
}

// weatherPayload lists exactly the fields read from the response. Decoding
// runs with ErrorUnset, so any of them missing fails the parse. A JSON null
// leaves its pointer nil, and validate rejects it.
type weatherPayload struct {
	Name *string `json:"name"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []*struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
	Dt *int64 `json:"dt"`
}

func (p *weatherPayload) validate() error {
	switch {
	case p.Name == nil:
		return nullField("name")
	case p.Main == nil:
		return nullField("main")
	case p.Main.Temp == nil:
		return nullField("main.temp")
	case p.Main.Humidity == nil:
		return nullField("main.humidity")
	case p.Weather == nil:
		return nullField("weather")
	case len(p.Weather) == 0:
		return errors.New("field \"weather\" has no entries")
	case p.Weather[0] == nil:
		return nullField("weather[0]")
	case p.Weather[0].Description == nil:
		return nullField("weather[0].description")
	case p.Wind == nil:
		return nullField("wind")
	case p.Wind.Speed == nil:
		return nullField("wind.speed")
	case p.Coord == nil:
		return nullField("coord")
	case p.Coord.Lat == nil:
		return nullField("coord.lat")
	case p.Coord.Lon == nil:
		return nullField("coord.lon")
	case p.Dt == nil:
		return nullField("dt")
	}
	if h := *p.Main.Humidity; math.Trunc(h) != h {
		return fmt.Errorf("field \"main.humidity\" is %v, want integer", h)
	}
	return nil
}

func nullField(path string) error {
	return fmt.Errorf("field %q is null", path)
}

// Weather fetches current conditions for city in metric units.
func (c *Client) Weather(ctx context.Context, city, apiKey string) (WeatherRecord, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", apiKey)
	q.Set("units", "metric")

	body, err := c.get(ctx, weatherEndpoint, q)
	if err != nil {
		return WeatherRecord{}, err
	}

	rec, err := decodeWeather(body)
	if err != nil {
		return WeatherRecord{}, c.fail(&FetchError{Endpoint: weatherEndpoint, Kind: KindParse, Err: err})
	}
	return rec, nil
}

func decodeWeather(body []byte) (WeatherRecord, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return WeatherRecord{}, fmt.Errorf("decode body: %w", err)
	}
	if raw == nil {
		return WeatherRecord{}, errors.New("empty body")
	}

	var p weatherPayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &p,
		TagName:    "json",
		ErrorUnset: true,
	})
	if err != nil {
		return WeatherRecord{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return WeatherRecord{}, err
	}
	if err := p.validate(); err != nil {
		return WeatherRecord{}, err
	}

	return WeatherRecord{
		City:        *p.Name,
		Temperature: *p.Main.Temp,
		Description: *p.Weather[0].Description,
		Humidity:    int(*p.Main.Humidity),
		WindSpeed:   *p.Wind.Speed,
		Coord:       Coord{Lat: *p.Coord.Lat, Lon: *p.Coord.Lon},
		ObservedAt:  time.Unix(*p.Dt, 0).UTC(),
	}, nil
}
