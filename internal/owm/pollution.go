package owm

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

// PollutionRecord is the air-pollution response body as received. Its shape
// is not checked here; callers extract what they need.
type PollutionRecord struct {
	Body json.RawMessage
}

// AirPollution fetches current air pollution at coord.
func (c *Client) AirPollution(ctx context.Context, coord Coord, apiKey string) (PollutionRecord, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("appid", apiKey)

	body, err := c.get(ctx, pollutionEndpoint, q)
	if err != nil {
		return PollutionRecord{}, err
	}
	if !json.Valid(body) {
		return PollutionRecord{}, c.fail(&FetchError{
			Endpoint: pollutionEndpoint,
			Kind:     KindParse,
			Err:      errors.New("body is not valid JSON"),
		})
	}
	return PollutionRecord{Body: json.RawMessage(body)}, nil
}
