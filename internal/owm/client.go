// Package owm talks to the OpenWeatherMap current-weather and air-pollution
// endpoints. Every fetch performs exactly one GET and never retries.
package owm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	weatherEndpoint   = "weather"
	pollutionEndpoint = "air_pollution"
	apiPath           = "/data/2.5/"
)

// Observer receives request latencies and failure counts.
type Observer interface {
	ObserveRequest(endpoint string, d time.Duration)
	ObserveFailure(endpoint string, kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, time.Duration) {}
func (nopObserver) ObserveFailure(string, string)        {}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient returns a client for the API rooted at baseURL,
// e.g. "http://api.openweathermap.org".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Transport = &loggingTransport{
		next:     http.DefaultTransport,
		logger:   c.logger,
		observer: c.observer,
	}
	return c
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPath+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, c.fail(&FetchError{Endpoint: endpoint, Kind: KindTransport, Err: redact(err)})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&FetchError{Endpoint: endpoint, Kind: KindTransport, Err: redact(err)})
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("close response body", "endpoint", endpoint, "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&FetchError{
			Endpoint:   endpoint,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Message:    apiMessage(body),
		})
	}
	if err != nil {
		return nil, c.fail(&FetchError{Endpoint: endpoint, Kind: KindTransport, Err: redact(err)})
	}
	return body, nil
}

func (c *Client) fail(err *FetchError) error {
	c.observer.ObserveFailure(err.Endpoint, err.Kind.String())
	return err
}

// apiMessage extracts the "message" field OpenWeatherMap puts in error bodies.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Message
}
