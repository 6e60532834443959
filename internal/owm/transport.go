package owm

import (
	"log/slog"
	"net/http"
	"path"
	"time"
)

// loggingTransport logs every outbound request and reports its latency.
// Only the path is logged: the query string carries the credential.
type loggingTransport struct {
	next     http.RoundTripper
	logger   *slog.Logger
	observer Observer
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := path.Base(req.URL.Path)

	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("http request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", elapsed.Milliseconds(),
			"error", redact(err),
		)
		return nil, err
	}

	t.observer.ObserveRequest(endpoint, elapsed)
	t.logger.Debug("http request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}
