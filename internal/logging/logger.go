package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"weather-aqi-agent/internal/config"
)

// New builds the process logger. Output goes to w, which the binary points at
// stderr so the report on stdout stays clean.
func New(cfg config.Config, version string, appName string, w io.Writer) *slog.Logger {
	if version == "dev" && cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
