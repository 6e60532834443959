package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"weather-aqi-agent/internal/config"
	"weather-aqi-agent/internal/metric"
	"weather-aqi-agent/internal/mqtt"
	"weather-aqi-agent/internal/owm"
	"weather-aqi-agent/internal/report"
)

const prompt = "Enter city name: "

// Run prompts for a city on in, prints the report to out and, when
// configured, publishes the snapshot and writes metrics. The returned error
// wraps report.ErrWeatherUnavailable when the weather lookup failed.
func Run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	logger.Debug("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"baseURL", cfg.BaseURL,
		"httpTimeout", cfg.HTTPTimeout,
		"apiKeySet", cfg.APIKey != "",
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
		"metricsTextfile", cfg.MetricsTextfile,
	)
	if cfg.APIKey == "" {
		logger.Warn("OPENWEATHERMAP_API_KEY is not set; requests will be rejected by the API")
	}

	city, err := readCity(in, out)
	if err != nil {
		return err
	}

	m := metric.New()
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
				logger.Warn("metrics export failed", "error", err)
			}
		}()
	}

	client := owm.NewClient(cfg.BaseURL,
		owm.WithTimeout(cfg.HTTPTimeout),
		owm.WithLogger(logger),
		owm.WithObserver(m),
	)
	outcome, runErr := report.NewPrinter(out, client, logger).Run(ctx, city, cfg.APIKey)

	if cfg.MQTTBroker != "" {
		publish(ctx, cfg, logger, runID, outcome)
	}
	return runErr
}

// readCity writes the prompt and returns the next input line without its
// line terminator. A final line without newline is accepted.
func readCity(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read city: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func publish(ctx context.Context, cfg config.Config, logger *slog.Logger, runID string, outcome report.Outcome) {
	snapshot, ok := report.NewSnapshot(runID, outcome)
	if !ok {
		logger.Debug("nothing to publish")
		return
	}

	publisher := mqtt.NewPublisher(cfg, logger)
	defer publisher.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := publisher.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Warn("mqtt connection failed (snapshot not published)", "error", err)
		return
	}

	if err := publisher.PublishSnapshot(snapshot); err != nil {
		logger.Warn("snapshot publish failed", "error", err)
		return
	}
	logger.Info("snapshot published", "topic", publisher.Topic(snapshot.City))
}
