package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// APIKey is the OpenWeatherMap credential. It is handed to every fetch
	// call explicitly and never read from the environment again.
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration

	// MQTTBroker empty disables snapshot publishing.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	// MetricsTextfile empty disables the metrics export.
	MetricsTextfile string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENWEATHERMAP_API_KEY"))

	baseURL := strings.TrimSpace(os.Getenv("OWM_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://api.openweathermap.org"
	}
	if err := validateBaseURL(baseURL); err != nil {
		return Config{}, err
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpTimeoutStr := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT"))
	if httpTimeoutStr == "" {
		httpTimeoutStr = "0s"
	}
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", httpTimeoutStr, err)
	}
	if httpTimeout < 0 {
		return Config{}, fmt.Errorf("HTTP_TIMEOUT must not be negative, got %v", httpTimeout)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "weather-aqi-agent"
	}

	mqttTopicPrefix := strings.Trim(strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX")), "/")
	if mqttTopicPrefix == "" {
		mqttTopicPrefix = "cities"
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		APIKey:          apiKey,
		BaseURL:         baseURL,
		HTTPTimeout:     httpTimeout,
		MQTTBroker:      mqttBroker,
		MQTTPort:        mqttPort,
		MQTTClientID:    mqttClientID,
		MQTTTopicPrefix: mqttTopicPrefix,
		MetricsTextfile: strings.TrimSpace(os.Getenv("METRICS_TEXTFILE")),
	}, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid OWM_BASE_URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid OWM_BASE_URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid OWM_BASE_URL %q: missing host", raw)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
