package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Derivation run scheduling.
	ScanInterval time.Duration
	RunOnce      bool

	// Input dataset and polygon registry.
	MeteogramDir  string
	MeteogramFile string // explicit file path; overrides directory discovery
	RegistryPath  string

	// Alert thresholds.
	HumidityMinThreshold float64
	WindMaxThreshold     float64 // squared wind speed, (m/s)²
	RainMaxThreshold     float64 // mm/h
	RainEnabled          bool

	// Delivery gateway configuration.
	GatewayEnabled   bool
	GatewayBaseURL   string
	GatewayNotifyURL string
	GatewayEmail     string
	GatewayPassword  string
	GatewayTimeout   time.Duration

	// Kafka alert sink configuration.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	scanInterval, err := parseDuration("SCAN_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	gatewayTimeout, err := parseDuration("GATEWAY_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	humidityMin, err := parseFloat("HUMIDITY_MIN_THRESHOLD", 60)
	if err != nil {
		return nil, err
	}

	windMax, err := parseFloat("WIND_MAX_THRESHOLD", 11.08)
	if err != nil {
		return nil, err
	}

	rainMax, err := parseFloat("RAIN_MAX_THRESHOLD", 15.0)
	if err != nil {
		return nil, err
	}

	gatewayBaseURL := os.Getenv("GATEWAY_BASE_URL")
	gatewayEnabled := gatewayBaseURL != ""
	if v := os.Getenv("GATEWAY_ENABLED"); v != "" {
		gatewayEnabled = v == "true"
	}

	kafkaTopic := os.Getenv("KAFKA_ALERT_TOPIC")
	kafkaEnabled := kafkaTopic != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ScanInterval: scanInterval,
		RunOnce:      os.Getenv("RUN_ONCE") == "true",

		MeteogramDir:  envOrDefault("METEOGRAM_DIR", "./tmp_files"),
		MeteogramFile: os.Getenv("METEOGRAM_FILE"),
		RegistryPath:  envOrDefault("REGISTRY_PATH", "./config.csv"),

		HumidityMinThreshold: humidityMin,
		WindMaxThreshold:     windMax,
		RainMaxThreshold:     rainMax,
		RainEnabled:          os.Getenv("RAIN_ENABLED") == "true",

		GatewayEnabled:   gatewayEnabled,
		GatewayBaseURL:   gatewayBaseURL,
		GatewayNotifyURL: os.Getenv("GATEWAY_NOTIFY_URL"),
		GatewayEmail:     os.Getenv("GATEWAY_EMAIL"),
		GatewayPassword:  os.Getenv("GATEWAY_PASSWORD"),
		GatewayTimeout:   gatewayTimeout,

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: kafkaTopic,
	}

	if cfg.RegistryPath == "" {
		return nil, errors.New("REGISTRY_PATH is required")
	}
	if cfg.HumidityMinThreshold < 0 || cfg.HumidityMinThreshold > 100 {
		return nil, errors.New("HUMIDITY_MIN_THRESHOLD must be within [0, 100]")
	}
	if cfg.GatewayEnabled {
		if cfg.GatewayBaseURL == "" {
			return nil, errors.New("GATEWAY_ENABLED is true but GATEWAY_BASE_URL is not set")
		}
		if cfg.GatewayEmail == "" || cfg.GatewayPassword == "" {
			return nil, errors.New("gateway requires GATEWAY_EMAIL and GATEWAY_PASSWORD")
		}
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAlertTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ALERT_TOPIC is not set")
		}
	}

	return cfg, nil
}

// envOrDefault returns the variable's value, or fallback when it is unset
// or set to the empty string. An empty value never overrides a default.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
