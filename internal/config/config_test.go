package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ScanInterval)
	assert.False(t, cfg.RunOnce)
	assert.Equal(t, "./tmp_files", cfg.MeteogramDir)
	assert.Empty(t, cfg.MeteogramFile)
	assert.Equal(t, "./config.csv", cfg.RegistryPath)
	assert.Equal(t, 60.0, cfg.HumidityMinThreshold)
	assert.Equal(t, 11.08, cfg.WindMaxThreshold)
	assert.Equal(t, 15.0, cfg.RainMaxThreshold)
	assert.False(t, cfg.RainEnabled)
	assert.False(t, cfg.GatewayEnabled)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SCAN_INTERVAL", "1h")
	t.Setenv("RUN_ONCE", "true")
	t.Setenv("METEOGRAM_DIR", "/data/meteograms")
	t.Setenv("METEOGRAM_FILE", "/data/meteograms/HST2024042600-Meteogram.json")
	t.Setenv("REGISTRY_PATH", "/etc/alerts/polygons.csv")
	t.Setenv("HUMIDITY_MIN_THRESHOLD", "55")
	t.Setenv("WIND_MAX_THRESHOLD", "20.5")
	t.Setenv("RAIN_MAX_THRESHOLD", "10")
	t.Setenv("RAIN_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.True(t, cfg.RunOnce)
	assert.Equal(t, "/data/meteograms", cfg.MeteogramDir)
	assert.Equal(t, "/data/meteograms/HST2024042600-Meteogram.json", cfg.MeteogramFile)
	assert.Equal(t, "/etc/alerts/polygons.csv", cfg.RegistryPath)
	assert.Equal(t, 55.0, cfg.HumidityMinThreshold)
	assert.Equal(t, 20.5, cfg.WindMaxThreshold)
	assert.Equal(t, 10.0, cfg.RainMaxThreshold)
	assert.True(t, cfg.RainEnabled)
}

func TestLoad_EmptyValueFallsBackToDefault(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidScanInterval(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_INTERVAL")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("WIND_MAX_THRESHOLD", "breezy")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WIND_MAX_THRESHOLD")
}

func TestLoad_HumidityThresholdOutOfRange(t *testing.T) {
	t.Setenv("HUMIDITY_MIN_THRESHOLD", "150")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUMIDITY_MIN_THRESHOLD")
}

func TestLoad_GatewayBaseURLImpliesEnabled(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "http://localhost:8002")
	t.Setenv("GATEWAY_EMAIL", "svc@example.com")
	t.Setenv("GATEWAY_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GatewayEnabled)
}

func TestLoad_GatewayEnabledWithoutCredentials(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "http://localhost:8002")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY_EMAIL")
}

func TestLoad_GatewayExplicitlyDisabled(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "http://localhost:8002")
	t.Setenv("GATEWAY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.GatewayEnabled)
}

func TestLoad_KafkaTopicImpliesEnabled(t *testing.T) {
	t.Setenv("KAFKA_ALERT_TOPIC", "weather-alerts")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_KafkaEnabledWithoutTopic(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_ALERT_TOPIC")
}
