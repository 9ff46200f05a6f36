//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/meteoalerta/meteo-alert-service/internal/adapter/kafka"
	"github.com/meteoalerta/meteo-alert-service/internal/config"
	"github.com/meteoalerta/meteo-alert-service/internal/domain"
	"github.com/meteoalerta/meteo-alert-service/internal/observability"
	"github.com/meteoalerta/meteo-alert-service/internal/pipeline"
	"github.com/meteoalerta/meteo-alert-service/internal/report"
	"github.com/meteoalerta/meteo-alert-service/internal/source"
)

const testAlertTopic = "test-alerts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// alertMessage holds a deserialized message read from the alert topic.
type alertMessage struct {
	Record  report.ExportRecord
	Key     string
	Headers map[string]string
}

func readAlert(ctx context.Context, t *testing.T, consumer *kafkago.Reader) alertMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alert topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec report.ExportRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal alert message")

	return alertMessage{Record: rec, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestWriterPublishesAlerts verifies the Kafka sink round-trips an export
// record with its key and headers intact.
func TestWriterPublishesAlerts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAlertTopic: testAlertTopic,
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	rec := report.ExportRecord{
		EventID: "EV-04", CityID: "CT-100", Value: 15.27, ThresholdValue: 11.98,
		Difference: 3.29, GenerationDate: "2024-04-26", ReferenceDate: "2024-04-26",
		Unit: "km/h", Time: "12:00", SecondsOffset: 54000,
	}
	require.NoError(t, writer.Publish(ctx, "run-integration", []report.ExportRecord{rec}))

	got := readAlert(ctx, t, newConsumer(t, broker))
	assert.Equal(t, rec, got.Record)
	assert.Equal(t, "CT-100|EV-04", got.Key)
	assert.Equal(t, "run-integration", got.Headers["run_id"])
	assert.Equal(t, "2024-04-26", got.Headers["generation_date"])
}

type staticRegistry struct{}

func (staticRegistry) Polygons() []string { return []string{"POLY_001"} }
func (staticRegistry) DisplayName(polygonID string) (string, bool) {
	if polygonID == "POLY_001" {
		return "Santa Maria", true
	}
	return "", false
}

// TestPipelineEndToEnd runs a full standalone cycle: dataset file on disk,
// real scan engine, and the Kafka sink, then checks the derived alerts on
// the topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	// 310.0K Tmax at 54000s and calm wind: exactly one high-temperature and
	// one low-temperature alert.
	dataset := `{
		"POLY_001": {
			"0":     {"Tmax": 300.5, "Tmin": 285.2, "Umax": 0.5, "Vmax": 0.5},
			"54000": {"Tmax": 310.0, "Tmin": 290.0, "Umax": 0.5, "Vmax": 0.5}
		}
	}`
	path := filepath.Join(t.TempDir(), "HST2024042600-Meteogram.json")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o644))

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAlertTopic: testAlertTopic,
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	engine := domain.NewEngine(staticRegistry{}, domain.DefaultThresholds(), false, discardLogger())
	builder := report.NewBuilder(nil, nil, discardLogger(), metrics)
	src := source.NewFileSource("", path, discardLogger())

	p := pipeline.New(src, engine, builder, discardLogger(), metrics, pipeline.Options{
		Sink:    writer,
		RunOnce: true,
	})
	require.NoError(t, p.Run(ctx))

	consumer := newConsumer(t, broker)

	first := readAlert(ctx, t, consumer)
	second := readAlert(ctx, t, consumer)

	byEvent := map[string]report.ExportRecord{
		first.Record.EventID:  first.Record,
		second.Record.EventID: second.Record,
	}

	high, ok := byEvent["high temperature"]
	require.True(t, ok, "expected a high temperature alert")
	assert.InDelta(t, 36.85, high.Value, 0.001)
	assert.Equal(t, 54000, high.SecondsOffset)
	assert.Equal(t, "Santa Maria", high.CityID)

	low, ok := byEvent["low temperature"]
	require.True(t, ok, "expected a low temperature alert")
	assert.InDelta(t, 12.05, low.Value, 0.001)
	assert.Equal(t, 0, low.SecondsOffset)

	// Calm wind stays below the threshold, so no third message arrives.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected exactly two messages on the alert topic")
}
