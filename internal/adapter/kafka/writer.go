// Package kafka publishes export records to a Kafka topic so other services
// can consume the run's alerts without polling the gateway.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/meteoalerta/meteo-alert-service/internal/config"
	"github.com/meteoalerta/meteo-alert-service/internal/report"
)

// Writer produces alert records to the configured topic. It implements
// pipeline.AlertSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the alert topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes one run's alert records in a single
// WriteMessages call. runID ties the messages back to the pipeline run that
// produced them.
func (w *Writer) Publish(ctx context.Context, runID string, records []report.ExportRecord) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(runID, records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish alert records: %w", err)
	}

	w.logger.Info("alert records published", "topic", w.writer.Topic, "records", len(records))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an export record into a Kafka message keyed by
// city and event, so per-city ordering is preserved under partitioning.
func serializeToMessage(runID string, rec report.ExportRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.CityID + "|" + rec.EventID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "generation_date", Value: []byte(rec.GenerationDate)},
		},
	}, nil
}
