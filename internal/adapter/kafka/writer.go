package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/config"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes merged fire records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. runID is
// stamped on every message header so consumers can group one run's output.
func NewWriter(cfg *config.Config, runID string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, runID: runID, logger: logger}
}

// LoadBatch serializes and publishes records in a single WriteMessages call.
// Records are keyed by ID so a reprocessed occurrence lands on the same
// partition as its earlier result.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.FireRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(&records[i], w.runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("published fire records", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FireRecord into a Kafka message.
func serializeToMessage(rec *domain.FireRecord, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize fire record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "movement_direction", Value: []byte(rec.Direction.String())},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
