package kafka

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/config"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() domain.FireRecord {
	return domain.FireRecord{
		ID:              "fire-0123456789abcdef",
		Lat:             56.62,
		Lng:             -111.28,
		ReportDate:      domain.NewDate(2016, time.May, 2),
		StartDate:       domain.NewDate(2016, time.May, 1),
		EndDate:         domain.NewDate(2016, time.May, 5),
		PeakDate:        domain.NewDate(2016, time.May, 3),
		Duration:        4,
		MaxSize:         6.2,
		AveSize:         3.9,
		AveIncreaseRate: domain.Rate{Value: 1, Defined: true},
		Direction:       domain.DirectionNE,
		DirectionCode:   1,
		ProcessedAt:     time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	rec := sampleRecord()

	msg, err := serializeToMessage(&rec, "run-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("fire-0123456789abcdef"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "movement_direction", msg.Headers[0].Key)
	assert.Equal(t, []byte("NE"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-10-19T08:30:00Z"), msg.Headers[1].Value)
	assert.Equal(t, "run_id", msg.Headers[2].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[2].Value)

	var decoded domain.FireRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rec.StartDate, decoded.StartDate)
	assert.Equal(t, rec.PeakDate, decoded.PeakDate)
	assert.Equal(t, domain.DirectionNE, decoded.Direction)
	assert.False(t, decoded.AveDecreaseRate.Defined)
}

func TestSerializeToMessage_UndefinedRateIsNull(t *testing.T) {
	rec := sampleRecord()

	msg, err := serializeToMessage(&rec, "run-1")
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"decrease_spread_rate":null`)
	assert.Contains(t, string(msg.Value), `"increase_spread_rate":1`)
	assert.Contains(t, string(msg.Value), `"start_date":"2016-05-01"`)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaSinkTopic:     "fire-extents",
		BatchFlushInterval: 250 * time.Millisecond,
	}

	w := NewWriter(cfg, "run-1", slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "fire-extents", w.writer.Topic)
	assert.Equal(t, 250*time.Millisecond, w.writer.BatchTimeout)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.Equal(t, "run-1", w.runID)
}
