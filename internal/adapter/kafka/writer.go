package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/synop-etl/internal/config"
	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/geojson"
)

// Writer produces one message per station record to a Kafka topic.
// It implements pipeline.RecordLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes every record of a decoded bulletin in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, b domain.DecodedBulletin) error {
	if len(b.Records) == 0 {
		return nil
	}
	msgs, err := buildMessages(b)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d records: %w", len(msgs), err)
	}
	w.logger.Debug("records published", "topic", w.writer.Topic, "count", len(msgs), "window", b.Bulletin.Window.String())
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func buildMessages(b domain.DecodedBulletin) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, len(b.Records))
	for i := range b.Records {
		msg, err := serializeToMessage(b.Records[i], b.Bulletin)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// serializeToMessage marshals a record as a GeoJSON Feature keyed by station.
func serializeToMessage(rec domain.ObservationRecord, b domain.Bulletin) (kafkago.Message, error) {
	data, err := json.Marshal(geojson.NewFeature(rec))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %s: %w", rec.StationID, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(rec.StationID)},
			{Key: "window_start", Value: []byte(b.Window.Start.UTC().Format(time.RFC3339))},
			{Key: "fetched_at", Value: []byte(b.FetchedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
