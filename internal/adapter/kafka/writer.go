// Package kafka publishes safety alert events for downstream push
// delivery.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

// AlertWriter produces safety alert events to the alerts topic.
// It implements notify.AlertPublisher.
type AlertWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the alerts topic.
func NewAlertWriter(brokers []string, topic string, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one notification.
func (w *AlertWriter) PublishAlert(ctx context.Context, n domain.Notification) error {
	msg, err := serializeAlert(n)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeAlert marshals a notification into a Kafka message keyed by user
// so one user's alerts stay ordered.
func serializeAlert(n domain.Notification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(n.UserID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "level", Value: []byte(n.Level)},
			{Key: "site_id", Value: []byte(strconv.FormatInt(n.SiteID, 10))},
		},
	}, nil
}
