//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/beach-safety-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/beach-safety-ingest/internal/domain"
)

const testAlertsTopic = "test-beach-safety-alerts"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestAlertWriterRoundTrip verifies that a published notification survives
// the trip through Kafka intact: payload, key, and headers.
func TestAlertWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertsTopic)

	writer := kafka.NewAlertWriter([]string{broker}, testAlertsTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	notification := domain.Notification{
		ID:         uuid.New(),
		UserID:     42,
		SiteID:     7,
		Title:      "DANGER - Marina Beach",
		Content:    "Beach safety alert for Marina Beach: Dangerous wave height: 3.2 meters. Current distance: 4.8 km.",
		Level:      domain.LevelDanger,
		DistanceKm: 4.8,
		Type:       domain.NotificationTypeSafetyAlert,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, writer.PublishAlert(ctx, notification))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testAlertsTopic,
		GroupID: fmt.Sprintf("test-alerts-%d", time.Now().UnixNano()),
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alerts topic")

	assert.Equal(t, []byte("42"), msg.Key)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, notification.ID, got.ID)
	assert.Equal(t, notification.Title, got.Title)
	assert.Equal(t, notification.Content, got.Content)
	assert.Equal(t, domain.LevelDanger, got.Level)
	assert.Equal(t, domain.NotificationTypeSafetyAlert, got.Type)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "danger", headers["level"])
	assert.Equal(t, "7", headers["site_id"])
}
