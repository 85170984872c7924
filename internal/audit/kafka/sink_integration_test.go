//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit/kafka"
)

func TestSinkPublishesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "matdaan.audit.test"
	sink, err := kafka.NewSink([]string{broker}, topic)
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1), "topic creation is idempotent")

	event := audit.Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Action:    audit.ActionVoteCast,
		Subject:   "*****3456",
	}
	require.NoError(t, sink.Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.ID, got.ID)
	require.Equal(t, audit.ActionVoteCast, got.Action)
	require.Equal(t, "*****3456", string(records[0].Key))
}
