//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	leadkafka "leadgate/internal/lead/notify/kafka"
	"leadgate/internal/lead/models"
	platformkafka "leadgate/internal/platform/kafka"
	"leadgate/pkg/testutil/containers"
)

func TestSink_RoundTripThroughBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "leads.accepted.it"

	producer, err := platformkafka.NewProducer(platformkafka.ProducerConfig{
		Brokers: []string{broker.Broker},
		Topic:   topic,
	})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, topic, 1, 1))
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, topic, 1, 1), "second call must be idempotent")

	email := "ana@acme.com"
	rec := models.NewRecord(models.NormalizedSubmission{
		Name: "Ana", Company: "Acme", TeamSize: 12, Email: &email, IPAddress: "203.0.113.5",
	}, time.Now())
	require.NoError(t, leadkafka.New(producer, topic).Notify(ctx, rec))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	var event leadkafka.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	assert.Equal(t, rec.ID, event.Lead.ID)
	assert.Equal(t, rec.ID.String(), string(records[0].Key))
}
