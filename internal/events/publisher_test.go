package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func sampleCart() domain.Cart {
	return domain.Cart{
		{Product: domain.Product{ID: 1, Title: "A", Price: 10}, Amount: 2},
	}
}

func TestNewCartChanged(t *testing.T) {
	event := NewCartChanged("add", 1, sampleCart())

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "add", event.Op)
	assert.Equal(t, int64(1), event.ProductID)
	assert.Equal(t, "20.00", event.Total)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, time.Second)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	p := &KafkaPublisher{writer: writer}

	event := NewCartChanged("add", 42, sampleCart())
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventTypeCartChanged, string(msg.Headers[0].Value))

	var decoded CartChanged
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, sampleCart(), decoded.Items)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &mockWriter{err: errors.New("broker unavailable")}}

	err := p.Publish(context.Background(), NewCartChanged("remove", 1, domain.Cart{}))
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	p := &KafkaPublisher{writer: writer}

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	kafkaContainer, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)

	p := NewKafkaPublisher("cart-events-test", brokers...)
	defer p.Close()

	event := NewCartChanged("add", 7, sampleCart())
	require.Eventually(t, func() bool {
		// first write may race topic auto-creation
		return p.Publish(ctx, event) == nil
	}, 30*time.Second, time.Second)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     "cart-events-test",
		Partition: 0,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, "7", string(msg.Key))
}
