package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic         = "cart-events"
	EventTypeCartChanged = "cart.changed"
	eventTypeHeader      = "event_type"
)

// CartChanged is emitted after a cart mutation has been persisted.
type CartChanged struct {
	EventID    string      `json:"event_id"`
	Op         string      `json:"op"`
	ProductID  int64       `json:"product_id"`
	Items      domain.Cart `json:"items"`
	Total      string      `json:"total"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewCartChanged(op string, productID int64, cart domain.Cart) CartChanged {
	return CartChanged{
		EventID:    uuid.NewString(),
		Op:         op,
		ProductID:  productID,
		Items:      cart,
		Total:      cart.Total().StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event CartChanged) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event CartChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)), // per-product ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(EventTypeCartChanged)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write cart event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CartChanged) error { return nil }
func (NopPublisher) Close() error { return nil }
