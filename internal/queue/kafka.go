package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/travel-booking/internal/core/events"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the bridge uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON document published for every event.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Key        string      `json:"key"`
	Data       interface{} `json:"data"`
}

// Bridge forwards bus events to a Kafka topic, keyed so that every event of
// one transaction lands on the same partition.
type Bridge struct {
	writer       MessageWriter
	logger       *slog.Logger
	writeTimeout time.Duration
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewBridge(writer MessageWriter, logger *slog.Logger) *Bridge {
	return &Bridge{
		writer:       writer,
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
}

// Register subscribes the bridge to every event type on bus.
func (b *Bridge) Register(bus *events.EventBus) {
	bus.Subscribe(events.Wildcard, b.Handle)
}

func (b *Bridge) Handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(Envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Key:        event.Key(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.EventID(), err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, b.writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	}
	if err := b.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID(), err)
	}

	b.logger.Debug("event forwarded to kafka",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"key", event.Key())
	return nil
}

func (b *Bridge) Close() error {
	return b.writer.Close()
}
