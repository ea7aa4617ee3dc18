package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the fire-and-forget event boundary. PublishAsync never
// surfaces an error to the caller.
type Publisher interface {
	PublishAsync(eventType, key string, data any)
}

// Producer publishes envelopes to a single Kafka topic, keyed by aggregate
// id so events for one order stay ordered.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, eventType, key string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	env := Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// PublishAsync detaches publication from the caller's request. Failures are
// logged and dropped; a lost notification never affects the response.
func (p *Producer) PublishAsync(eventType, key string, data any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, eventType, key, data); err != nil {
			p.logger.Warn("event publish failed",
				zap.String("type", eventType),
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
