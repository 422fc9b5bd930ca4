package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"employee-service/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PublishError wraps any failure to hand an event to the broker.
type PublishError struct {
	Topic string
	Key   string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s (key %s): %v", e.Topic, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// MessageWriter is the subset of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

//go:generate mockgen -source=publisher.go -destination=mock/publisher_mock.go -package=mock
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event events.NotificationEvent) error
}

type kafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewPublisher(writer MessageWriter, logger ...*zap.Logger) Publisher {
	l := zap.L().Named("kafka.producer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer")
	}
	return &kafkaPublisher{writer: writer, logger: l}
}

// Publish returns once the writer acknowledged the message. Downstream
// consumption is never observed.
func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, event events.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return &PublishError{Topic: topic, Key: key, Err: err}
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "source_service", Value: []byte(event.Metadata.SourceService)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return &PublishError{Topic: topic, Key: key, Err: err}
	}

	p.logger.Debug("message published",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
	)
	return nil
}
