package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer implements Emitter using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer creates a producer that writes events to topic. It returns nil, nil when
// brokers or topic are empty so callers can treat Kafka as optional. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaProducer{writer: writer, topic: topic}, nil
}

// Emit serializes the event as JSON and writes it keyed by workspace id.
func (p *KafkaProducer) Emit(ctx context.Context, event *Event) error {
	if p == nil || p.writer == nil || event == nil {
		return nil
	}
	msg, err := message(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, msg)
}

func message(event *Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.WorkspaceID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}, nil
}

// Close flushes and closes the Kafka writer. Safe to call on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Decode parses a message value written by KafkaProducer.
func Decode(value []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, errors.New("events: message has no type")
	}
	return &event, nil
}
