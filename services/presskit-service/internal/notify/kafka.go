package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/locotek/presskit/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes accepted submissions as lead events, keyed by email so
// repeated requests from one address land on the same partition.
type Kafka struct {
	w messageWriter
}

// NewKafka creates a lead-event publisher for topic.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}}
}

// Notify publishes rec as a JSON lead event.
func (k *Kafka) Notify(ctx context.Context, rec models.Submission) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode lead event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.Email),
		Value: value,
		Time:  rec.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("presskit.download")},
			{Key: "record-id", Value: []byte(rec.ID.String())},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (k *Kafka) Close() error {
	return k.w.Close()
}
