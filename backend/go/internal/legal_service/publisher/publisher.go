package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/segmentio/kafka-go"
)

// Publisher announces finished ingestion attempts to other systems.
type Publisher interface {
	PublishIndexed(ctx context.Context, event models.DocumentIndexedEvent) error
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) PublishIndexed(context.Context, models.DocumentIndexedEvent) error { return nil }

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka writes events as JSON, keyed by document id so all events of one
// document land on the same partition.
type Kafka struct {
	writer messageWriter
}

// NewKafka wraps a configured writer, normally KafkaClient.Writer.
func NewKafka(writer messageWriter) *Kafka {
	return &Kafka{writer: writer}
}

func (k *Kafka) PublishIndexed(ctx context.Context, event models.DocumentIndexedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal document event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.DocumentID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("document.indexed")},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish document event: %w", err)
	}
	return nil
}
