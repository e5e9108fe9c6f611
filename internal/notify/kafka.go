package notify

import (
	"context"
	"fmt"

	"PulseWatch/internal/domain/models"
	"PulseWatch/pkg/kafka"
)

// Kafka publishes signals to a topic, keyed by symbol so a consumer
// sees one pair's signals in order.
type Kafka struct {
	producer *kafka.Producer
	topic    string
}

// NewKafka creates a Kafka notifier over an existing producer.
func NewKafka(producer *kafka.Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Notify(ctx context.Context, s *models.Signal) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(s.Symbol), s); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
