package repository

import (
	"context"
	"fmt"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	pkgkafka "QuantEase/pkg/kafka"
)

// KafkaRunPublisher emits run-completed events, keyed by ticker so runs of
// the same symbol stay ordered per partition.
type KafkaRunPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaRunPublisher creates the publisher over an existing producer.
func NewKafkaRunPublisher(producer *pkgkafka.Producer, topic string) drepo.RunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

func (p *KafkaRunPublisher) Publish(ctx context.Context, rec *models.RunRecord) error {
	if rec == nil || rec.RunID == "" {
		return fmt.Errorf("run record missing id")
	}
	return p.producer.Publish(ctx, p.topic, []byte(rec.Ticker), rec)
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
