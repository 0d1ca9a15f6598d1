package usecase

import (
	"context"
	"encoding/json"
	"time"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	pkgkafka "QuantEase/pkg/kafka"
)

// RunEventsHandler consumes run-completed events from Kafka and persists
// them in the run store. It is the consumer side of the "kafka" archive
// backend.
type RunEventsHandler struct {
	topic   string
	store   drepo.RunStore
	metrics drepo.Metrics
}

func NewRunEventsHandler(topic string, store drepo.RunStore, metrics drepo.Metrics) *RunEventsHandler {
	return &RunEventsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *RunEventsHandler) Topic() string { return h.topic }

// Handle decodes one RunRecord event and stores it.
func (h *RunEventsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.RunRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	if err := h.store.Store(ctx, &rec); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("archive_insert", time.Since(start).Seconds())
	if !rec.CreatedAt.IsZero() {
		h.metrics.RecordLatency("archive_e2e", time.Since(rec.CreatedAt).Seconds())
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*RunEventsHandler)(nil)
