package usecase

import (
	"context"
	"fmt"
	"time"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
)

// RunRecorder routes completed-run records to the configured archive
// backend: "kafka" publishes and lets the consumer persist, "clickhouse"
// writes directly.
type RunRecorder struct {
	pub     drepo.RunPublisher
	store   drepo.RunStore
	metrics drepo.Metrics
	backend string
}

func NewRunRecorder(pub drepo.RunPublisher, store drepo.RunStore, metrics drepo.Metrics, backend string) *RunRecorder {
	return &RunRecorder{pub: pub, store: store, metrics: metrics, backend: backend}
}

// Record archives one completed run via the configured backend.
func (r *RunRecorder) Record(ctx context.Context, rec *models.RunRecord) error {
	if rec == nil {
		return fmt.Errorf("run record is nil")
	}

	start := time.Now()
	var err error
	switch r.backend {
	case "kafka":
		err = r.pub.Publish(ctx, rec)
	case "clickhouse":
		err = r.store.Store(ctx, rec)
	default:
		err = fmt.Errorf("unknown archive backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("archive")
		return fmt.Errorf("archive run %s: %w", rec.RunID, err)
	}
	r.metrics.RecordLatency("archive", time.Since(start).Seconds())
	return nil
}

// History returns the most recent archived runs, optionally filtered by
// ticker. It always reads from the store, whichever backend writes.
func (r *RunRecorder) History(ctx context.Context, ticker string, limit int) ([]*models.RunRecord, error) {
	if r.store == nil {
		return nil, fmt.Errorf("run archive disabled")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	recs, err := r.store.Query(ctx, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return recs, nil
}

// Close releases the backend clients.
func (r *RunRecorder) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}
