package repository

import (
	"context"
	"time"

	"QuantEase/internal/domain/models"
)

// PriceProvider is the external market-data boundary: daily OHLCV bars for a
// ticker over [from, to]. An empty result surfaces as models.ErrNoData.
type PriceProvider interface {
	FetchDaily(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)
}

// RunPublisher emits completed-run events to a message backend.
type RunPublisher interface {
	Publish(ctx context.Context, rec *models.RunRecord) error
	Close() error
}

// RunStore persists and queries archived run records.
type RunStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, rec *models.RunRecord) error
	Query(ctx context.Context, ticker string, limit int) ([]*models.RunRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics is the observability sink for the service.
type Metrics interface {
	RecordRun(model, status string)
	RecordError(kind string)
	RecordFinalEquity(ticker string, value float64)
	RecordLatency(op string, seconds float64)
	RecordCache(outcome string)
}
