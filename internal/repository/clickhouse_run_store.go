package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
)

// ClickHouseRunStore persists archived strategy runs in ClickHouse.
type ClickHouseRunStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseRunStore creates the run archive over an existing connection.
func NewClickHouseRunStore(db *sql.DB, table string) drepo.RunStore {
	return &ClickHouseRunStore{db: db, table: table}
}

// SchemaStatements returns the DDL for the run archive table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    run_id            String,
    ticker            LowCardinality(String),
    model             LowCardinality(String),
    threshold         Float64,
    initial_capital   Float64,
    period_start      Date,
    period_end        Date,
    total_return      Float64,
    buy_hold_return   Float64,
    annualized_return Float64,
    sharpe_ratio      Float64,
    max_drawdown      Float64,
    num_trades        UInt32,
    model_accuracy    Float64,
    created_at        DateTime64(3)
) ENGINE = ReplacingMergeTree(created_at)
ORDER BY (ticker, created_at, run_id)`, table)}
}

func (s *ClickHouseRunStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("run store schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseRunStore) Store(ctx context.Context, rec *models.RunRecord) error {
	if rec == nil || rec.RunID == "" {
		return fmt.Errorf("run record missing id")
	}
	q := fmt.Sprintf(`INSERT INTO %s
(run_id, ticker, model, threshold, initial_capital, period_start, period_end,
 total_return, buy_hold_return, annualized_return, sharpe_ratio, max_drawdown,
 num_trades, model_accuracy, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, q,
		rec.RunID,
		rec.Ticker,
		rec.Model,
		rec.Threshold,
		rec.InitialCapital,
		rec.PeriodStart,
		rec.PeriodEnd,
		rec.TotalReturn,
		rec.BuyHoldReturn,
		rec.AnnualizedReturn,
		rec.SharpeRatio,
		rec.MaxDrawdown,
		uint32(rec.NumTrades),
		rec.ModelAccuracy,
		created,
	)
	return err
}

// Query returns the latest runs, newest first. An empty ticker matches all.
func (s *ClickHouseRunStore) Query(ctx context.Context, ticker string, limit int) ([]*models.RunRecord, error) {
	q := fmt.Sprintf(`SELECT run_id, ticker, model, threshold, initial_capital,
 period_start, period_end, total_return, buy_hold_return, annualized_return,
 sharpe_ratio, max_drawdown, num_trades, model_accuracy, created_at
FROM %s`, s.table)
	args := make([]interface{}, 0, 2)
	if ticker != "" {
		q += " WHERE ticker = ?"
		args = append(args, ticker)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		var numTrades uint32
		if err := rows.Scan(
			&r.RunID, &r.Ticker, &r.Model, &r.Threshold, &r.InitialCapital,
			&r.PeriodStart, &r.PeriodEnd, &r.TotalReturn, &r.BuyHoldReturn,
			&r.AnnualizedReturn, &r.SharpeRatio, &r.MaxDrawdown,
			&numTrades, &r.ModelAccuracy, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.NumTrades = int(numTrades)
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

func (s *ClickHouseRunStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseRunStore) Close() error {
	return nil // connection owned by pkg/clickhouse
}
