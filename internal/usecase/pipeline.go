// Package usecase wires the strategy services into the operations the
// handlers expose: full pipeline runs, run archiving, the parameter
// dialogue, and portfolio recommendations.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	svccache "QuantEase/internal/service/cache"
	"QuantEase/internal/services/backtest"
	"QuantEase/internal/services/features"
	"QuantEase/internal/services/ml"
	"QuantEase/internal/services/signal"
	"QuantEase/pkg/logger"
	"QuantEase/pkg/util"
)

// StrategyPipeline runs the full evaluation chain for one parameter set:
// fetch, features, train, signals, backtest, metrics. Stages are strictly
// sequential; a failure anywhere aborts the run with the originating stage
// in the error, never a partial result.
type StrategyPipeline struct {
	provider drepo.PriceProvider
	cache    svccache.BytesCache
	cacheTTL time.Duration

	engineer   *features.Engineer
	adapter    *ml.Adapter
	signals    *signal.Generator
	backtester *backtest.Backtester
	calc       *backtest.Calculator
	charts     *ChartWriter

	recorder *RunRecorder
	metrics  drepo.Metrics
	log      *logger.Logger
}

// NewStrategyPipeline assembles the pipeline. The recorder may be nil when
// run archiving is disabled; the cache may be nil to fetch every time.
func NewStrategyPipeline(
	provider drepo.PriceProvider,
	cache svccache.BytesCache,
	cacheTTL time.Duration,
	charts *ChartWriter,
	recorder *RunRecorder,
	metrics drepo.Metrics,
	log *logger.Logger,
) *StrategyPipeline {
	return &StrategyPipeline{
		provider:   provider,
		cache:      cache,
		cacheTTL:   cacheTTL,
		engineer:   features.NewEngineer(),
		adapter:    ml.NewAdapter(),
		signals:    signal.NewGenerator(),
		backtester: backtest.NewBacktester(),
		calc:       backtest.NewCalculator(),
		charts:     charts,
		recorder:   recorder,
		metrics:    metrics,
		log:        log,
	}
}

// Run executes one pipeline run end to end.
func (p *StrategyPipeline) Run(ctx context.Context, params models.RunParams) (*models.RunResult, error) {
	start := time.Now()
	result, err := p.run(ctx, params)

	status := "ok"
	if err != nil {
		status = "error"
		p.metrics.RecordError("run")
	}
	p.metrics.RecordRun(params.Model, status)
	p.metrics.RecordLatency("run", time.Since(start).Seconds())
	if err != nil {
		p.log.Error("strategy run failed",
			logger.String("ticker", params.Ticker),
			logger.String("model", params.Model),
			logger.Error(err))
		return nil, err
	}

	p.metrics.RecordFinalEquity(params.Ticker, result.Curve[len(result.Curve)-1].Strategy)
	p.log.Info("strategy run complete",
		logger.String("ticker", params.Ticker),
		logger.String("model", params.Model),
		logger.Int("trades", result.NumTrades),
		logger.Duration("took", time.Since(start)))
	return result, nil
}

func (p *StrategyPipeline) run(ctx context.Context, params models.RunParams) (*models.RunResult, error) {
	series, err := p.fetchSeries(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	rows, err := p.engineer.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}

	testFraction := params.TestFraction
	if testFraction <= 0 {
		testFraction = ml.DefaultTestFraction
	}
	model, err := p.adapter.Train(rows, params.Model, testFraction, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	probs := model.PredictProba(rows)

	points, err := p.signals.Generate(rows, probs, params.Threshold)
	if err != nil {
		return nil, fmt.Errorf("signals: %w", err)
	}

	sim, err := p.backtester.Run(rows, points, params.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	metrics, err := p.calc.Summarize(sim, model.Eval.Accuracy)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	runID := newRunID()
	chartPath := ""
	if p.charts != nil {
		chartPath, err = p.charts.Write(runID, sim.Curve)
		if err != nil {
			// the run itself is sound; the artifact is best effort
			p.log.Warn("chart artifact write failed", logger.Error(err))
			chartPath = ""
		}
	}

	preview := sim.Trades
	if len(preview) > models.TradePreviewLimit {
		preview = preview[:models.TradePreviewLimit]
	}

	result := &models.RunResult{
		Params:       params,
		Summary:      buildSummary(params, rows, metrics),
		Metrics:      metrics,
		Evaluation:   model.Eval,
		TradePreview: preview,
		NumTrades:    len(sim.Trades),
		Curve:        sim.Curve,
		ChartPath:    chartPath,
	}

	if p.recorder != nil {
		rec := recordFromResult(runID, result)
		if err := p.recorder.Record(ctx, rec); err != nil {
			p.log.Warn("run archive failed", logger.Error(err))
		}
	}

	return result, nil
}

func (p *StrategyPipeline) fetchSeries(ctx context.Context, params models.RunParams) (models.PriceSeries, error) {
	key := seriesKey(params)
	if p.cache != nil {
		if b, ok, err := p.cache.GetBytes(key); err == nil && ok {
			var series models.PriceSeries
			if json.Unmarshal(b, &series) == nil && series.Len() > 0 {
				p.metrics.RecordCache("hit")
				return series, nil
			}
		}
		p.metrics.RecordCache("miss")
	}

	series, err := p.provider.FetchDaily(ctx, params.Ticker, params.StartDate, params.EndDate)
	if err != nil {
		return models.PriceSeries{}, err
	}

	if p.cache != nil {
		if b, err := json.Marshal(series); err == nil {
			_ = p.cache.SetBytes(key, b, p.cacheTTL)
		}
	}
	return series, nil
}

func seriesKey(params models.RunParams) string {
	end := "today"
	if !params.EndDate.IsZero() {
		end = util.FormatDate(params.EndDate)
	}
	return fmt.Sprintf("series:%s:%s:%s", params.Ticker, util.FormatDate(params.StartDate), end)
}

func buildSummary(params models.RunParams, rows []models.FeatureRow, m models.Metrics) models.RunSummary {
	sharpe := "N/A"
	if !math.IsNaN(m.SharpeRatio) {
		sharpe = fmt.Sprintf("%.2f", m.SharpeRatio)
	}
	return models.RunSummary{
		Ticker: params.Ticker,
		Period: fmt.Sprintf("%s to %s",
			util.FormatDate(rows[0].Date),
			util.FormatDate(rows[len(rows)-1].Date)),
		TotalReturn:      fmt.Sprintf("%.2f%%", m.TotalReturn),
		BuyHoldReturn:    fmt.Sprintf("%.2f%%", m.BuyHoldReturn),
		AnnualizedReturn: fmt.Sprintf("%.2f%%", m.AnnualizedReturn),
		SharpeRatio:      sharpe,
		MaxDrawdown:      fmt.Sprintf("%.2f%%", m.MaxDrawdown),
		NumTrades:        m.NumTrades,
		ModelAccuracy:    fmt.Sprintf("%.1f%%", m.ModelAccuracy*100),
	}
}

func recordFromResult(runID string, r *models.RunResult) *models.RunRecord {
	sharpe := r.Metrics.SharpeRatio
	if math.IsNaN(sharpe) {
		sharpe = 0
	}
	return &models.RunRecord{
		RunID:            runID,
		Ticker:           r.Params.Ticker,
		Model:            r.Params.Model,
		Threshold:        r.Params.Threshold,
		InitialCapital:   r.Params.InitialCapital,
		PeriodStart:      r.Curve[0].Date,
		PeriodEnd:        r.Curve[len(r.Curve)-1].Date,
		TotalReturn:      r.Metrics.TotalReturn,
		BuyHoldReturn:    r.Metrics.BuyHoldReturn,
		AnnualizedReturn: r.Metrics.AnnualizedReturn,
		SharpeRatio:      sharpe,
		MaxDrawdown:      r.Metrics.MaxDrawdown,
		NumTrades:        r.Metrics.NumTrades,
		ModelAccuracy:    r.Metrics.ModelAccuracy,
		CreatedAt:        time.Now().UTC(),
	}
}

func newRunID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
