package usecase

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
	"QuantEase/internal/service/cache"
	"QuantEase/pkg/logger"
)

type fakeProvider struct {
	series models.PriceSeries
	err    error
	calls  int
}

func (f *fakeProvider) FetchDaily(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return models.PriceSeries{}, f.err
	}
	s := f.series
	s.Ticker = ticker
	return s, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordRun(string, string)          {}
func (noopMetrics) RecordError(string)                {}
func (noopMetrics) RecordFinalEquity(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)     {}
func (noopMetrics) RecordCache(string)                {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

// waveSeries produces an oscillating but drifting daily series long enough
// for the feature warm-up.
func waveSeries(n int) models.PriceSeries {
	base := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	s := models.PriceSeries{Ticker: "TEST"}
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1 + 0.002*math.Sin(float64(i)/3) + 0.0005
		s.Candles = append(s.Candles, models.Candle{
			Date:  base.AddDate(0, 0, i),
			Open:  price, High: price * 1.01, Low: price * 0.99,
			Close:  price,
			Volume: 1_000_000,
		})
	}
	return s
}

func testParams() models.RunParams {
	return models.RunParams{
		Ticker:         "TEST",
		StartDate:      time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Model:          models.ModelRandomForest,
		Threshold:      0.55,
		InitialCapital: 10000,
		Seed:           42,
	}
}

func newTestPipeline(t *testing.T, provider *fakeProvider, c cache.BytesCache) *StrategyPipeline {
	t.Helper()
	charts := NewChartWriter(t.TempDir())
	return NewStrategyPipeline(provider, c, time.Minute, charts, nil, noopMetrics{}, testLogger(t))
}

func TestPipelineRunEndToEnd(t *testing.T) {
	provider := &fakeProvider{series: waveSeries(300)}
	p := newTestPipeline(t, provider, nil)

	res, err := p.Run(context.Background(), testParams())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Curve) != 300-50 {
		t.Errorf("curve length = %d, want %d", len(res.Curve), 300-50)
	}
	if res.Summary.Ticker != "TEST" {
		t.Errorf("summary ticker = %q", res.Summary.Ticker)
	}
	if !strings.HasSuffix(res.Summary.TotalReturn, "%") {
		t.Errorf("total return %q not formatted as percent", res.Summary.TotalReturn)
	}
	if res.NumTrades < len(res.TradePreview) {
		t.Errorf("trade count %d below preview length %d", res.NumTrades, len(res.TradePreview))
	}
	if len(res.TradePreview) > models.TradePreviewLimit {
		t.Errorf("preview has %d trades, cap is %d", len(res.TradePreview), models.TradePreviewLimit)
	}
	if res.ChartPath == "" {
		t.Error("chart artifact path missing")
	} else if _, err := os.Stat(res.ChartPath); err != nil {
		t.Errorf("chart artifact not written: %v", err)
	}
}

func TestPipelineDeterministicForSeed(t *testing.T) {
	provider := &fakeProvider{series: waveSeries(260)}
	p := newTestPipeline(t, provider, nil)

	r1, err := p.Run(context.Background(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	r2, err := p.Run(context.Background(), testParams())
	if err != nil {
		t.Fatal(err)
	}

	if r1.Metrics != r2.Metrics {
		t.Errorf("metrics differ across identically seeded runs:\n%+v\n%+v", r1.Metrics, r2.Metrics)
	}
	if r1.NumTrades != r2.NumTrades {
		t.Errorf("trade counts differ: %d vs %d", r1.NumTrades, r2.NumTrades)
	}
}

func TestPipelineStageErrors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		provider := &fakeProvider{err: models.ErrNoData}
		p := newTestPipeline(t, provider, nil)
		_, err := p.Run(context.Background(), testParams())
		if !errors.Is(err, models.ErrNoData) {
			t.Fatalf("err = %v, want ErrNoData", err)
		}
		if !strings.HasPrefix(err.Error(), "fetch:") {
			t.Errorf("err %q does not name the fetch stage", err)
		}
	})

	t.Run("features", func(t *testing.T) {
		provider := &fakeProvider{series: waveSeries(30)}
		p := newTestPipeline(t, provider, nil)
		_, err := p.Run(context.Background(), testParams())
		if !errors.Is(err, models.ErrInsufficientData) {
			t.Fatalf("err = %v, want ErrInsufficientData", err)
		}
	})

	t.Run("train", func(t *testing.T) {
		provider := &fakeProvider{series: waveSeries(260)}
		p := newTestPipeline(t, provider, nil)
		params := testParams()
		params.Model = "xgboost"
		_, err := p.Run(context.Background(), params)
		if !errors.Is(err, models.ErrUnsupportedModel) {
			t.Fatalf("err = %v, want ErrUnsupportedModel", err)
		}
	})

	t.Run("signals", func(t *testing.T) {
		provider := &fakeProvider{series: waveSeries(260)}
		p := newTestPipeline(t, provider, nil)
		params := testParams()
		params.Threshold = 0.3
		_, err := p.Run(context.Background(), params)
		if !errors.Is(err, models.ErrInvalidThreshold) {
			t.Fatalf("err = %v, want ErrInvalidThreshold", err)
		}
	})
}

func TestPipelineSeriesCache(t *testing.T) {
	provider := &fakeProvider{series: waveSeries(260)}
	p := newTestPipeline(t, provider, cache.NewTTLCache())

	if _, err := p.Run(context.Background(), testParams()); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), testParams()); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second run cached)", provider.calls)
	}
}

func TestChartWriterOutput(t *testing.T) {
	dir := t.TempDir()
	w := NewChartWriter(dir)

	curve := models.EquityCurve{
		{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Strategy: 10000, BuyHold: 10000},
		{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Strategy: 10100, BuyHold: 10050},
	}
	path, err := w.Write("abc123", curve)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact written outside dir: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("artifact has %d lines, want header plus 2", len(lines))
	}
	if lines[0] != "date,strategy,buy_hold" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2023-01-02,10000.00,10000.00" {
		t.Errorf("first row = %q", lines[1])
	}
}
