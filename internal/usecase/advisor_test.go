package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
)

// growthProvider serves a smooth upward daily series for any ticker.
type growthProvider struct {
	days  int
	daily float64
}

func (g *growthProvider) FetchDaily(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	s := models.PriceSeries{Ticker: ticker}
	price := 100.0
	base := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < g.days; i++ {
		price *= 1 + g.daily
		s.Candles = append(s.Candles, models.Candle{Date: base.AddDate(0, 0, i), Close: price})
	}
	return s, nil
}

func profile(risk int, div string, horizon int) models.UserProfile {
	return models.UserProfile{
		UserID:          "u1",
		RiskScore:       risk,
		Diversification: div,
		HorizonYears:    horizon,
		CapitalUSD:      100000,
	}
}

func TestRecommendWeightsByProfile(t *testing.T) {
	a := NewAdvisor(&growthProvider{days: 2520, daily: 0.0003}, testLogger(t))
	ctx := context.Background()

	cases := []struct {
		risk    int
		div     string
		tickers []string
		spy     float64
	}{
		{9, "concentrated", []string{"AGG", "SPY"}, 0.9},
		{6, "balanced", []string{"AGG", "QQQ", "SPY"}, 0.6},
		{2, "diversified", []string{"AGG", "EFA", "QQQ", "SPY"}, 0.3},
	}
	for _, c := range cases {
		rec, err := a.Recommend(ctx, profile(c.risk, c.div, 10))
		if err != nil {
			t.Fatalf("risk %d %s: %v", c.risk, c.div, err)
		}
		if len(rec.Portfolio) != len(c.tickers) {
			t.Fatalf("risk %d %s: %d assets, want %d", c.risk, c.div, len(rec.Portfolio), len(c.tickers))
		}
		total := 0.0
		for i, asset := range rec.Portfolio {
			if asset.Ticker != c.tickers[i] {
				t.Errorf("risk %d %s: asset %d = %s, want %s", c.risk, c.div, i, asset.Ticker, c.tickers[i])
			}
			if asset.Ticker == "SPY" && asset.Weight != c.spy {
				t.Errorf("risk %d %s: SPY weight = %v, want %v", c.risk, c.div, asset.Weight, c.spy)
			}
			if want := asset.Weight * 100000; math.Abs(asset.AmountUSD-want) > 0.01 {
				t.Errorf("%s amount = %v, want %v", asset.Ticker, asset.AmountUSD, want)
			}
			total += asset.Weight
		}
		if math.Abs(total-1) > 1e-9 {
			t.Errorf("risk %d %s: weights sum to %v", c.risk, c.div, total)
		}
	}
}

func TestRecommendMetricsOnSteadyGrowth(t *testing.T) {
	a := NewAdvisor(&growthProvider{days: 2520, daily: 0.0003}, testLogger(t))
	rec, err := a.Recommend(context.Background(), profile(6, "balanced", 10))
	if err != nil {
		t.Fatal(err)
	}

	if rec.ExpectedReturn <= 0 {
		t.Errorf("expected return = %v on a rising portfolio", rec.ExpectedReturn)
	}
	if rec.Backtest.Years != 10 {
		t.Errorf("backtest years = %d, want 10", rec.Backtest.Years)
	}
	// a monotonically rising blend never draws down
	if rec.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %v, want 0", rec.MaxDrawdown)
	}
}

func TestRecommendRationaleMentionsHorizon(t *testing.T) {
	a := NewAdvisor(&growthProvider{days: 2520, daily: 0.0003}, testLogger(t))
	rec, err := a.Recommend(context.Background(), profile(3, "concentrated", 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Rationale) != 3 {
		t.Fatalf("rationale has %d entries, want 3", len(rec.Rationale))
	}
	found := false
	for _, r := range rec.Rationale {
		if r == "Shorter 3-year horizon prioritizes capital preservation" {
			found = true
		}
	}
	if !found {
		t.Errorf("horizon rationale missing: %v", rec.Rationale)
	}
}

func TestRecommendInvalidRiskScore(t *testing.T) {
	a := NewAdvisor(&growthProvider{days: 100, daily: 0.0003}, testLogger(t))
	for _, risk := range []int{0, 11} {
		if _, err := a.Recommend(context.Background(), profile(risk, "balanced", 10)); err == nil {
			t.Errorf("risk %d accepted", risk)
		}
	}
}
