package backtest

import (
	"fmt"
	"math"

	"QuantEase/internal/domain/models"
)

const tradingDaysPerYear = 252

// Calculator turns an equity curve into the reported performance metrics.
// The four return-style metrics are percentages; Sharpe is the raw
// annualized ratio.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// Summarize computes the performance metrics for one simulated run. A curve
// with fewer than two points, or one whose dates span zero days, cannot be
// annualized and fails with models.ErrInsufficientHistory.
func (c *Calculator) Summarize(res Result, accuracy float64) (models.Metrics, error) {
	curve := res.Curve
	if len(curve) < 2 {
		return models.Metrics{}, fmt.Errorf("metrics: %d curve points: %w", len(curve), models.ErrInsufficientHistory)
	}

	first, last := curve[0], curve[len(curve)-1]
	days := last.Date.Sub(first.Date).Hours() / 24
	if days <= 0 {
		return models.Metrics{}, fmt.Errorf("metrics: zero-day span: %w", models.ErrInsufficientHistory)
	}
	years := days / 365

	total := last.Strategy/first.Strategy - 1
	buyHold := last.BuyHold/first.BuyHold - 1
	annualized := math.Pow(1+total, 1/years) - 1

	return models.Metrics{
		TotalReturn:      total * 100,
		BuyHoldReturn:    buyHold * 100,
		AnnualizedReturn: annualized * 100,
		SharpeRatio:      sharpe(curve),
		MaxDrawdown:      maxDrawdown(curve) * 100,
		NumTrades:        len(res.Trades),
		ModelAccuracy:    accuracy,
	}, nil
}

// sharpe annualizes the mean/std of the daily strategy returns. Zero
// variance (a flat or all-Hold run) yields NaN rather than an error; the
// transport layer renders it as null.
func sharpe(curve models.EquityCurve) float64 {
	rets := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		rets = append(rets, curve[i].Strategy/curve[i-1].Strategy-1)
	}

	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	if len(rets) < 2 {
		return math.NaN()
	}
	varSum := 0.0
	for _, r := range rets {
		d := r - mean
		varSum += d * d
	}
	std := math.Sqrt(varSum / float64(len(rets)-1))
	if std == 0 {
		return math.NaN()
	}
	return math.Sqrt(tradingDaysPerYear) * mean / std
}

// maxDrawdown is the worst fractional drop from a running peak, always <= 0.
func maxDrawdown(curve models.EquityCurve) float64 {
	peak := curve[0].Strategy
	worst := 0.0
	for _, p := range curve {
		if p.Strategy > peak {
			peak = p.Strategy
		}
		dd := p.Strategy/peak - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
