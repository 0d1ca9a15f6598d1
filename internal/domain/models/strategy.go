package models

import "time"

// Model kinds supported by the classifier layer.
const (
	ModelRandomForest = "random_forest"
	ModelLogistic     = "logistic_regression"
)

// Signal is a discrete trading decision derived from a predicted probability.
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// FeatureNames lists the model inputs in the exact column order used for
// fitting and prediction. FwdReturn and Label are deliberately absent: the
// forward return is foresight-only ground truth.
var FeatureNames = []string{
	"price_to_sma5",
	"price_to_sma20",
	"price_to_sma50",
	"rsi",
	"momentum5",
	"momentum10",
	"momentum20",
	"volatility",
}

// FeatureRow holds the derived indicators for one trading date, after
// warm-up trimming. All rows of a run share one date index with the
// probability, signal, position, and equity series built from them.
type FeatureRow struct {
	Date         time.Time
	Close        float64
	SMA5         float64
	SMA20        float64
	SMA50        float64
	PriceToSMA5  float64
	PriceToSMA20 float64
	PriceToSMA50 float64
	RSI          float64
	Momentum5    float64
	Momentum10   float64
	Momentum20   float64
	Volatility   float64

	// FwdReturn is close(t+1)/close(t) - 1. It labels the row and drives the
	// backtest accounting; it is never exposed as a model feature.
	FwdReturn float64
	Label     int
}

// Vector returns the feature columns in FeatureNames order.
func (r FeatureRow) Vector() []float64 {
	return []float64{
		r.PriceToSMA5,
		r.PriceToSMA20,
		r.PriceToSMA50,
		r.RSI,
		r.Momentum5,
		r.Momentum10,
		r.Momentum20,
		r.Volatility,
	}
}

// SignalPoint pairs a predicted probability of an up move with the discrete
// signal derived from it for one trading date.
type SignalPoint struct {
	Date        time.Time
	Probability float64
	Signal      Signal
}

// TradeType marks the direction of a position change.
type TradeType string

const (
	TradeBuy  TradeType = "Buy"
	TradeSell TradeType = "Sell"
)

// Trade records a position change at the close of one trading date.
type Trade struct {
	Date  time.Time `json:"date"`
	Type  TradeType `json:"type"`
	Price float64   `json:"price"`
}

// EquityPoint is one date of the simulated equity curves.
type EquityPoint struct {
	Date     time.Time
	Strategy float64
	BuyHold  float64
}

// EquityCurve tracks strategy and buy-and-hold portfolio values over the
// shared date index, both seeded at the initial capital.
type EquityCurve []EquityPoint

// ClassScores holds held-out precision/recall/F1 for one label class.
type ClassScores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation holds held-out diagnostics from model training. These are
// reported but never fed back into the pipeline.
type Evaluation struct {
	Accuracy float64
	Classes  map[int]ClassScores
}

// Metrics summarizes a backtest. TotalReturn, BuyHoldReturn,
// AnnualizedReturn and MaxDrawdown are percentages; SharpeRatio is the raw
// annualized ratio and is NaN when daily returns have zero variance (a flat
// curve is a valid outcome, not an error); ModelAccuracy is a fraction in
// [0, 1] passed through from the held-out evaluation.
type Metrics struct {
	TotalReturn      float64
	BuyHoldReturn    float64
	AnnualizedReturn float64
	SharpeRatio      float64
	MaxDrawdown      float64
	NumTrades        int
	ModelAccuracy    float64
}

// RunParams are the validated inputs of one pipeline run. Soft defaults are
// applied by the surrounding layers (HTTP, dialogue) before the core sees
// them; the core rejects invalid values instead of substituting.
type RunParams struct {
	Ticker         string
	StartDate      time.Time
	EndDate        time.Time // zero value means "through today"
	Model          string
	Threshold      float64
	InitialCapital float64
	TestFraction   float64
	Seed           int64
}

// RunSummary carries the human-readable result fields, formatted the way
// the report endpoints and the dialogue present them.
type RunSummary struct {
	Ticker           string `json:"ticker"`
	Period           string `json:"period"`
	TotalReturn      string `json:"total_return"`
	BuyHoldReturn    string `json:"buy_hold_return"`
	AnnualizedReturn string `json:"annualized_return"`
	SharpeRatio      string `json:"sharpe_ratio"`
	MaxDrawdown      string `json:"max_drawdown"`
	NumTrades        int    `json:"num_trades"`
	ModelAccuracy    string `json:"model_accuracy"`
}

// TradePreviewLimit caps how many trades a run result carries for display.
const TradePreviewLimit = 10

// RunResult is the immutable outcome of one full pipeline run.
type RunResult struct {
	Params     RunParams
	Summary    RunSummary
	Metrics    Metrics
	Evaluation Evaluation

	// TradePreview holds the first TradePreviewLimit trades in date order.
	TradePreview []Trade
	NumTrades    int

	// Curve is the full equity comparison, kept for artifact rendering.
	Curve EquityCurve

	// ChartPath references the rendered performance-comparison artifact.
	ChartPath string
}

// RunRecord is the archived form of a completed run.
type RunRecord struct {
	RunID            string    `json:"run_id"`
	Ticker           string    `json:"ticker"`
	Model            string    `json:"model"`
	Threshold        float64   `json:"threshold"`
	InitialCapital   float64   `json:"initial_capital"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	TotalReturn      float64   `json:"total_return"`
	BuyHoldReturn    float64   `json:"buy_hold_return"`
	AnnualizedReturn float64   `json:"annualized_return"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	NumTrades        int       `json:"num_trades"`
	ModelAccuracy    float64   `json:"model_accuracy"`
	CreatedAt        time.Time `json:"created_at"`
}
