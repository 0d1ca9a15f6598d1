// Package backtest simulates the signal-following portfolio against
// buy-and-hold and summarizes the result.
package backtest

import (
	"fmt"

	"QuantEase/internal/domain/models"
)

// Backtester replays signals over the feature table. The position held on
// date t is the signal from date t-1 (the starting position is flat), so a
// signal only earns the return of the following day. Both equity curves
// compound multiplicatively from the initial capital.
type Backtester struct{}

func NewBacktester() *Backtester { return &Backtester{} }

// Result is one simulated run before metric summarization.
type Result struct {
	Curve  models.EquityCurve
	Trades []models.Trade
}

// Run simulates the strategy over the aligned rows and signals. Fewer than
// two aligned dates cannot produce a return and fail with
// models.ErrEmptySeries.
func (b *Backtester) Run(rows []models.FeatureRow, signals []models.SignalPoint, initialCapital float64) (Result, error) {
	if len(rows) != len(signals) {
		return Result{}, fmt.Errorf("backtest: %d rows but %d signals", len(rows), len(signals))
	}
	if len(rows) < 2 {
		return Result{}, fmt.Errorf("backtest: %d aligned dates: %w", len(rows), models.ErrEmptySeries)
	}

	curve := make(models.EquityCurve, len(rows))
	var trades []models.Trade

	strat := initialCapital
	hold := initialCapital
	// position held on date t is the signal from t-1; the first date is flat
	position := models.SignalHold

	for t, row := range rows {
		pos := position
		if t > 0 {
			pos = signals[t-1].Signal
			// equity at t reflects the position carried through the
			// previous day's forward return
			strat *= 1 + float64(pos)*rows[t-1].FwdReturn
			hold *= 1 + rows[t-1].FwdReturn
		}
		curve[t] = models.EquityPoint{Date: row.Date, Strategy: strat, BuyHold: hold}

		// a trade fires where the held position changes, at that day's
		// close; the first date never trades
		if pos != position {
			typ := models.TradeBuy
			if pos < position {
				typ = models.TradeSell
			}
			trades = append(trades, models.Trade{Date: row.Date, Type: typ, Price: row.Close})
		}
		position = pos
	}

	return Result{Curve: curve, Trades: trades}, nil
}
