// Package features derives the technical-indicator table and the binary
// next-day-direction label from a raw daily price series.
package features

import (
	"fmt"

	"QuantEase/internal/domain/models"
)

// Rolling windows. longestWindow drives the warm-up trim: every indicator is
// defined from index longestWindow-1 onward.
const (
	smaShortWindow = 5
	smaMidWindow   = 20
	smaLongWindow  = 50
	rsiPeriod      = 14
	volWindow      = 20

	longestWindow = smaLongWindow
)

// MinBars is the shortest series Compute accepts: the longest rolling window
// plus the row consumed by the forward-return label.
const MinBars = longestWindow + 1

// Engineer computes date-aligned feature rows from a price series. It is
// stateless; each call returns a fresh slice owned by the caller.
type Engineer struct{}

// NewEngineer creates a feature engineer.
func NewEngineer() *Engineer { return &Engineer{} }

// Compute transforms the series into feature rows. The first longestWindow-1
// dates are dropped (incomplete rolling windows) and the final date is
// dropped (its label needs the following close). Every returned row carries
// all indicators, the forward return, and the label.
func (e *Engineer) Compute(series models.PriceSeries) ([]models.FeatureRow, error) {
	n := series.Len()
	if n < MinBars {
		return nil, fmt.Errorf("features: %d bars for %s, need at least %d: %w",
			n, series.Ticker, MinBars, models.ErrInsufficientData)
	}

	closes := series.Closes()
	rows := make([]models.FeatureRow, 0, n-longestWindow)

	// t stops at n-2: the last row has no tomorrow to label it with.
	for t := longestWindow - 1; t < n-1; t++ {
		c := closes[t]
		sma5 := rollingMean(closes, t, smaShortWindow)
		sma20 := rollingMean(closes, t, smaMidWindow)
		sma50 := rollingMean(closes, t, smaLongWindow)
		fwd := closes[t+1]/c - 1

		row := models.FeatureRow{
			Date:         series.Candles[t].Date,
			Close:        c,
			SMA5:         sma5,
			SMA20:        sma20,
			SMA50:        sma50,
			PriceToSMA5:  c / sma5,
			PriceToSMA20: c / sma20,
			PriceToSMA50: c / sma50,
			RSI:          rsi(closes, t, rsiPeriod),
			Momentum5:    momentum(closes, t, 5),
			Momentum10:   momentum(closes, t, 10),
			Momentum20:   momentum(closes, t, 20),
			Volatility:   rollingStd(closes, t, volWindow),
			FwdReturn:    fwd,
		}
		if fwd > 0 {
			row.Label = 1
		}
		rows = append(rows, row)
	}

	return rows, nil
}
