package models

import "time"

// Candle represents one daily OHLCV record.
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered daily price history for a single ticker.
// Dates are strictly increasing with no duplicates; the series is owned by
// the pipeline run that fetched it and is never mutated after construction.
type PriceSeries struct {
	Ticker  string
	Candles []Candle
}

// Len returns the number of candles.
func (s PriceSeries) Len() int { return len(s.Candles) }

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Start returns the first trading date (zero time for an empty series).
func (s PriceSeries) Start() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[0].Date
}

// End returns the last trading date (zero time for an empty series).
func (s PriceSeries) End() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Date
}
