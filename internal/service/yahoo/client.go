// Package yahoo implements the daily price provider on top of Yahoo
// Finance's chart API.
package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	"QuantEase/internal/service/ratelimit"
	"QuantEase/pkg/util"
)

// Client fetches daily OHLCV bars from Yahoo Finance. Requests are locally
// rate limited per ticker so bursts of runs against the same symbol do not
// hammer the upstream.
type Client struct {
	limiter      *ratelimit.Limiter
	burst        float64
	refillPerSec float64
	retries      int
	retryDelay   time.Duration
}

// New creates a Yahoo price provider.
func New(burst, refillPerSec float64, retries int, retryDelay time.Duration) drepo.PriceProvider {
	return &Client{
		limiter:      ratelimit.New(),
		burst:        burst,
		refillPerSec: refillPerSec,
		retries:      retries,
		retryDelay:   retryDelay,
	}
}

// FetchDaily returns the daily bars for ticker over [from, to], oldest
// first. A zero `to` means "through today". An empty response maps to
// models.ErrNoData so callers can distinguish unknown tickers from
// transport failures.
func (c *Client) FetchDaily(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	if ticker == "" {
		return models.PriceSeries{}, fmt.Errorf("yahoo: empty ticker: %w", models.ErrNoData)
	}
	if to.IsZero() {
		to = time.Now()
	}
	from, to = util.AlignDaily(from, to)
	if !c.limiter.Allow("yahoo:"+ticker, c.burst, c.refillPerSec) {
		return models.PriceSeries{}, fmt.Errorf("yahoo: rate limited for %s", ticker)
	}

	var series models.PriceSeries
	var err error
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return models.PriceSeries{}, ctx.Err()
		}
		series, err = fetchOnce(ticker, from, to)
		if err == nil || attempt >= c.retries {
			break
		}
		select {
		case <-ctx.Done():
			return models.PriceSeries{}, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	if err != nil {
		return models.PriceSeries{}, err
	}

	if series.Len() == 0 {
		return models.PriceSeries{}, fmt.Errorf("yahoo: no bars for %s in %s..%s: %w",
			ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), models.ErrNoData)
	}
	return series, nil
}

func fetchOnce(ticker string, from, to time.Time) (models.PriceSeries, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	})

	series := models.PriceSeries{Ticker: ticker}
	for iter.Next() {
		bar := iter.Bar()
		series.Candles = append(series.Candles, models.Candle{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   bar.Open.InexactFloat64(),
			High:   bar.High.InexactFloat64(),
			Low:    bar.Low.InexactFloat64(),
			Close:  bar.Close.InexactFloat64(),
			Volume: float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("yahoo: chart %s: %w", ticker, err)
	}
	return series, nil
}
