// Package signal turns classifier probabilities into discrete trading
// signals with a symmetric confidence band.
package signal

import (
	"fmt"

	"QuantEase/internal/domain/models"
)

// Generator maps up-move probabilities to Buy/Hold/Sell signals. A
// probability above the threshold is a Buy, below 1-threshold a Sell, and
// anything inside the band a Hold. Raising the threshold can only shrink the
// set of non-Hold signals.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate produces one signal per feature row from its probability. The
// threshold must lie in [0.5, 1.0]; outside that range the confidence band
// is degenerate and the call fails with models.ErrInvalidThreshold.
func (g *Generator) Generate(rows []models.FeatureRow, probs []float64, threshold float64) ([]models.SignalPoint, error) {
	if threshold < 0.5 || threshold > 1.0 {
		return nil, fmt.Errorf("threshold %.3f: %w", threshold, models.ErrInvalidThreshold)
	}
	if len(rows) != len(probs) {
		return nil, fmt.Errorf("signal: %d rows but %d probabilities", len(rows), len(probs))
	}

	points := make([]models.SignalPoint, len(rows))
	for i, row := range rows {
		points[i] = models.SignalPoint{
			Date:        row.Date,
			Probability: probs[i],
			Signal:      classify(probs[i], threshold),
		}
	}
	return points, nil
}

func classify(p, threshold float64) models.Signal {
	switch {
	case p > threshold:
		return models.SignalBuy
	case p < 1-threshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
