package usecase

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"QuantEase/internal/domain/models"
)

// ChartWriter renders the equity comparison of a run as a CSV artifact that
// a frontend can plot. One file per run under the artifacts directory.
type ChartWriter struct {
	dir string
}

func NewChartWriter(dir string) *ChartWriter {
	return &ChartWriter{dir: dir}
}

// Write stores the curve for runID and returns the artifact path.
func (w *ChartWriter) Write(runID string, curve models.EquityCurve) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("chart dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("performance_%s.csv", runID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("chart create: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"date", "strategy", "buy_hold"}); err != nil {
		return "", fmt.Errorf("chart header: %w", err)
	}
	for _, p := range curve {
		rec := []string{
			p.Date.Format("2006-01-02"),
			strconv.FormatFloat(p.Strategy, 'f', 2, 64),
			strconv.FormatFloat(p.BuyHold, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return "", fmt.Errorf("chart row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("chart flush: %w", err)
	}
	return path, nil
}
