package signal

import (
	"errors"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
)

func rowsFor(n int) []models.FeatureRow {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := make([]models.FeatureRow, n)
	for i := range rows {
		rows[i] = models.FeatureRow{Date: base.AddDate(0, 0, i)}
	}
	return rows
}

func TestGenerateBandPolicy(t *testing.T) {
	probs := []float64{0.95, 0.61, 0.60, 0.50, 0.40, 0.39, 0.05}
	want := []models.Signal{
		models.SignalBuy,
		models.SignalBuy,
		models.SignalHold, // exactly at threshold
		models.SignalHold,
		models.SignalHold, // exactly at 1-threshold
		models.SignalSell,
		models.SignalSell,
	}

	points, err := NewGenerator().Generate(rowsFor(len(probs)), probs, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range points {
		if p.Signal != want[i] {
			t.Errorf("prob %.2f: signal = %d, want %d", probs[i], p.Signal, want[i])
		}
		if p.Probability != probs[i] {
			t.Errorf("point %d: probability not carried through", i)
		}
	}
}

func TestGenerateInvalidThreshold(t *testing.T) {
	for _, thr := range []float64{0.49, 0.0, -1, 1.01, 2} {
		_, err := NewGenerator().Generate(rowsFor(1), []float64{0.5}, thr)
		if !errors.Is(err, models.ErrInvalidThreshold) {
			t.Errorf("threshold %v: err = %v, want ErrInvalidThreshold", thr, err)
		}
	}
	for _, thr := range []float64{0.5, 0.75, 1.0} {
		if _, err := NewGenerator().Generate(rowsFor(1), []float64{0.5}, thr); err != nil {
			t.Errorf("threshold %v: unexpected err %v", thr, err)
		}
	}
}

func TestGenerateLengthMismatch(t *testing.T) {
	if _, err := NewGenerator().Generate(rowsFor(3), []float64{0.5}, 0.6); err == nil {
		t.Fatal("expected error on row/probability length mismatch")
	}
}

// Raising the threshold may only turn non-Hold signals into Holds, never the
// other way around.
func TestGenerateMonotonicShrinkage(t *testing.T) {
	probs := []float64{0.05, 0.2, 0.35, 0.45, 0.5, 0.55, 0.65, 0.8, 0.95}
	rows := rowsFor(len(probs))

	low, err := NewGenerator().Generate(rows, probs, 0.55)
	if err != nil {
		t.Fatal(err)
	}
	high, err := NewGenerator().Generate(rows, probs, 0.8)
	if err != nil {
		t.Fatal(err)
	}

	for i := range probs {
		if low[i].Signal == models.SignalHold && high[i].Signal != models.SignalHold {
			t.Errorf("prob %.2f: Hold at threshold 0.55 became %d at 0.8", probs[i], high[i].Signal)
		}
	}
	active := func(pts []models.SignalPoint) int {
		n := 0
		for _, p := range pts {
			if p.Signal != models.SignalHold {
				n++
			}
		}
		return n
	}
	if active(high) > active(low) {
		t.Fatalf("active signals grew from %d to %d as threshold rose", active(low), active(high))
	}
}
