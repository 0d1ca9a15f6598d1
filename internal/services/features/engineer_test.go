package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
)

func synthSeries(closes []float64) models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return models.PriceSeries{Ticker: "TEST", Candles: candles}
}

// linearCloses returns n strictly increasing closes starting at 100.
func linearCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestComputeRowCount(t *testing.T) {
	for _, n := range []int{52, 60, 120, 300} {
		rows, err := NewEngineer().Compute(synthSeries(linearCloses(n)))
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}
		// longest window costs 49 head rows, the label costs the tail row
		want := n - (longestWindow - 1) - 1
		if len(rows) != want {
			t.Fatalf("n=%d: got %d rows, want %d", n, len(rows), want)
		}
	}
}

func TestComputeInsufficientData(t *testing.T) {
	_, err := NewEngineer().Compute(synthSeries(linearCloses(MinBars - 1)))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestComputeMatchesDirectRecomputation(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		// deterministic wiggle so gains and losses both occur
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i)/5
	}
	rows, err := NewEngineer().Compute(synthSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	for ri, row := range rows {
		ti := ri + longestWindow - 1 // index into the raw series

		sum := 0.0
		for i := ti - 4; i <= ti; i++ {
			sum += closes[i]
		}
		if sma5 := sum / 5; math.Abs(row.SMA5-sma5) > 1e-12 {
			t.Fatalf("row %d: SMA5 = %v, want %v", ri, row.SMA5, sma5)
		}
		if want := closes[ti]/closes[ti-10] - 1; math.Abs(row.Momentum10-want) > 1e-12 {
			t.Fatalf("row %d: Momentum10 = %v, want %v", ri, row.Momentum10, want)
		}
		if want := closes[ti+1]/closes[ti] - 1; math.Abs(row.FwdReturn-want) > 1e-12 {
			t.Fatalf("row %d: FwdReturn = %v, want %v", ri, row.FwdReturn, want)
		}
		wantLabel := 0
		if closes[ti+1] > closes[ti] {
			wantLabel = 1
		}
		if row.Label != wantLabel {
			t.Fatalf("row %d: Label = %d, want %d", ri, row.Label, wantLabel)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + 25*math.Sin(float64(i)/2)
	}
	rows, err := NewEngineer().Compute(synthSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i, row := range rows {
		if row.RSI < 0 || row.RSI > 100 {
			t.Fatalf("row %d: RSI %v out of [0, 100]", i, row.RSI)
		}
	}
}

func TestRSIAllGainsIs100(t *testing.T) {
	rows, err := NewEngineer().Compute(synthSeries(linearCloses(60)))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i, row := range rows {
		if row.RSI != 100 {
			t.Fatalf("row %d: RSI = %v on a loss-free series, want 100", i, row.RSI)
		}
	}
}

func TestMomentumExact(t *testing.T) {
	closes := linearCloses(60)
	rows, err := NewEngineer().Compute(synthSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	row := rows[0]
	ti := longestWindow - 1
	if want := closes[ti]/closes[ti-5] - 1; row.Momentum5 != want {
		t.Fatalf("Momentum5 = %v, want %v", row.Momentum5, want)
	}
	if want := closes[ti]/closes[ti-20] - 1; row.Momentum20 != want {
		t.Fatalf("Momentum20 = %v, want %v", row.Momentum20, want)
	}
}

func TestVolatilityIsSampleStd(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Cos(float64(i))
	}
	rows, err := NewEngineer().Compute(synthSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	ti := longestWindow - 1
	m := 0.0
	for i := ti - volWindow + 1; i <= ti; i++ {
		m += closes[i]
	}
	m /= volWindow
	s := 0.0
	for i := ti - volWindow + 1; i <= ti; i++ {
		d := closes[i] - m
		s += d * d
	}
	want := math.Sqrt(s / (volWindow - 1))
	if math.Abs(rows[0].Volatility-want) > 1e-12 {
		t.Fatalf("Volatility = %v, want %v", rows[0].Volatility, want)
	}
}

func TestComputeReturns(t *testing.T) {
	rets := ComputeReturns([]float64{100, 110, 99})
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if math.Abs(rets[0]-0.10) > 1e-12 {
		t.Fatalf("rets[0] = %v, want 0.10", rets[0])
	}
	if math.Abs(rets[1]-(-0.10)) > 1e-12 {
		t.Fatalf("rets[1] = %v, want -0.10", rets[1])
	}
	if ComputeReturns([]float64{100}) != nil {
		t.Fatalf("expected nil for short input")
	}
}
