package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// rowsFromCloses builds aligned feature rows with forward returns derived
// from consecutive closes, the way the feature stage labels them.
func rowsFromCloses(closes []float64) []models.FeatureRow {
	rows := make([]models.FeatureRow, len(closes))
	for i, c := range closes {
		rows[i] = models.FeatureRow{Date: day(i), Close: c}
		if i+1 < len(closes) {
			rows[i].FwdReturn = closes[i+1]/c - 1
		}
	}
	return rows
}

func constantSignals(rows []models.FeatureRow, s models.Signal) []models.SignalPoint {
	pts := make([]models.SignalPoint, len(rows))
	for i, r := range rows {
		pts[i] = models.SignalPoint{Date: r.Date, Signal: s}
	}
	return pts
}

func TestRunLagsSignalByOneDay(t *testing.T) {
	rows := rowsFromCloses([]float64{100, 110})
	res, err := NewBacktester().Run(rows, constantSignals(rows, models.SignalBuy), 10000)
	if err != nil {
		t.Fatal(err)
	}

	// position on day 0 is flat, so the strategy only captures the move
	// entered at day 0's close
	if got := res.Curve[0].Strategy; got != 10000 {
		t.Errorf("day 0 strategy equity = %v, want 10000", got)
	}
	if got := res.Curve[1].Strategy; math.Abs(got-11000) > 1e-9 {
		t.Errorf("day 1 strategy equity = %v, want 11000", got)
	}
	if got := res.Curve[1].BuyHold; math.Abs(got-11000) > 1e-9 {
		t.Errorf("day 1 buy-hold equity = %v, want 11000", got)
	}

	// the position change lands on day 1, so the single trade is taken
	// there at that day's close; the first date never trades
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Type != models.TradeBuy || tr.Price != 110 || !tr.Date.Equal(day(1)) {
		t.Errorf("trade = %+v, want Buy at 110 on day 1", tr)
	}
}

func TestRunHoldNeverTrades(t *testing.T) {
	rows := rowsFromCloses([]float64{100, 105, 95, 120})
	res, err := NewBacktester().Run(rows, constantSignals(rows, models.SignalHold), 5000)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("trades = %d, want 0", len(res.Trades))
	}
	for i, p := range res.Curve {
		if p.Strategy != 5000 {
			t.Errorf("day %d: flat strategy equity = %v, want 5000", i, p.Strategy)
		}
	}
	if got := res.Curve[3].BuyHold; math.Abs(got-6000) > 1e-9 {
		t.Errorf("final buy-hold equity = %v, want 6000", got)
	}
}

func TestRunPositionFlip(t *testing.T) {
	rows := rowsFromCloses([]float64{100, 110, 99, 110})
	signals := constantSignals(rows, models.SignalBuy)
	signals[1].Signal = models.SignalSell

	res, err := NewBacktester().Run(rows, signals, 10000)
	if err != nil {
		t.Fatal(err)
	}

	// positions lag the signals by one day: flat, long, short, long
	if len(res.Trades) != 3 {
		t.Fatalf("trades = %d, want 3", len(res.Trades))
	}
	if res.Trades[0].Type != models.TradeBuy || res.Trades[0].Price != 110 || !res.Trades[0].Date.Equal(day(1)) {
		t.Errorf("first trade = %+v, want Buy at 110 on day 1", res.Trades[0])
	}
	if res.Trades[1].Type != models.TradeSell || res.Trades[1].Price != 99 || !res.Trades[1].Date.Equal(day(2)) {
		t.Errorf("second trade = %+v, want Sell at 99 on day 2", res.Trades[1])
	}
	if res.Trades[2].Type != models.TradeBuy || res.Trades[2].Price != 110 || !res.Trades[2].Date.Equal(day(3)) {
		t.Errorf("third trade = %+v, want Buy at 110 on day 3", res.Trades[2])
	}

	// day 2 carries the short entered at day 1: 11000 * (1 - (-0.10)) = 12100
	if got := res.Curve[2].Strategy; math.Abs(got-12100) > 1e-6 {
		t.Errorf("day 2 strategy equity = %v, want 12100", got)
	}
}

func TestRunFinalSignalChangeNeverTrades(t *testing.T) {
	// a signal flip on the last row has no following day to hold through,
	// so no position change and no trade
	rows := rowsFromCloses([]float64{100, 105, 110})
	signals := constantSignals(rows, models.SignalHold)
	signals[2].Signal = models.SignalBuy

	res, err := NewBacktester().Run(rows, signals, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("trades = %d, want 0", len(res.Trades))
	}
}

func TestRunEmptySeries(t *testing.T) {
	for _, n := range []int{0, 1} {
		rows := rowsFromCloses(make([]float64, n))
		_, err := NewBacktester().Run(rows, constantSignals(rows, models.SignalBuy), 10000)
		if !errors.Is(err, models.ErrEmptySeries) {
			t.Errorf("%d rows: err = %v, want ErrEmptySeries", n, err)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	rows := rowsFromCloses([]float64{100, 103, 101, 108, 104, 111})
	signals := constantSignals(rows, models.SignalBuy)
	signals[2].Signal = models.SignalHold

	r1, err := NewBacktester().Run(rows, signals, 10000)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := NewBacktester().Run(rows, signals, 10000)
	if err != nil {
		t.Fatal(err)
	}
	for i := range r1.Curve {
		if r1.Curve[i] != r2.Curve[i] {
			t.Fatalf("curve point %d differs across identical runs", i)
		}
	}
}

func curveFromValues(vals []float64) Result {
	curve := make(models.EquityCurve, len(vals))
	for i, v := range vals {
		curve[i] = models.EquityPoint{Date: day(i), Strategy: v, BuyHold: v}
	}
	return Result{Curve: curve}
}

func TestSummarizeReturnsAndDrawdown(t *testing.T) {
	res := curveFromValues([]float64{100, 50, 100})
	m, err := NewCalculator().Summarize(res, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.TotalReturn) > 1e-9 {
		t.Errorf("total return = %v%%, want 0", m.TotalReturn)
	}
	if math.Abs(m.MaxDrawdown-(-50)) > 1e-9 {
		t.Errorf("max drawdown = %v%%, want -50", m.MaxDrawdown)
	}
	if m.ModelAccuracy != 0.6 {
		t.Errorf("model accuracy = %v, want pass-through 0.6", m.ModelAccuracy)
	}
}

func TestSummarizeAnnualized(t *testing.T) {
	// exactly one 365-day year, 10% total
	curve := models.EquityCurve{
		{Date: day(0), Strategy: 100, BuyHold: 100},
		{Date: day(365), Strategy: 110, BuyHold: 120},
	}
	m, err := NewCalculator().Summarize(Result{Curve: curve}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.AnnualizedReturn-10) > 1e-9 {
		t.Errorf("annualized return = %v%%, want 10", m.AnnualizedReturn)
	}
	if math.Abs(m.BuyHoldReturn-20) > 1e-9 {
		t.Errorf("buy-hold return = %v%%, want 20", m.BuyHoldReturn)
	}
}

func TestSummarizeFlatCurveNaNSharpe(t *testing.T) {
	m, err := NewCalculator().Summarize(curveFromValues([]float64{100, 100, 100, 100}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(m.SharpeRatio) {
		t.Errorf("flat curve Sharpe = %v, want NaN", m.SharpeRatio)
	}
}

func TestSummarizeInsufficientHistory(t *testing.T) {
	_, err := NewCalculator().Summarize(curveFromValues([]float64{100}), 0)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Errorf("one point: err = %v, want ErrInsufficientHistory", err)
	}

	// two points on the same date cannot span any time
	curve := models.EquityCurve{
		{Date: day(0), Strategy: 100, BuyHold: 100},
		{Date: day(0), Strategy: 110, BuyHold: 110},
	}
	_, err = NewCalculator().Summarize(Result{Curve: curve}, 0)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Errorf("zero span: err = %v, want ErrInsufficientHistory", err)
	}
}

func TestSharpeSign(t *testing.T) {
	m, err := NewCalculator().Summarize(curveFromValues([]float64{100, 102, 103, 107, 108}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !(m.SharpeRatio > 0) {
		t.Errorf("Sharpe = %v on a rising curve, want > 0", m.SharpeRatio)
	}
}
