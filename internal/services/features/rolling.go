package features

import "math"

// rollingMean averages xs[end-window+1 .. end] (window ends at end, inclusive).
func rollingMean(xs []float64, end, window int) float64 {
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		sum += xs[i]
	}
	return sum / float64(window)
}

// rollingStd computes the sample standard deviation (ddof=1) of the trailing
// window ending at end.
func rollingStd(xs []float64, end, window int) float64 {
	m := rollingMean(xs, end, window)
	s := 0.0
	for i := end - window + 1; i <= end; i++ {
		d := xs[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(window-1))
}

// rsi computes the Relative Strength Index at end from the trailing period
// of close-over-close deltas. A windowful of non-negative deltas means no
// average loss; RSI is 100 in that case, since there were no losses.
func rsi(closes []float64, end, period int) float64 {
	gain, loss := 0.0, 0.0
	for i := end - period + 1; i <= end; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// momentum is close(t)/close(t-n) - 1.
func momentum(closes []float64, end, n int) float64 {
	return closes[end]/closes[end-n] - 1
}
