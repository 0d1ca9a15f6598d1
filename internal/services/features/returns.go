package features

// ComputeReturns computes simple returns r_t = C_t/C_{t-1} - 1.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func ComputeReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}
