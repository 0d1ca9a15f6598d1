package ml

import (
	"math"

	"QuantEase/internal/domain/models"
)

// logistic is a binary logistic-regression classifier fitted with full-batch
// gradient descent on standardized inputs. Training is fully deterministic.
type logistic struct {
	w []float64
	b float64

	// standardization fitted on the training partition
	mean []float64
	std  []float64

	lr     float64
	l2     float64
	epochs int
}

func newLogistic() *logistic {
	return &logistic{
		lr:     0.1,
		l2:     1e-4,
		epochs: 400,
	}
}

func (m *logistic) Kind() string { return models.ModelLogistic }

func (m *logistic) Fit(X [][]float64, y []int) {
	if len(X) == 0 {
		return
	}
	d := len(X[0])
	m.fitScaler(X, d)
	Z := m.transform(X)

	m.w = make([]float64, d)
	m.b = 0
	n := float64(len(Z))

	for epoch := 0; epoch < m.epochs; epoch++ {
		gw := make([]float64, d)
		gb := 0.0
		for i, x := range Z {
			p := sigmoid(dot(m.w, x) + m.b)
			e := p - float64(y[i])
			for j := range gw {
				gw[j] += e * x[j]
			}
			gb += e
		}
		for j := range m.w {
			m.w[j] -= m.lr * (gw[j]/n + m.l2*m.w[j])
		}
		m.b -= m.lr * gb / n
	}
}

func (m *logistic) PredictProba(X [][]float64) []float64 {
	Z := m.transform(X)
	out := make([]float64, len(Z))
	for i, x := range Z {
		out[i] = sigmoid(dot(m.w, x) + m.b)
	}
	return out
}

func (m *logistic) fitScaler(X [][]float64, d int) {
	m.mean = make([]float64, d)
	m.std = make([]float64, d)
	n := float64(len(X))
	for _, x := range X {
		for j := 0; j < d; j++ {
			m.mean[j] += x[j]
		}
	}
	for j := 0; j < d; j++ {
		m.mean[j] /= n
	}
	for _, x := range X {
		for j := 0; j < d; j++ {
			dv := x[j] - m.mean[j]
			m.std[j] += dv * dv
		}
	}
	for j := 0; j < d; j++ {
		m.std[j] = math.Sqrt(m.std[j] / n)
		if m.std[j] == 0 {
			m.std[j] = 1 // constant column, leave it centered
		}
	}
}

func (m *logistic) transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		z := make([]float64, len(x))
		for j := range x {
			z[j] = (x[j] - m.mean[j]) / m.std[j]
		}
		out[i] = z
	}
	return out
}

func dot(w, x []float64) float64 {
	s := 0.0
	for i := 0; i < len(w) && i < len(x); i++ {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	// clamp to avoid overflow in Exp
	if z > 35 {
		return 1
	}
	if z < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
