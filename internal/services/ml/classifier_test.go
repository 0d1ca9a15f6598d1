package ml

import (
	"errors"
	"math"
	"testing"

	"QuantEase/internal/domain/models"
)

// separableRows builds feature rows where the label is fully determined by
// the sign of the momentum features, so any sane classifier should learn it.
func separableRows(n int) []models.FeatureRow {
	rows := make([]models.FeatureRow, n)
	for i := range rows {
		sign := 1.0
		label := 1
		if i%2 == 0 {
			sign = -1.0
			label = 0
		}
		rows[i] = models.FeatureRow{
			PriceToSMA5:  1 + 0.01*sign,
			PriceToSMA20: 1 + 0.02*sign,
			PriceToSMA50: 1 + 0.03*sign,
			RSI:          50 + 20*sign,
			Momentum5:    0.02 * sign,
			Momentum10:   0.04 * sign,
			Momentum20:   0.06 * sign,
			Volatility:   0.01,
			Label:        label,
		}
	}
	return rows
}

func TestSplitIndicesDeterministic(t *testing.T) {
	a1, b1 := splitIndices(200, 0.2, 42)
	a2, b2 := splitIndices(200, 0.2, 42)

	if len(b1) != 40 {
		t.Fatalf("test size = %d, want 40", len(b1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("train index %d differs across runs with same seed", i)
		}
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("test index %d differs across runs with same seed", i)
		}
	}

	_, b3 := splitIndices(200, 0.2, 43)
	same := len(b1) == len(b3)
	if same {
		for i := range b1 {
			if b1[i] != b3[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatal("different seeds produced an identical split")
	}
}

func TestSplitIndicesPartition(t *testing.T) {
	train, test := splitIndices(50, 0.3, 7)
	seen := make(map[int]bool, 50)
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 50 {
		t.Fatalf("partition covers %d of 50 indices", len(seen))
	}
}

func TestSplitIndicesClamped(t *testing.T) {
	train, test := splitIndices(3, 0.01, 1)
	if len(test) != 1 || len(train) != 2 {
		t.Fatalf("tiny fraction: got %d/%d train/test, want 2/1", len(train), len(test))
	}
	train, test = splitIndices(3, 0.99, 1)
	if len(test) != 2 || len(train) != 1 {
		t.Fatalf("huge fraction: got %d/%d train/test, want 1/2", len(train), len(test))
	}
}

func TestTrainUnsupportedModel(t *testing.T) {
	_, err := NewAdapter().Train(separableRows(100), "gradient_boost", 0.2, 1)
	if !errors.Is(err, models.ErrUnsupportedModel) {
		t.Fatalf("err = %v, want ErrUnsupportedModel", err)
	}
}

func TestTrainLearnsSeparableData(t *testing.T) {
	rows := separableRows(200)
	for _, kind := range []string{models.ModelLogistic, models.ModelRandomForest} {
		m, err := NewAdapter().Train(rows, kind, 0.2, 42)
		if err != nil {
			t.Fatalf("%s: train: %v", kind, err)
		}
		if m.Eval.Accuracy < 0.9 {
			t.Fatalf("%s: held-out accuracy %.2f on separable data", kind, m.Eval.Accuracy)
		}
		probs := m.PredictProba(rows)
		for i, p := range probs {
			if p < 0 || p > 1 || math.IsNaN(p) {
				t.Fatalf("%s: prob[%d] = %v out of range", kind, i, p)
			}
		}
	}
}

func TestTrainDeterministicForSeed(t *testing.T) {
	rows := separableRows(120)
	m1, err := NewAdapter().Train(rows, models.ModelRandomForest, 0.2, 9)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := NewAdapter().Train(rows, models.ModelRandomForest, 0.2, 9)
	if err != nil {
		t.Fatal(err)
	}
	p1 := m1.PredictProba(rows)
	p2 := m2.PredictProba(rows)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("probability %d differs across identically seeded runs", i)
		}
	}
}

// fixedClassifier predicts a canned probability per sample, for evaluating
// the scorer against a known confusion matrix.
type fixedClassifier struct{ probs []float64 }

func (f *fixedClassifier) Fit([][]float64, []int)          {}
func (f *fixedClassifier) Kind() string                    { return "fixed" }
func (f *fixedClassifier) PredictProba(X [][]float64) []float64 {
	return f.probs[:len(X)]
}

func TestEvaluateKnownConfusion(t *testing.T) {
	// pred: 1 1 0 0, truth: 1 0 0 1
	// class 1: tp=1 fp=1 fn=1 -> precision=recall=f1=0.5, support 2
	clf := &fixedClassifier{probs: []float64{0.9, 0.8, 0.1, 0.2}}
	X := make([][]float64, 4)
	y := []int{1, 0, 0, 1}

	ev := evaluate(clf, X, y)
	if ev.Accuracy != 0.5 {
		t.Fatalf("accuracy = %v, want 0.5", ev.Accuracy)
	}
	for _, cls := range []int{0, 1} {
		s := ev.Classes[cls]
		if s.Precision != 0.5 || s.Recall != 0.5 || s.F1 != 0.5 || s.Support != 2 {
			t.Fatalf("class %d scores = %+v, want all 0.5 with support 2", cls, s)
		}
	}
}

func TestEvaluateZeroSupportClass(t *testing.T) {
	clf := &fixedClassifier{probs: []float64{0.9, 0.9}}
	ev := evaluate(clf, make([][]float64, 2), []int{1, 1})
	s := ev.Classes[0]
	if s.Precision != 0 || s.Recall != 0 || s.F1 != 0 || s.Support != 0 {
		t.Fatalf("absent class scores = %+v, want zeros", s)
	}
	if ev.Accuracy != 1 {
		t.Fatalf("accuracy = %v, want 1", ev.Accuracy)
	}
}
