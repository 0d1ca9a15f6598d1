// Package ml wraps the binary direction classifiers used by the strategy
// pipeline. Both model kinds are fitted on a deterministic seeded split and
// evaluated on the held-out partition; probabilities for signal generation
// are then produced over the full feature table with the same fitted model.
// That in-sample reuse (no walk-forward retraining) mirrors the documented
// behavior of the strategy and is a known methodological trade-off.
package ml

import (
	"fmt"

	"QuantEase/internal/domain/models"
)

// DefaultTestFraction is the held-out share used when none is supplied.
const DefaultTestFraction = 0.2

// Classifier is the capability set a model kind must provide. New kinds are
// added by implementing this interface and registering in newClassifier;
// the pipeline never branches on the concrete type.
type Classifier interface {
	// Fit trains on the given rows. y contains 0/1 labels.
	Fit(X [][]float64, y []int)

	// PredictProba returns P(label=1) per row, in input order.
	PredictProba(X [][]float64) []float64

	// Kind returns the model kind identifier.
	Kind() string
}

func newClassifier(kind string, seed int64) (Classifier, error) {
	switch kind {
	case models.ModelRandomForest:
		return newRandomForest(seed), nil
	case models.ModelLogistic:
		return newLogistic(), nil
	default:
		return nil, fmt.Errorf("ml: model kind %q: %w", kind, models.ErrUnsupportedModel)
	}
}

// TrainedModel pairs a fitted classifier with the feature-name ordering its
// inputs must follow and the held-out diagnostics from training.
type TrainedModel struct {
	clf Classifier

	// FeatureNames fixes the column order predictions must be computed
	// against; rows not in this order are a programming error.
	FeatureNames []string

	Eval models.Evaluation
}

// Kind returns the underlying model kind.
func (m *TrainedModel) Kind() string { return m.clf.Kind() }

// PredictProba computes the up-move probability for every feature row.
func (m *TrainedModel) PredictProba(rows []models.FeatureRow) []float64 {
	return m.clf.PredictProba(featureMatrix(rows))
}

// Adapter trains and evaluates classifiers over feature rows.
type Adapter struct{}

// NewAdapter creates a classifier adapter.
func NewAdapter() *Adapter { return &Adapter{} }

// Train fits the requested model kind on a seeded train/test split of the
// rows and evaluates it on the held-out partition. The split is reproducible
// for a given seed and row count. Unknown kinds fail with
// models.ErrUnsupportedModel.
func (a *Adapter) Train(rows []models.FeatureRow, kind string, testFraction float64, seed int64) (*TrainedModel, error) {
	clf, err := newClassifier(kind, seed)
	if err != nil {
		return nil, err
	}
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = DefaultTestFraction
	}

	X := featureMatrix(rows)
	y := labelVector(rows)

	trainIdx, testIdx := splitIndices(len(rows), testFraction, seed)
	clf.Fit(takeRows(X, trainIdx), takeLabels(y, trainIdx))

	eval := evaluate(clf, takeRows(X, testIdx), takeLabels(y, testIdx))

	names := make([]string, len(models.FeatureNames))
	copy(names, models.FeatureNames)

	return &TrainedModel{clf: clf, FeatureNames: names, Eval: eval}, nil
}

func featureMatrix(rows []models.FeatureRow) [][]float64 {
	X := make([][]float64, len(rows))
	for i, r := range rows {
		X[i] = r.Vector()
	}
	return X
}

func labelVector(rows []models.FeatureRow) []int {
	y := make([]int, len(rows))
	for i, r := range rows {
		y[i] = r.Label
	}
	return y
}

func takeRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func takeLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
