package ml

import "QuantEase/internal/domain/models"

// evaluate scores a fitted classifier on held-out samples. Predictions use a
// 0.5 probability cut; per-class precision/recall/F1 cover both label classes
// even when one has no support.
func evaluate(clf Classifier, X [][]float64, y []int) models.Evaluation {
	probs := clf.PredictProba(X)
	pred := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			pred[i] = 1
		}
	}

	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}
	acc := 0.0
	if len(y) > 0 {
		acc = float64(correct) / float64(len(y))
	}

	classes := make(map[int]models.ClassScores, 2)
	for _, cls := range []int{0, 1} {
		classes[cls] = classScores(pred, y, cls)
	}

	return models.Evaluation{Accuracy: acc, Classes: classes}
}

func classScores(pred, y []int, cls int) models.ClassScores {
	var tp, fp, fn, support int
	for i := range y {
		if y[i] == cls {
			support++
		}
		switch {
		case pred[i] == cls && y[i] == cls:
			tp++
		case pred[i] == cls && y[i] != cls:
			fp++
		case pred[i] != cls && y[i] == cls:
			fn++
		}
	}

	var precision, recall, f1 float64
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return models.ClassScores{Precision: precision, Recall: recall, F1: f1, Support: support}
}
