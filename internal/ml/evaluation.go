package ml

import (
	"math"
	"sort"
)

// RegressionMetrics are held-out metrics of the share-prediction task.
type RegressionMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// ClassificationMetrics are held-out metrics of the winner-prediction task.
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	F1        float64 `json:"f1"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	AUC       float64 `json:"auc"`
}

// EvaluateRegression computes MAE and RMSE of predictions against truth.
// An empty held-out set yields zero metrics, never NaN.
func EvaluateRegression(predicted, truth []float64) RegressionMetrics {
	if len(predicted) == 0 {
		return RegressionMetrics{}
	}

	var absSum, sqSum float64
	for i, p := range predicted {
		diff := p - truth[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(predicted))
	return RegressionMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
}

// EvaluateClassification computes threshold metrics at 0.5 plus AUC from
// positive-class probabilities against binary truth labels.
func EvaluateClassification(probabilities, truth []float64) ClassificationMetrics {
	if len(probabilities) == 0 {
		return ClassificationMetrics{AUC: 0.5}
	}

	var tp, fp, tn, fn float64
	for i, p := range probabilities {
		predicted := p >= 0.5
		actual := truth[i] >= 0.5
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}

	m := ClassificationMetrics{
		Accuracy: (tp + tn) / float64(len(probabilities)),
		AUC:      rankAUC(probabilities, truth),
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// rankAUC is the Mann-Whitney formulation: the probability a random positive
// outranks a random negative, with ties counted half. Returns 0.5 when one
// class is absent from the held-out split.
func rankAUC(probabilities, truth []float64) float64 {
	type scored struct {
		p   float64
		pos bool
	}
	items := make([]scored, len(probabilities))
	var positives, negatives float64
	for i, p := range probabilities {
		pos := truth[i] >= 0.5
		items[i] = scored{p: p, pos: pos}
		if pos {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	sort.Slice(items, func(i, j int) bool { return items[i].p < items[j].p })

	// Assign average ranks across tied scores, then sum positive ranks.
	var posRankSum float64
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].p == items[i].p {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if items[k].pos {
				posRankSum += avgRank
			}
		}
		i = j
	}

	return (posRankSum - positives*(positives+1)/2) / (positives * negatives)
}
