package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateRegression(t *testing.T) {
	m := EvaluateRegression([]float64{1, 2, 3}, []float64{1, 2, 3})
	assert.Equal(t, 0.0, m.MAE)
	assert.Equal(t, 0.0, m.RMSE)

	m = EvaluateRegression([]float64{2, 4}, []float64{1, 2})
	assert.InDelta(t, 1.5, m.MAE, 1e-9)
	assert.InDelta(t, 1.5811388, m.RMSE, 1e-6)
}

func TestEvaluateClassificationPerfect(t *testing.T) {
	m := EvaluateClassification([]float64{0.9, 0.8, 0.1, 0.2}, []float64{1, 1, 0, 0})
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 1.0, m.Precision)
	assert.Equal(t, 1.0, m.Recall)
	assert.Equal(t, 1.0, m.F1)
	assert.Equal(t, 1.0, m.AUC)
}

func TestEvaluateClassificationInverted(t *testing.T) {
	m := EvaluateClassification([]float64{0.1, 0.2, 0.9, 0.8}, []float64{1, 1, 0, 0})
	assert.Equal(t, 0.0, m.Accuracy)
	assert.Equal(t, 0.0, m.AUC)
}

func TestRankAUCTiesCountHalf(t *testing.T) {
	// One positive and one negative share the same score: AUC 0.5.
	m := EvaluateClassification([]float64{0.5, 0.5}, []float64{1, 0})
	assert.InDelta(t, 0.5, m.AUC, 1e-9)
}

func TestRankAUCSingleClass(t *testing.T) {
	m := EvaluateClassification([]float64{0.9, 0.8}, []float64{1, 1})
	assert.Equal(t, 0.5, m.AUC)
}
