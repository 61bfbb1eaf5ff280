package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Logistic is a binary logistic-regression classifier, the linear baseline of
// the winner-prediction task. Fit on scaled inputs with full-batch gradient
// descent; training is deterministic for a given input.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

const (
	logisticEpochs       = 2000
	logisticLearningRate = 0.1
	logisticL2           = 1e-4
)

// FitLogistic fits the classifier on rows with binary labels (0/1).
func FitLogistic(rows [][]float64, y []float64) (*Logistic, error) {
	if len(rows) == 0 || len(rows) != len(y) {
		return nil, fmt.Errorf("logistic fit needs matching non-empty X and y, got %d rows and %d labels", len(rows), len(y))
	}

	n := float64(len(rows))
	cols := len(rows[0])
	model := &Logistic{Weights: make([]float64, cols)}

	grad := make([]float64, cols)
	for epoch := 0; epoch < logisticEpochs; epoch++ {
		for j := range grad {
			grad[j] = logisticL2 * model.Weights[j]
		}
		var gradBias float64

		for i, row := range rows {
			residual := model.PredictProba(row) - y[i]
			floats.AddScaled(grad, residual/n, row)
			gradBias += residual / n
		}

		floats.AddScaled(model.Weights, -logisticLearningRate, grad)
		model.Bias -= logisticLearningRate * gradBias
	}

	return model, nil
}

// PredictProba returns the positive-class probability for one row.
func (l *Logistic) PredictProba(row []float64) float64 {
	z := l.Bias + floats.Dot(l.Weights, row)
	return 1 / (1 + math.Exp(-z))
}
