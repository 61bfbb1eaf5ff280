package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear is an ordinary least-squares regressor, the linear baseline of the
// share-prediction (regression) task. Fit on scaled inputs.
type Linear struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

const ridgeLambda = 1e-6

// FitLinear solves the least-squares problem with an explicit intercept
// column via QR decomposition.
func FitLinear(rows [][]float64, y []float64) (*Linear, error) {
	if len(rows) == 0 || len(rows) != len(y) {
		return nil, fmt.Errorf("linear fit needs matching non-empty X and y, got %d rows and %d labels", len(rows), len(y))
	}

	n := len(rows)
	cols := len(rows[0])

	// [1 | X] so the first solved coefficient is the intercept.
	a := mat.NewDense(n, cols+1, nil)
	for i, row := range rows {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	b := mat.NewVecDense(n, y)
	var solved mat.VecDense

	if n >= cols+1 {
		var qr mat.QR
		qr.Factorize(a)
		if err := qr.SolveVecTo(&solved, false, b); err != nil {
			return nil, fmt.Errorf("least squares solve: %w", err)
		}
	} else {
		// Underdetermined system: QR needs at least as many rows as
		// columns, so fall back to ridge-regularized normal equations.
		var ata mat.Dense
		ata.Mul(a.T(), a)
		for j := 0; j < cols+1; j++ {
			ata.Set(j, j, ata.At(j, j)+ridgeLambda)
		}

		var atb mat.VecDense
		atb.MulVec(a.T(), b)
		if err := solved.SolveVec(&ata, &atb); err != nil {
			return nil, fmt.Errorf("ridge solve: %w", err)
		}
	}

	coef := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coef[j] = solved.AtVec(j + 1)
	}
	return &Linear{Coef: coef, Intercept: solved.AtVec(0)}, nil
}

// Predict returns the fitted response for one row.
func (l *Linear) Predict(row []float64) float64 {
	return l.Intercept + floats.Dot(l.Coef, row)
}
