package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler is a fitted per-column standardization transform (zero mean, unit
// variance). It is part of the persisted bundle: linear and logistic models
// are fit on scaled inputs and must see identically scaled inputs at serving
// time. Tree ensembles skip scaling.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// FitScaler computes column means and standard deviations over rows.
// Zero-variance columns get std 1 so transforming them is a no-op shift.
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty matrix")
	}

	cols := len(rows[0])
	s := &Scaler{
		Means: make([]float64, cols),
		Stds:  make([]float64, cols),
	}

	column := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if math.IsNaN(std) || std == 0 {
			std = 1
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}
	return s, nil
}

// Transform returns a scaled copy of rows. The input is not mutated.
func (s *Scaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.Means) {
			return nil, fmt.Errorf("row has %d columns, scaler fitted on %d", len(row), len(s.Means))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Means[j]) / s.Stds[j]
		}
		out[i] = scaled
	}
	return out, nil
}
