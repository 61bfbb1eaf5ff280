package ml

import (
	"fmt"
	"math/rand/v2"
)

// SplitResult holds seeded train/test partitions.
type SplitResult struct {
	XTrain [][]float64
	YTrain []float64
	XTest  [][]float64
	YTest  []float64
}

// Split shuffles rows with the given rng and holds out testFraction of them.
// Both partitions are guaranteed non-empty.
func Split(rows [][]float64, y []float64, testFraction float64, rng *rand.Rand) (*SplitResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 rows to split, got %d", len(rows))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	perm := rng.Perm(len(rows))
	testSize := int(float64(len(rows)) * testFraction)
	if testSize == 0 {
		testSize = 1
	}
	if testSize == len(rows) {
		testSize = len(rows) - 1
	}

	res := &SplitResult{}
	for i, idx := range perm {
		if i < testSize {
			res.XTest = append(res.XTest, rows[idx])
			res.YTest = append(res.YTest, y[idx])
		} else {
			res.XTrain = append(res.XTrain, rows[idx])
			res.YTrain = append(res.YTrain, y[idx])
		}
	}
	return res, nil
}

// StratifiedSplit splits binary-labeled rows preserving class balance in both
// partitions. Every class present in the input ends up in the training set;
// classes with at least two members also land in the test set.
func StratifiedSplit(rows [][]float64, y []float64, testFraction float64, rng *rand.Rand) (*SplitResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 rows to split, got %d", len(rows))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	byClass := make(map[float64][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	res := &SplitResult{}
	// Deterministic class order: iterate 0 then 1 then anything else sorted
	// by first occurrence. Binary labels only ever produce two buckets.
	for _, label := range classOrder(y) {
		indices := byClass[label]
		perm := rng.Perm(len(indices))

		testSize := int(float64(len(indices)) * testFraction)
		if testSize == len(indices) {
			testSize = len(indices) - 1
		}

		for i, p := range perm {
			idx := indices[p]
			if i < testSize {
				res.XTest = append(res.XTest, rows[idx])
				res.YTest = append(res.YTest, y[idx])
			} else {
				res.XTrain = append(res.XTrain, rows[idx])
				res.YTrain = append(res.YTrain, y[idx])
			}
		}
	}

	return res, nil
}

func classOrder(y []float64) []float64 {
	seen := make(map[float64]bool)
	var order []float64
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			order = append(order, label)
		}
	}
	return order
}
