package ml

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestSplitSizes(t *testing.T) {
	rows := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		y[i] = float64(i)
	}

	res, err := Split(rows, y, 0.3, seededRNG(1))
	require.NoError(t, err)

	assert.Len(t, res.XTest, 3)
	assert.Len(t, res.XTrain, 7)
	assert.Len(t, res.YTest, 3)
	assert.Len(t, res.YTrain, 7)
}

func TestSplitSeededIsDeterministic(t *testing.T) {
	rows := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		y[i] = float64(i)
	}

	first, err := Split(rows, y, 0.25, seededRNG(42))
	require.NoError(t, err)
	second, err := Split(rows, y, 0.25, seededRNG(42))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplitRejectsDegenerateInput(t *testing.T) {
	_, err := Split([][]float64{{1}}, []float64{1}, 0.3, seededRNG(1))
	assert.Error(t, err)

	rows := [][]float64{{1}, {2}}
	_, err = Split(rows, []float64{1, 2}, 0, seededRNG(1))
	assert.Error(t, err)
	_, err = Split(rows, []float64{1, 2}, 1, seededRNG(1))
	assert.Error(t, err)
}

func TestStratifiedSplitPreservesClassBalance(t *testing.T) {
	var rows [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		rows = append(rows, []float64{float64(i)})
		y = append(y, 0)
	}
	for i := 0; i < 10; i++ {
		rows = append(rows, []float64{float64(100 + i)})
		y = append(y, 1)
	}

	res, err := StratifiedSplit(rows, y, 0.3, seededRNG(42))
	require.NoError(t, err)

	count := func(labels []float64, class float64) int {
		n := 0
		for _, l := range labels {
			if l == class {
				n++
			}
		}
		return n
	}

	// 30% of each class held out, rounded down per class.
	assert.Equal(t, 9, count(res.YTest, 0))
	assert.Equal(t, 3, count(res.YTest, 1))
	assert.Equal(t, 21, count(res.YTrain, 0))
	assert.Equal(t, 7, count(res.YTrain, 1))
}

func TestStratifiedSplitKeepsRareClassInTraining(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{0, 0, 0, 1}

	res, err := StratifiedSplit(rows, y, 0.5, seededRNG(3))
	require.NoError(t, err)

	var trainHasPositive bool
	for _, l := range res.YTrain {
		if l == 1 {
			trainHasPositive = true
		}
	}
	assert.True(t, trainHasPositive)
}
