package ml

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

var testColumns = []string{"a", "b", "c"}

// classificationFixture builds a linearly separable binary set large enough
// to survive a stratified split.
func classificationFixture() (rows [][]float64, labels []float64) {
	for i := 0; i < 20; i++ {
		f := float64(i)
		rows = append(rows, []float64{f, f * 0.5, 1})
		labels = append(labels, 0)
	}
	for i := 0; i < 20; i++ {
		f := float64(i)
		rows = append(rows, []float64{f + 30, f*0.5 + 15, 1})
		labels = append(labels, 1)
	}
	return rows, labels
}

func regressionFixture() (rows [][]float64, labels []float64) {
	for i := 0; i < 40; i++ {
		f := float64(i)
		rows = append(rows, []float64{f, f * 2, 5})
		labels = append(labels, 3*f+1)
	}
	return rows, labels
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func TestTrainClassificationDegenerateLabels(t *testing.T) {
	rows, _ := classificationFixture()
	labels := make([]float64, len(rows)) // all zero

	_, _, err := TrainClassification(rows, labels, testColumns, nil, TrainOptions{Seed: 42})
	assert.ErrorIs(t, err, domain.ErrDegenerateLabels)
}

func TestTrainClassificationReproducible(t *testing.T) {
	rows, labels := classificationFixture()
	opts := TrainOptions{Seed: 42, Now: fixedNow}

	first, firstMeta, err := TrainClassification(rows, labels, testColumns, nil, opts)
	require.NoError(t, err)
	second, secondMeta, err := TrainClassification(rows, labels, testColumns, nil, opts)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, firstMeta, secondMeta)
}

func TestTrainClassificationSeparableData(t *testing.T) {
	rows, labels := classificationFixture()

	bundle, meta, err := TrainClassification(rows, labels, testColumns, nil, TrainOptions{Seed: 42, Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, TaskClassification, bundle.Task)
	assert.Equal(t, testColumns, bundle.FeatureColumns)
	assert.Contains(t, []string{FamilyLogistic, FamilyForest}, bundle.Best)
	assert.Equal(t, bundle.Best, meta.BestModel)
	assert.Equal(t, len(rows), meta.TrainRows+meta.TestRows)

	// Separable data: the winning family should rank a clear positive above
	// a clear negative.
	scores, err := bundle.Scores([][]float64{{45, 30, 1}, {1, 0.5, 1}})
	require.NoError(t, err)
	assert.Greater(t, scores[0], scores[1])
}

func TestTrainRegressionPicksLowerRMSE(t *testing.T) {
	rows, labels := regressionFixture()

	bundle, meta, err := TrainRegression(rows, labels, testColumns, TrainOptions{Seed: 7, Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, TaskRegression, bundle.Task)
	require.Contains(t, meta.Metrics, FamilyLinear)
	require.Contains(t, meta.Metrics, FamilyForest)

	linear := meta.Metrics[FamilyLinear].(RegressionMetrics)
	forest := meta.Metrics[FamilyForest].(RegressionMetrics)
	if linear.RMSE < forest.RMSE {
		assert.Equal(t, FamilyLinear, bundle.Best)
	} else {
		assert.Equal(t, FamilyForest, bundle.Best)
	}

	// The relation is exactly linear, so the chosen model should track it
	// closely on an in-range point.
	scores, err := bundle.Scores([][]float64{{10, 20, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 31.0, scores[0], 5.0)
}

func TestTrainRegressionReproducible(t *testing.T) {
	rows, labels := regressionFixture()
	opts := TrainOptions{Seed: 7, Now: fixedNow}

	first, _, err := TrainRegression(rows, labels, testColumns, opts)
	require.NoError(t, err)
	second, _, err := TrainRegression(rows, labels, testColumns, opts)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestTrainValidatesShape(t *testing.T) {
	_, _, err := TrainRegression(nil, nil, testColumns, TrainOptions{})
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, _, err = TrainRegression([][]float64{{1, 2, 3}}, []float64{1, 2}, testColumns, TrainOptions{})
	assert.Error(t, err)

	_, _, err = TrainRegression([][]float64{{1, 2}}, []float64{1}, testColumns, TrainOptions{})
	assert.Error(t, err)
}
