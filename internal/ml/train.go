package ml

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

// TrainOptions configure one training run. Seed makes the run reproducible:
// the same data with the same seed yields identical splits, models, and
// metrics.
type TrainOptions struct {
	TestFraction float64
	Seed         int64
	Forest       ForestOptions
	Now          func() time.Time
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.TestFraction == 0 {
		o.TestFraction = 0.3
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o TrainOptions) rng() *rand.Rand {
	seed := uint64(o.Seed)
	return rand.New(rand.NewPCG(seed, seed))
}

// TrainRegression fits the share-prediction families (linear baseline plus
// random forest regressor) on rows labeled with actual_pct and picks the one
// with the lower held-out RMSE.
func TrainRegression(rows [][]float64, labels []float64, columns []string, opts TrainOptions) (*Bundle, Meta, error) {
	opts = opts.withDefaults()

	if err := validateShape(rows, labels, columns); err != nil {
		return nil, Meta{}, err
	}

	rng := opts.rng()
	split, err := Split(rows, labels, opts.TestFraction, rng)
	if err != nil {
		return nil, Meta{}, err
	}

	scaler, err := FitScaler(split.XTrain)
	if err != nil {
		return nil, Meta{}, err
	}
	scaledTrain, err := scaler.Transform(split.XTrain)
	if err != nil {
		return nil, Meta{}, err
	}
	scaledTest, err := scaler.Transform(split.XTest)
	if err != nil {
		return nil, Meta{}, err
	}

	linear, err := FitLinear(scaledTrain, split.YTrain)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("fit linear: %w", err)
	}
	linearPred := make([]float64, len(scaledTest))
	for i, row := range scaledTest {
		linearPred[i] = linear.Predict(row)
	}
	linearMetrics := EvaluateRegression(linearPred, split.YTest)

	forest, err := FitForest(split.XTrain, split.YTrain, opts.Forest, rng)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("fit forest: %w", err)
	}
	forestPred := make([]float64, len(split.XTest))
	for i, row := range split.XTest {
		forestPred[i], err = forest.Predict(row)
		if err != nil {
			return nil, Meta{}, err
		}
	}
	forestMetrics := EvaluateRegression(forestPred, split.YTest)

	best, bestMetrics := FamilyForest, forestMetrics
	if linearMetrics.RMSE < forestMetrics.RMSE {
		best, bestMetrics = FamilyLinear, linearMetrics
	}

	bundle := &Bundle{
		Version:        "v1",
		Task:           TaskRegression,
		FeatureColumns: columns,
		Best:           best,
		Scaler:         scaler,
		Linear:         linear,
		Forest:         forest,
	}
	meta := Meta{
		Version:   "v1",
		Task:      TaskRegression,
		TrainedAt: opts.Now().UTC(),
		Features:  columns,
		TrainRows: len(split.XTrain),
		TestRows:  len(split.XTest),
		BestModel: best,
		Metrics: map[string]any{
			"mae":        bestMetrics.MAE,
			"rmse":       bestMetrics.RMSE,
			FamilyLinear: linearMetrics,
			FamilyForest: forestMetrics,
		},
	}
	return bundle, meta, nil
}

// TrainClassification fits the winner-prediction families (logistic baseline
// plus random forest) on binary winner labels and picks the one with the
// higher held-out AUC. Fails fast with domain.ErrDegenerateLabels when the
// label set holds a single class.
func TrainClassification(rows [][]float64, labels []float64, columns, candidateIndex []string, opts TrainOptions) (*Bundle, Meta, error) {
	opts = opts.withDefaults()

	if err := validateShape(rows, labels, columns); err != nil {
		return nil, Meta{}, err
	}
	if singleClass(labels) {
		return nil, Meta{}, domain.ErrDegenerateLabels
	}

	rng := opts.rng()
	split, err := StratifiedSplit(rows, labels, opts.TestFraction, rng)
	if err != nil {
		return nil, Meta{}, err
	}

	scaler, err := FitScaler(split.XTrain)
	if err != nil {
		return nil, Meta{}, err
	}
	scaledTrain, err := scaler.Transform(split.XTrain)
	if err != nil {
		return nil, Meta{}, err
	}
	scaledTest, err := scaler.Transform(split.XTest)
	if err != nil {
		return nil, Meta{}, err
	}

	logistic, err := FitLogistic(scaledTrain, split.YTrain)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("fit logistic: %w", err)
	}
	logisticProb := make([]float64, len(scaledTest))
	for i, row := range scaledTest {
		logisticProb[i] = logistic.PredictProba(row)
	}
	logisticMetrics := EvaluateClassification(logisticProb, split.YTest)

	forest, err := FitForest(split.XTrain, split.YTrain, opts.Forest, rng)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("fit forest: %w", err)
	}
	forestProb := make([]float64, len(split.XTest))
	for i, row := range split.XTest {
		forestProb[i], err = forest.Predict(row)
		if err != nil {
			return nil, Meta{}, err
		}
	}
	forestMetrics := EvaluateClassification(forestProb, split.YTest)

	best, bestMetrics := FamilyForest, forestMetrics
	if logisticMetrics.AUC > forestMetrics.AUC {
		best, bestMetrics = FamilyLogistic, logisticMetrics
	}

	bundle := &Bundle{
		Version:        "v1",
		Task:           TaskClassification,
		FeatureColumns: columns,
		CandidateIndex: candidateIndex,
		Best:           best,
		Scaler:         scaler,
		Logistic:       logistic,
		Forest:         forest,
	}
	meta := Meta{
		Version:   "v1",
		Task:      TaskClassification,
		TrainedAt: opts.Now().UTC(),
		Features:  columns,
		TrainRows: len(split.XTrain),
		TestRows:  len(split.XTest),
		BestModel: best,
		Metrics: map[string]any{
			"accuracy":     bestMetrics.Accuracy,
			"f1":           bestMetrics.F1,
			"precision":    bestMetrics.Precision,
			"recall":       bestMetrics.Recall,
			"auc":          bestMetrics.AUC,
			FamilyLogistic: logisticMetrics,
			FamilyForest:   forestMetrics,
		},
	}
	return bundle, meta, nil
}

func validateShape(rows [][]float64, labels []float64, columns []string) error {
	if len(rows) == 0 {
		return domain.ErrNoData
	}
	if len(rows) != len(labels) {
		return fmt.Errorf("feature matrix has %d rows but %d labels", len(rows), len(labels))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d columns, expected %d", i, len(row), len(columns))
		}
	}
	return nil
}

func singleClass(labels []float64) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, l := range labels[1:] {
		if l != first {
			return false
		}
	}
	return true
}
