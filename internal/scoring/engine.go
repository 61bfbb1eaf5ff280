// Package scoring turns feature records into a ranked percentage
// distribution. Scoring is a pure function of its inputs plus an immutable
// model bundle: no call mutates shared state, and any model failure
// downgrades to the deterministic heuristic for that call only.
package scoring

import (
	"log/slog"
	"sort"
	"time"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
	"github.com/ritika-mhrjn/pollpulse/internal/ml"
)

// Engine scores candidate feature records against a model bundle with a
// weighted-heuristic fallback.
type Engine struct {
	weights map[string]float64
}

// NewEngine builds an Engine. overrides replaces the default weight table
// when non-nil.
func NewEngine(overrides map[string]float64) *Engine {
	weights := DefaultWeights()
	if len(overrides) > 0 {
		weights = overrides
	}
	return &Engine{weights: weights}
}

// Score produces the ranked distribution for records. The model path runs
// when bundle is non-nil; inference failure or a nil bundle uses the
// heuristic weight table. UsedFallback reports which path produced the
// result and is always accurate.
func (e *Engine) Score(records []domain.FeatureVector, bundle *ml.Bundle) domain.ScoreResult {
	return e.score(records, bundle, e.heuristicScores)
}

// ScoreVoteFallback behaves like Score but falls back to normalized raw vote
// counts instead of the weight table. The winner-prediction path uses this:
// when no classifier is available, the tally is the best signal.
func (e *Engine) ScoreVoteFallback(records []domain.FeatureVector, bundle *ml.Bundle) domain.ScoreResult {
	return e.score(records, bundle, voteScores)
}

func (e *Engine) score(records []domain.FeatureVector, bundle *ml.Bundle, fallback func([]domain.FeatureVector) []float64) domain.ScoreResult {
	if len(records) == 0 {
		return domain.ScoreResult{UsedFallback: bundle == nil}
	}

	raw, usedFallback := e.modelScores(records, bundle)
	if usedFallback {
		raw = fallback(records)
	}

	path := "model"
	if usedFallback {
		path = "heuristic"
	}
	metrics.PredictionsTotal.WithLabelValues(path).Inc()

	return domain.ScoreResult{
		Predictions:  rank(records, raw),
		UsedFallback: usedFallback,
	}
}

// modelScores attempts the model path. The second return reports fallback:
// true when no bundle is present or inference failed.
func (e *Engine) modelScores(records []domain.FeatureVector, bundle *ml.Bundle) ([]float64, bool) {
	if bundle == nil {
		return nil, true
	}

	start := time.Now()
	raw, err := bundle.Scores(bundle.Matrix(records))
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Warn("Model inference failed, downgrading to heuristic", "error", err)
		metrics.FallbackDowngradesTotal.Inc()
		return nil, true
	}
	return raw, false
}

// heuristicScores applies the fixed weight table. Columns a record cannot
// produce contribute nothing.
func (e *Engine) heuristicScores(records []domain.FeatureVector) []float64 {
	raw := make([]float64, len(records))
	for i, rec := range records {
		var s float64
		for col, w := range e.weights {
			if v, ok := rec.Feature(col); ok {
				s += v * w
			}
		}
		raw[i] = s
	}
	return raw
}

func voteScores(records []domain.FeatureVector) []float64 {
	raw := make([]float64, len(records))
	for i, rec := range records {
		if v, ok := rec.Feature("raw_votes"); ok {
			raw[i] = v
		}
	}
	return raw
}

// rank clamps raw scores at zero, normalizes them into percentages summing
// to 100 (equal shares when everything is zero), and sorts descending with
// input order breaking ties.
func rank(records []domain.FeatureVector, raw []float64) []domain.Prediction {
	var total float64
	for i, v := range raw {
		if v < 0 {
			raw[i] = 0
			continue
		}
		total += v
	}

	predictions := make([]domain.Prediction, len(records))
	for i, rec := range records {
		ref := rec.Ref()
		p := domain.Prediction{
			CandidateID: ref.ID,
			Name:        ref.Name,
			Party:       ref.Party,
			Photo:       ref.Photo,
			RawScore:    raw[i],
		}
		if total == 0 {
			p.PredictedPct = 100 / float64(len(records))
		} else {
			p.PredictedPct = 100 * raw[i] / total
		}
		predictions[i] = p
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].PredictedPct > predictions[j].PredictedPct
	})
	return predictions
}
