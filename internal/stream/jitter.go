package stream

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

// jitterer perturbs a prediction snapshot with Gaussian noise so the live
// stream shows movement between ticks. Noise is applied to the percentages,
// never the raw scores, and the result is renormalized so the invariantly
// displayed total stays at 100.
type jitterer struct {
	dist distuv.Normal
}

func newJitterer(sigma float64, src rand.Source) jitterer {
	return jitterer{dist: distuv.Normal{Mu: 0, Sigma: sigma, Src: src}}
}

// apply returns a perturbed copy of predictions: per-entry noise, clamp at
// zero, renormalize to 100, round to one decimal, re-sort descending.
func (j jitterer) apply(predictions []domain.Prediction) []domain.Prediction {
	out := make([]domain.Prediction, len(predictions))
	copy(out, predictions)

	var total float64
	for i := range out {
		pct := out[i].PredictedPct + j.dist.Rand()
		if pct < 0 {
			pct = 0
		}
		out[i].PredictedPct = pct
		total += pct
	}

	for i := range out {
		if total == 0 {
			out[i].PredictedPct = 100 / float64(len(out))
		} else {
			out[i].PredictedPct = 100 * out[i].PredictedPct / total
		}
		out[i].PredictedPct = math.Round(out[i].PredictedPct*10) / 10
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].PredictedPct > out[b].PredictedPct
	})
	return out
}
