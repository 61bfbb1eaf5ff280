package scoring

import "github.com/ritika-mhrjn/pollpulse/internal/domain"

// DefaultWeights is the fixed heuristic weight table. The values are observed
// calibration with no derivation behind them, which is why the table is
// configuration (overridable per deployment) rather than a constant law.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		domain.ColLikes:         0.8,
		domain.ColHearts:        1.2,
		domain.ColThumbsUp:      0.9,
		domain.ColThumbsDown:    -0.6,
		domain.ColSupport:       1.5,
		domain.ColShares:        1.0,
		domain.ColCommentsCount: 0.5,
		domain.ColAvgSentiment:  2.0,
		domain.ColUniqueUsers:   1.0,
		domain.ColLast24Delta:   0.4,
	}
}
