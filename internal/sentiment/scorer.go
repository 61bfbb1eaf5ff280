package sentiment

import (
	"context"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

// Cache memoizes compound scores keyed by comment text. Implementations are
// best-effort: a failed lookup or store is treated as a miss.
type Cache interface {
	GetCompound(ctx context.Context, text string) (float64, bool)
	SetCompound(ctx context.Context, text string, compound float64)
}

// Scorer scores free text with VADER. The zero-value analyzer inside govader
// is not usable; always construct via NewScorer.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	cache    Cache
}

// NewScorer builds a Scorer. cache may be nil.
func NewScorer(cache Cache) *Scorer {
	return &Scorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		cache:    cache,
	}
}

// ScoreText returns the VADER polarity record for text. Empty or whitespace
// input yields the neutral record {0, 1, 0, 0}; ScoreText never fails.
func (s *Scorer) ScoreText(ctx context.Context, text string) domain.SentimentScore {
	if strings.TrimSpace(text) == "" {
		return domain.Neutral()
	}

	if s.cache != nil {
		if compound, ok := s.cache.GetCompound(ctx, text); ok {
			return domain.SentimentScore{Compound: compound}
		}
	}

	scores := s.analyzer.PolarityScores(text)
	result := domain.SentimentScore{
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
		Positive: scores.Positive,
		Compound: scores.Compound,
	}

	if s.cache != nil {
		s.cache.SetCompound(ctx, text, result.Compound)
	}

	return result
}
