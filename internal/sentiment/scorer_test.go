package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

type mapCache struct {
	values map[string]float64
	gets   int
	sets   int
}

func (c *mapCache) GetCompound(_ context.Context, text string) (float64, bool) {
	c.gets++
	v, ok := c.values[text]
	return v, ok
}

func (c *mapCache) SetCompound(_ context.Context, text string, compound float64) {
	c.sets++
	c.values[text] = compound
}

func TestScoreTextEmptyIsNeutral(t *testing.T) {
	scorer := NewScorer(nil)

	assert.Equal(t, domain.Neutral(), scorer.ScoreText(context.Background(), ""))
	assert.Equal(t, domain.Neutral(), scorer.ScoreText(context.Background(), "   \t\n"))
}

func TestScoreTextPolarity(t *testing.T) {
	scorer := NewScorer(nil)

	positive := scorer.ScoreText(context.Background(), "This candidate is wonderful, I love the plan!")
	negative := scorer.ScoreText(context.Background(), "This is a terrible, dishonest disaster.")

	assert.Greater(t, positive.Compound, 0.0)
	assert.Less(t, negative.Compound, 0.0)
	assert.GreaterOrEqual(t, positive.Compound, -1.0)
	assert.LessOrEqual(t, positive.Compound, 1.0)
}

func TestScoreTextUsesCache(t *testing.T) {
	cache := &mapCache{values: map[string]float64{}}
	scorer := NewScorer(cache)

	first := scorer.ScoreText(context.Background(), "great rally today")
	require.Equal(t, 1, cache.sets)

	second := scorer.ScoreText(context.Background(), "great rally today")
	assert.Equal(t, 1, cache.sets, "cache hit must not re-store")
	assert.Equal(t, first.Compound, second.Compound)
	assert.Equal(t, 2, cache.gets)
}

func TestScoreTextCachePrimed(t *testing.T) {
	cache := &mapCache{values: map[string]float64{"known text": 0.42}}
	scorer := NewScorer(cache)

	score := scorer.ScoreText(context.Background(), "known text")
	assert.Equal(t, 0.42, score.Compound)
	assert.Equal(t, 0, cache.sets)
}
