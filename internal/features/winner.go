package features

import (
	"context"
	"fmt"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
)

const thumbsRatioEpsilon = 1e-9

// reactionWeights is the undifferentiated type-weight map feeding
// ReactionScore. Unknown reaction types still count at the default weight,
// unlike the typed counters which ignore them.
var reactionWeights = map[string]float64{
	domain.ReactionLike:       1.0,
	domain.ReactionHeart:      1.5,
	domain.ReactionSupport:    1.4,
	domain.ReactionThumbsDown: -1.0,
	"love":                    1.6,
	"laugh":                   0.8,
}

const unknownReactionWeight = 0.5

// AggregateWinner builds the richer winner-prediction feature record set:
// per-post averages, thumbs ratio, views, the engagement score, and the raw
// vote tally used for the vote-share fallback and the votes column backfill.
func (a *Aggregator) AggregateWinner(ctx context.Context, electionID string) ([]domain.WinnerFeatureRecord, error) {
	start := a.clock.Now()
	defer func() { metrics.AggregationDuration.Observe(a.clock.Since(start).Seconds()) }()

	candidates, err := a.candidates(ctx, electionID)
	if err != nil {
		return nil, err
	}

	tally, err := a.store.VoteTally(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("vote tally: %w", err)
	}

	records := make([]domain.WinnerFeatureRecord, 0, len(candidates))
	for _, cand := range candidates {
		rec := domain.WinnerFeatureRecord{Candidate: ref(cand)}
		rec.RawVotes = float64(tally[cand.ID])

		posts, err := a.store.PostsByCandidate(ctx, electionID, cand.ID)
		if err != nil {
			return nil, fmt.Errorf("posts for candidate %s: %w", cand.ID, err)
		}
		rec.NumPosts = float64(len(posts))
		if len(posts) == 0 {
			rec.ThumbsUpRatio = 0
			records = append(records, rec)
			continue
		}

		for _, p := range posts {
			rec.Views += float64(p.Views)
		}

		postIDs := postIDs(posts)

		byType, err := a.store.ReactionCountsByType(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("reaction counts for candidate %s: %w", cand.ID, err)
		}
		rec.Likes = float64(byType[domain.ReactionLike])
		rec.Hearts = float64(byType[domain.ReactionHeart])
		rec.ThumbsUp = float64(byType[domain.ReactionThumbsUp])
		rec.ThumbsDown = float64(byType[domain.ReactionThumbsDown])
		rec.Support = float64(byType[domain.ReactionSupport])
		rec.Shares = float64(byType[domain.ReactionShare])
		rec.ReactionScore = weightedReactionScore(byType)

		comments, err := a.store.CommentsByPosts(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("comments for candidate %s: %w", cand.ID, err)
		}
		rec.CommentsCount = float64(len(comments))
		rec.AvgSentiment = a.averageSentiment(ctx, comments)
		rec.UniqueUsers = float64(uniqueCommenters(comments))

		rec.CommentsPerPost = rec.CommentsCount / rec.NumPosts
		rec.LikesPerPost = rec.Likes / rec.NumPosts
		rec.ThumbsUpRatio = rec.ThumbsUp / (rec.ThumbsUp + rec.ThumbsDown + thumbsRatioEpsilon)
		rec.EngagementScore = engagementScore(rec)

		records = append(records, rec)
	}

	return records, nil
}

// engagementScore is the fixed linear combination of raw totals and sentiment
// used as a model input. Coefficients are part of the trained feature schema;
// changing them invalidates persisted bundles.
func engagementScore(r domain.WinnerFeatureRecord) float64 {
	return r.Likes*0.4 +
		r.Hearts*0.5 +
		r.Support*1.0 +
		r.Shares*0.7 +
		r.ThumbsUp*0.3 -
		r.ThumbsDown*0.5 +
		r.Views*0.01 +
		r.UniqueUsers*0.5 +
		r.AvgSentiment*100.0
}

func weightedReactionScore(byType map[string]int64) float64 {
	var score float64
	for t, count := range byType {
		w, ok := reactionWeights[t]
		if !ok {
			w = unknownReactionWeight
		}
		score += float64(count) * w
	}
	return score
}

func uniqueCommenters(comments []domain.Comment) int {
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		seen[c.UserID] = struct{}{}
	}
	return len(seen)
}
