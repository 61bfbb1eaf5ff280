// Package features turns raw interaction documents into fixed-width feature
// records, one per candidate. Aggregation is a pure function of store state:
// running it twice over an unchanged interaction set yields identical records,
// and the engine keeps no derived state between runs.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
)

const velocityWindow = 24 * time.Hour

// Aggregator groups reactions, comments, and votes by candidate and produces
// one feature record per candidate. Candidates without posts still receive a
// full all-zero record; dropping them would bias normalization downstream.
type Aggregator struct {
	store  domain.DocumentStore
	scorer domain.SentimentScorer
	clock  clockwork.Clock
}

func NewAggregator(store domain.DocumentStore, scorer domain.SentimentScorer, clock clockwork.Clock) *Aggregator {
	return &Aggregator{store: store, scorer: scorer, clock: clock}
}

// Aggregate builds the base (share-prediction) feature record set for an
// election. Returns domain.ErrElectionNotFound when the election id is
// unknown; an election with zero candidates yields domain.ErrNoData.
func (a *Aggregator) Aggregate(ctx context.Context, electionID string) ([]domain.FeatureRecord, error) {
	start := a.clock.Now()
	defer func() { metrics.AggregationDuration.Observe(a.clock.Since(start).Seconds()) }()

	candidates, err := a.candidates(ctx, electionID)
	if err != nil {
		return nil, err
	}

	cutoff := a.clock.Now().Add(-velocityWindow)
	records := make([]domain.FeatureRecord, 0, len(candidates))

	for _, cand := range candidates {
		rec := domain.FeatureRecord{Candidate: ref(cand)}

		posts, err := a.store.PostsByCandidate(ctx, electionID, cand.ID)
		if err != nil {
			return nil, fmt.Errorf("posts for candidate %s: %w", cand.ID, err)
		}
		if len(posts) == 0 {
			records = append(records, rec)
			continue
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

		comments, err := a.store.CommentsByPosts(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("comments for candidate %s: %w", cand.ID, err)
		}
		rec.CommentsCount = float64(len(comments))
		rec.AvgSentiment = a.averageSentiment(ctx, comments)

		unique, err := a.store.UniqueReactors(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("unique reactors for candidate %s: %w", cand.ID, err)
		}
		rec.UniqueUsers = float64(unique)

		delta, err := a.store.ReactionsSince(ctx, postIDs, cutoff)
		if err != nil {
			return nil, fmt.Errorf("reaction velocity for candidate %s: %w", cand.ID, err)
		}
		rec.Last24Delta = float64(delta)

		records = append(records, rec)
	}

	return records, nil
}

// WithShareLabels attaches historical actual_pct labels to the records,
// returning only labeled rows. A missing result collection is not an error:
// prediction-time aggregation never depends on labels.
func (a *Aggregator) WithShareLabels(ctx context.Context, electionID string, records []domain.FeatureRecord) ([]domain.FeatureRecord, []float64, error) {
	shares, err := a.store.ResultShares(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}

	var labeled []domain.FeatureRecord
	var labels []float64
	for _, rec := range records {
		pct, ok := shares[rec.Candidate.ID]
		if !ok {
			continue
		}
		labeled = append(labeled, rec)
		labels = append(labels, pct)
	}

	if len(labeled) == 0 {
		return nil, nil, domain.ErrNoData
	}
	return labeled, labels, nil
}

func (a *Aggregator) candidates(ctx context.Context, electionID string) ([]domain.Candidate, error) {
	candidates, err := a.store.CandidatesByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	exists, err := a.store.ElectionExists(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrElectionNotFound
	}
	return nil, domain.ErrNoData
}

// averageSentiment is the arithmetic mean compound over all comments. The
// scorer never fails, so every comment contributes; no comments means 0.0.
func (a *Aggregator) averageSentiment(ctx context.Context, comments []domain.Comment) float64 {
	if len(comments) == 0 {
		return 0
	}

	var sum float64
	for _, c := range comments {
		sum += a.scorer.ScoreText(ctx, c.Text).Compound
	}
	avg := sum / float64(len(comments))

	if avg < -1 || avg > 1 {
		// Compound is bounded by construction; anything else is a scorer bug.
		slog.Warn("Average sentiment out of range, clamping", "avg", avg)
		if avg < -1 {
			return -1
		}
		return 1
	}
	return avg
}

func postIDs(posts []domain.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func ref(c domain.Candidate) domain.CandidateRef {
	return domain.CandidateRef{ID: c.ID, Name: c.Name, Party: c.Party, Photo: c.Photo}
}
