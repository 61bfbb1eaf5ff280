package domain

import (
	"context"
	"time"
)

// DocumentStore is the read-only boundary to the document database holding
// candidates, posts, reactions, comments, votes, and historical results.
// Implementations must never mutate documents.
type DocumentStore interface {
	// ElectionExists reports whether the election id refers to a known
	// election document.
	ElectionExists(ctx context.Context, electionID string) (bool, error)

	// ElectionIDs lists all known election ids (training scans).
	ElectionIDs(ctx context.Context) ([]string, error)

	// CandidatesByElection returns every candidate registered for the
	// election, including candidates with no posts.
	CandidatesByElection(ctx context.Context, electionID string) ([]Candidate, error)

	// PostsByCandidate returns the candidate's posts within the election.
	// An empty slice is a valid answer, not an error.
	PostsByCandidate(ctx context.Context, electionID, candidateID string) ([]Post, error)

	// ReactionCountsByType returns reaction counts grouped by type over the
	// given posts.
	ReactionCountsByType(ctx context.Context, postIDs []string) (map[string]int64, error)

	// ReactionsSince counts reactions on the given posts with a timestamp at
	// or after the cutoff.
	ReactionsSince(ctx context.Context, postIDs []string, cutoff time.Time) (int64, error)

	// UniqueReactors returns the number of distinct users that reacted to
	// any of the given posts.
	UniqueReactors(ctx context.Context, postIDs []string) (int64, error)

	// CommentsByPosts returns all comments attached to the given posts.
	CommentsByPosts(ctx context.Context, postIDs []string) ([]Comment, error)

	// VoteTally returns raw vote counts grouped by candidate id.
	VoteTally(ctx context.Context, electionID string) (map[string]int64, error)

	// ResultShares returns the historical actual_pct label per candidate id.
	// Returns ErrNoData when the election has no recorded results; feature
	// aggregation must keep working without labels.
	ResultShares(ctx context.Context, electionID string) (map[string]float64, error)

	// Winner returns the candidate id that won the election, or ErrNoData
	// when no outcome is recorded.
	Winner(ctx context.Context, electionID string) (string, error)
}

// SentimentScore is the black-box sentiment record. Compound is in [-1, 1].
type SentimentScore struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

// Neutral is the score returned for empty or unscorable text.
func Neutral() SentimentScore {
	return SentimentScore{Neutral: 1}
}

// SentimentScorer maps free text to a sentiment score. Implementations must
// return Neutral() for empty input and must never fail.
type SentimentScorer interface {
	ScoreText(ctx context.Context, text string) SentimentScore
}
