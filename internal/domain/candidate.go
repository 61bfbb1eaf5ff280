package domain

import "time"

// Candidate is a contestant within an election. Identity is stable for the
// lifetime of a training/serving run; engagement documents reference it by ID.
type Candidate struct {
	ID         string
	Name       string
	ElectionID string
	Party      string
	Photo      string
}

// Post is a campaign post owned by a candidate. Reactions and comments hang
// off posts, never off candidates directly.
type Post struct {
	ID          string
	CandidateID string
	ElectionID  string
	Views       int64
	CreatedAt   time.Time
}

// Reaction types recognised by the typed counters. Unknown types are ignored
// by the counters but still contribute to the weighted engagement score.
const (
	ReactionLike       = "like"
	ReactionHeart      = "heart"
	ReactionThumbsUp   = "thumbs_up"
	ReactionThumbsDown = "thumbs_down"
	ReactionSupport    = "support"
	ReactionShare      = "share"
)

// Comment is free text attached to a post. Only the text and author matter to
// the engine; comments are append-only and never mutated here.
type Comment struct {
	ID     string
	PostID string
	UserID string
	Text   string
}
