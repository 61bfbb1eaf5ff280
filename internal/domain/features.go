package domain

import "math"

// Base feature column names in canonical order. The heuristic weight table and
// the share-prediction model both address features by these names.
const (
	ColLikes         = "likes"
	ColHearts        = "hearts"
	ColThumbsUp      = "thumbs_up"
	ColThumbsDown    = "thumbs_down"
	ColSupport       = "support"
	ColShares        = "shares"
	ColCommentsCount = "comments_count"
	ColAvgSentiment  = "avg_sentiment"
	ColUniqueUsers   = "unique_users"
	ColLast24Delta   = "last24_reaction_delta"
)

// BaseFeatureColumns is the canonical column order of the share-prediction
// feature record. Training and serving must agree on this order.
var BaseFeatureColumns = []string{
	ColLikes,
	ColHearts,
	ColThumbsUp,
	ColThumbsDown,
	ColSupport,
	ColShares,
	ColCommentsCount,
	ColAvgSentiment,
	ColUniqueUsers,
	ColLast24Delta,
}

// CandidateRef carries the identity fields copied into every feature record
// and prediction.
type CandidateRef struct {
	ID    string `json:"candidate_id"`
	Name  string `json:"name"`
	Party string `json:"party,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// FeatureVector is what the scoring engine consumes: a candidate identity plus
// named numeric features. The second return reports whether the record can
// produce the column at all; callers decide the fallback for unknown columns.
type FeatureVector interface {
	Ref() CandidateRef
	Feature(column string) (float64, bool)
}

// FeatureRecord is the fixed-width engagement summary of one candidate, the
// share-prediction variant. All fields default to zero; a candidate with no
// posts still gets a full record.
type FeatureRecord struct {
	Candidate CandidateRef `json:"candidate"`

	Likes         float64 `json:"likes"`
	Hearts        float64 `json:"hearts"`
	ThumbsUp      float64 `json:"thumbs_up"`
	ThumbsDown    float64 `json:"thumbs_down"`
	Support       float64 `json:"support"`
	Shares        float64 `json:"shares"`
	CommentsCount float64 `json:"comments_count"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	UniqueUsers   float64 `json:"unique_users"`
	Last24Delta   float64 `json:"last24_reaction_delta"`
}

func (r FeatureRecord) Ref() CandidateRef { return r.Candidate }

func (r FeatureRecord) Feature(column string) (float64, bool) {
	switch column {
	case ColLikes:
		return r.Likes, true
	case ColHearts:
		return r.Hearts, true
	case ColThumbsUp:
		return r.ThumbsUp, true
	case ColThumbsDown:
		return r.ThumbsDown, true
	case ColSupport:
		return r.Support, true
	case ColShares:
		return r.Shares, true
	case ColCommentsCount:
		return r.CommentsCount, true
	case ColAvgSentiment:
		return r.AvgSentiment, true
	case ColUniqueUsers:
		return r.UniqueUsers, true
	case ColLast24Delta:
		return r.Last24Delta, true
	}
	return 0, false
}

// Vector returns the record's values in BaseFeatureColumns order.
func (r FeatureRecord) Vector() []float64 {
	out := make([]float64, len(BaseFeatureColumns))
	for i, col := range BaseFeatureColumns {
		out[i], _ = r.Feature(col)
	}
	return out
}

// WinnerFeatureColumns is the canonical column order of the winner-prediction
// variant, matching what the classification bundle is trained on.
var WinnerFeatureColumns = []string{
	"num_posts",
	"log_likes",
	"hearts",
	"support",
	"thumbs_up_ratio",
	"comments_per_post",
	"unique_users",
	"avg_sentiment",
	"log_views",
	"log_engagement_score",
}

// WinnerFeatureRecord is the richer per-candidate record used by the
// winner-prediction path. Derived fields are computed by the aggregator, not
// by consumers; a record is always internally consistent.
type WinnerFeatureRecord struct {
	Candidate CandidateRef `json:"candidate"`

	NumPosts      float64 `json:"num_posts"`
	Likes         float64 `json:"likes"`
	Hearts        float64 `json:"hearts"`
	ThumbsUp      float64 `json:"thumbs_up"`
	ThumbsDown    float64 `json:"thumbs_down"`
	Support       float64 `json:"support"`
	Shares        float64 `json:"shares"`
	Views         float64 `json:"total_views"`
	CommentsCount float64 `json:"comments_count"`
	UniqueUsers   float64 `json:"unique_users"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	RawVotes      float64 `json:"raw_votes"`

	CommentsPerPost float64 `json:"comments_per_post"`
	LikesPerPost    float64 `json:"likes_per_post"`
	ThumbsUpRatio   float64 `json:"thumbs_up_ratio"`

	// ReactionScore is the undifferentiated type-weighted reaction total.
	// Unlike the typed counters it also credits unknown reaction types.
	ReactionScore   float64 `json:"reaction_score"`
	EngagementScore float64 `json:"engagement_score"`
}

func (r WinnerFeatureRecord) Ref() CandidateRef { return r.Candidate }

func (r WinnerFeatureRecord) Feature(column string) (float64, bool) {
	switch column {
	case "num_posts":
		return r.NumPosts, true
	case ColLikes:
		return r.Likes, true
	case ColHearts:
		return r.Hearts, true
	case ColThumbsUp:
		return r.ThumbsUp, true
	case ColThumbsDown:
		return r.ThumbsDown, true
	case ColSupport:
		return r.Support, true
	case ColShares:
		return r.Shares, true
	case "total_views":
		return r.Views, true
	case ColCommentsCount:
		return r.CommentsCount, true
	case ColAvgSentiment:
		return r.AvgSentiment, true
	case ColUniqueUsers:
		return r.UniqueUsers, true
	case "raw_votes", "votes", "vote_count":
		return r.RawVotes, true
	case "comments_per_post":
		return r.CommentsPerPost, true
	case "likes_per_post":
		return r.LikesPerPost, true
	case "thumbs_up_ratio":
		return r.ThumbsUpRatio, true
	case "reaction_score":
		return r.ReactionScore, true
	case "engagement_score":
		return r.EngagementScore, true
	case "log_likes":
		return math.Log1p(r.Likes), true
	case "log_views":
		return math.Log1p(r.Views), true
	case "log_engagement_score":
		return math.Log1p(math.Max(r.EngagementScore, 0)), true
	}
	return 0, false
}
