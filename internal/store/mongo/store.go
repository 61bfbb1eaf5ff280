// Package mongo adapts the document database to the domain.DocumentStore
// port. All reads go through a shared circuit breaker so a struggling
// database degrades requests fast instead of piling up timeouts.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
)

// Collection names in the voting database. The engine only ever reads them.
const (
	collElections  = "elections"
	collCandidates = "candidates"
	collPosts      = "posts"
	collReactions  = "reactions"
	collComments   = "comments"
	collVotes      = "votes"
	collResults    = "election_results"
)

const queryTimeout = 5 * time.Second

// Store implements domain.DocumentStore over a MongoDB database.
type Store struct {
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker
}

// NewStore wraps the database handle. The breaker opens after five
// consecutive failures and probes again after 30 seconds.
func NewStore(db *mongo.Database) *Store {
	settings := gobreaker.Settings{
		Name:    "mongo",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An election without recorded results is a normal answer, not a
		// database failure; it must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNoData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Store circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.StoreBreakerState.Set(float64(to))
		},
	}
	return &Store{db: db, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// run executes one store operation through the breaker and records the
// outcome. Every public method funnels through here.
func (s *Store) run(op string, fn func() (any, error)) (any, error) {
	out, err := s.breaker.Execute(fn)
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrNoData):
		status = "no_data"
	case err != nil:
		status = "error"
	}
	metrics.StoreOpsTotal.WithLabelValues(op, status).Inc()
	return out, err
}

// idValue resolves an external string id to its stored form. Ids written by
// the voting system are ObjectIDs; fixture data may use plain strings.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idValues(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = idValue(id)
	}
	return out
}

func hexID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *Store) ElectionExists(ctx context.Context, electionID string) (bool, error) {
	out, err := s.run("election_exists", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		n, err := s.db.Collection(collElections).CountDocuments(ctx, bson.M{"_id": idValue(electionID)})
		if err != nil {
			return nil, fmt.Errorf("count elections: %w", err)
		}
		return n > 0, nil
	})
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

func (s *Store) ElectionIDs(ctx context.Context) ([]string, error) {
	out, err := s.run("election_ids", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		raw, err := s.db.Collection(collElections).Distinct(ctx, "_id", bson.M{})
		if err != nil {
			return nil, fmt.Errorf("list elections: %w", err)
		}

		ids := make([]string, 0, len(raw))
		for _, v := range raw {
			ids = append(ids, hexID(v))
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

type candidateDoc struct {
	ID         any    `bson:"_id"`
	Name       string `bson:"name"`
	ElectionID any    `bson:"election_id"`
	Party      string `bson:"party"`
	Photo      string `bson:"photo"`
}

func (s *Store) CandidatesByElection(ctx context.Context, electionID string) ([]domain.Candidate, error) {
	out, err := s.run("candidates_by_election", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		cursor, err := s.db.Collection(collCandidates).Find(ctx, bson.M{"election_id": idValue(electionID)})
		if err != nil {
			return nil, fmt.Errorf("find candidates: %w", err)
		}

		var docs []candidateDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("decode candidates: %w", err)
		}

		candidates := make([]domain.Candidate, len(docs))
		for i, d := range docs {
			candidates[i] = domain.Candidate{
				ID:         hexID(d.ID),
				Name:       d.Name,
				ElectionID: hexID(d.ElectionID),
				Party:      d.Party,
				Photo:      d.Photo,
			}
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Candidate), nil
}

type postDoc struct {
	ID          any       `bson:"_id"`
	CandidateID any       `bson:"candidate_id"`
	ElectionID  any       `bson:"election_id"`
	Views       int64     `bson:"views"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (s *Store) PostsByCandidate(ctx context.Context, electionID, candidateID string) ([]domain.Post, error) {
	out, err := s.run("posts_by_candidate", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		filter := bson.M{
			"election_id":  idValue(electionID),
			"candidate_id": idValue(candidateID),
		}
		cursor, err := s.db.Collection(collPosts).Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("find posts: %w", err)
		}

		var docs []postDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}

		posts := make([]domain.Post, len(docs))
		for i, d := range docs {
			posts[i] = domain.Post{
				ID:          hexID(d.ID),
				CandidateID: hexID(d.CandidateID),
				ElectionID:  hexID(d.ElectionID),
				Views:       d.Views,
				CreatedAt:   d.CreatedAt,
			}
		}
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Post), nil
}

func (s *Store) ReactionCountsByType(ctx context.Context, postIDs []string) (map[string]int64, error) {
	if len(postIDs) == 0 {
		return map[string]int64{}, nil
	}

	out, err := s.run("reaction_counts_by_type", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"post_id": bson.M{"$in": idValues(postIDs)}}}},
			{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
		}
		cursor, err := s.db.Collection(collReactions).Aggregate(ctx, pipeline)
		if err != nil {
			return nil, fmt.Errorf("aggregate reactions: %w", err)
		}

		var rows []struct {
			Type  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, fmt.Errorf("decode reaction counts: %w", err)
		}

		counts := make(map[string]int64, len(rows))
		for _, r := range rows {
			counts[r.Type] = r.Count
		}
		return counts, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(map[string]int64), nil
}

func (s *Store) ReactionsSince(ctx context.Context, postIDs []string, cutoff time.Time) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	out, err := s.run("reactions_since", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		filter := bson.M{
			"post_id":    bson.M{"$in": idValues(postIDs)},
			"created_at": bson.M{"$gte": cutoff},
		}
		n, err := s.db.Collection(collReactions).CountDocuments(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count recent reactions: %w", err)
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

func (s *Store) UniqueReactors(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	out, err := s.run("unique_reactors", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		raw, err := s.db.Collection(collReactions).Distinct(ctx, "user_id", bson.M{"post_id": bson.M{"$in": idValues(postIDs)}})
		if err != nil {
			return nil, fmt.Errorf("distinct reactors: %w", err)
		}
		return int64(len(raw)), nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

type commentDoc struct {
	ID     any    `bson:"_id"`
	PostID any    `bson:"post_id"`
	UserID any    `bson:"user_id"`
	Text   string `bson:"text"`
}

func (s *Store) CommentsByPosts(ctx context.Context, postIDs []string) ([]domain.Comment, error) {
	if len(postIDs) == 0 {
		return []domain.Comment{}, nil
	}

	out, err := s.run("comments_by_posts", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		cursor, err := s.db.Collection(collComments).Find(ctx, bson.M{"post_id": bson.M{"$in": idValues(postIDs)}})
		if err != nil {
			return nil, fmt.Errorf("find comments: %w", err)
		}

		var docs []commentDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}

		comments := make([]domain.Comment, len(docs))
		for i, d := range docs {
			comments[i] = domain.Comment{
				ID:     hexID(d.ID),
				PostID: hexID(d.PostID),
				UserID: hexID(d.UserID),
				Text:   d.Text,
			}
		}
		return comments, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Comment), nil
}

func (s *Store) VoteTally(ctx context.Context, electionID string) (map[string]int64, error) {
	out, err := s.run("vote_tally", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"election_id": idValue(electionID)}}},
			{{Key: "$group", Value: bson.M{"_id": "$candidate_id", "count": bson.M{"$sum": 1}}}},
		}
		cursor, err := s.db.Collection(collVotes).Aggregate(ctx, pipeline)
		if err != nil {
			return nil, fmt.Errorf("aggregate votes: %w", err)
		}

		var rows []struct {
			CandidateID any   `bson:"_id"`
			Count       int64 `bson:"count"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, fmt.Errorf("decode vote tally: %w", err)
		}

		tally := make(map[string]int64, len(rows))
		for _, r := range rows {
			tally[hexID(r.CandidateID)] = r.Count
		}
		return tally, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(map[string]int64), nil
}

type resultDoc struct {
	ElectionID any    `bson:"election_id"`
	WinnerID   any    `bson:"winner_id"`
	Shares     []struct {
		CandidateID any     `bson:"candidate_id"`
		Pct         float64 `bson:"pct"`
	} `bson:"shares"`
}

func (s *Store) ResultShares(ctx context.Context, electionID string) (map[string]float64, error) {
	out, err := s.run("result_shares", func() (any, error) {
		doc, err := s.result(ctx, electionID)
		if err != nil {
			return nil, err
		}

		shares := make(map[string]float64, len(doc.Shares))
		for _, sh := range doc.Shares {
			shares[hexID(sh.CandidateID)] = sh.Pct
		}
		if len(shares) == 0 {
			return nil, domain.ErrNoData
		}
		return shares, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(map[string]float64), nil
}

func (s *Store) Winner(ctx context.Context, electionID string) (string, error) {
	out, err := s.run("winner", func() (any, error) {
		doc, err := s.result(ctx, electionID)
		if err != nil {
			return nil, err
		}

		winner := hexID(doc.WinnerID)
		if winner == "" {
			return nil, domain.ErrNoData
		}
		return winner, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (s *Store) result(ctx context.Context, electionID string) (*resultDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc resultDoc
	err := s.db.Collection(collResults).FindOne(ctx, bson.M{"election_id": idValue(electionID)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("find election result: %w", err)
	}
	return &doc, nil
}
