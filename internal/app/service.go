// Package app wires aggregation, scoring, and model registries into the
// operations the transport layer exposes.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/features"
	"github.com/ritika-mhrjn/pollpulse/internal/ml"
	"github.com/ritika-mhrjn/pollpulse/internal/scoring"
)

// Service is the application facade. It is safe for concurrent use; all
// state lives in the store, the model registries, and the metric registry.
type Service struct {
	store        domain.DocumentStore
	aggregator   *features.Aggregator
	engine       *scoring.Engine
	shareModels  *ml.Registry
	winnerModels *ml.Registry
	trainOpts    ml.TrainOptions

	// group collapses concurrent aggregations of the same election into one
	// store scan. Keys are prefixed by variant since the two record shapes
	// differ.
	group singleflight.Group
}

func NewService(store domain.DocumentStore, aggregator *features.Aggregator, engine *scoring.Engine, shareModels, winnerModels *ml.Registry, trainOpts ml.TrainOptions) *Service {
	return &Service{
		store:        store,
		aggregator:   aggregator,
		engine:       engine,
		shareModels:  shareModels,
		winnerModels: winnerModels,
		trainOpts:    trainOpts,
	}
}

// ModelInfo is the caller-facing slice of the model metadata sidecar.
type ModelInfo struct {
	Version   string    `json:"version"`
	BestModel string    `json:"best_model"`
	TrainedAt time.Time `json:"trained_at"`
}

// PredictionResponse is the share-prediction payload. Model is null when the
// heuristic produced the result.
type PredictionResponse struct {
	ElectionID   string              `json:"election_id"`
	Predictions  []domain.Prediction `json:"predictions"`
	UsedFallback bool                `json:"used_fallback"`
	Model        *ModelInfo          `json:"model_meta"`
}

// WinnerResponse is the winner-prediction payload. PredictedWinner is the
// top-ranked candidate id.
type WinnerResponse struct {
	ElectionID      string              `json:"election_id"`
	PredictedWinner string              `json:"predicted_winner"`
	Predictions     []domain.Prediction `json:"predictions"`
	UsedFallback    bool                `json:"used_fallback"`
	Model           *ModelInfo          `json:"model_meta"`
}

// PredictShares ranks the election's candidates by predicted vote share.
// The trained regressor scores when an artifact is loaded; otherwise the
// weighted heuristic does, with UsedFallback set.
func (s *Service) PredictShares(ctx context.Context, electionID string) (*PredictionResponse, error) {
	records, err := s.shareRecords(ctx, electionID)
	if err != nil {
		return nil, err
	}

	bundle, meta := s.shareModels.Current()
	result := s.engine.Score(asVectors(records), bundle)

	return &PredictionResponse{
		ElectionID:   electionID,
		Predictions:  result.Predictions,
		UsedFallback: result.UsedFallback,
		Model:        modelInfo(meta, result.UsedFallback),
	}, nil
}

// PredictWinner ranks candidates by win probability. Without a classifier
// artifact the fallback normalizes the raw vote tally instead of the
// engagement heuristic; the tally is the strongest signal that path has.
func (s *Service) PredictWinner(ctx context.Context, electionID string) (*WinnerResponse, error) {
	records, err := s.winnerRecords(ctx, electionID)
	if err != nil {
		return nil, err
	}

	bundle, meta := s.winnerModels.Current()
	result := s.engine.ScoreVoteFallback(asWinnerVectors(records), bundle)

	resp := &WinnerResponse{
		ElectionID:   electionID,
		Predictions:  result.Predictions,
		UsedFallback: result.UsedFallback,
		Model:        modelInfo(meta, result.UsedFallback),
	}
	if len(result.Predictions) > 0 {
		resp.PredictedWinner = result.Predictions[0].CandidateID
	}
	return resp, nil
}

// PredictSharesFromRecords scores caller-supplied feature records without
// touching the store. Callers that hold their own aggregated engagement data
// submit it pre-built; the records go through the same model-or-heuristic
// path as server-side aggregation.
func (s *Service) PredictSharesFromRecords(electionID string, records []domain.FeatureRecord) *PredictionResponse {
	bundle, meta := s.shareModels.Current()
	result := s.engine.Score(asVectors(records), bundle)

	return &PredictionResponse{
		ElectionID:   electionID,
		Predictions:  result.Predictions,
		UsedFallback: result.UsedFallback,
		Model:        modelInfo(meta, result.UsedFallback),
	}
}

// Snapshot is the live-stream tick source: a fresh winner prediction with
// only the ranked list.
func (s *Service) Snapshot(ctx context.Context, electionID string) ([]domain.Prediction, error) {
	resp, err := s.PredictWinner(ctx, electionID)
	if err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

func (s *Service) shareRecords(ctx context.Context, electionID string) ([]domain.FeatureRecord, error) {
	v, err, _ := s.group.Do("share:"+electionID, func() (any, error) {
		return s.aggregator.Aggregate(ctx, electionID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.FeatureRecord), nil
}

func (s *Service) winnerRecords(ctx context.Context, electionID string) ([]domain.WinnerFeatureRecord, error) {
	v, err, _ := s.group.Do("winner:"+electionID, func() (any, error) {
		return s.aggregator.AggregateWinner(ctx, electionID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.WinnerFeatureRecord), nil
}

func modelInfo(meta *ml.Meta, usedFallback bool) *ModelInfo {
	if meta == nil || usedFallback {
		return nil
	}
	return &ModelInfo{Version: meta.Version, BestModel: meta.BestModel, TrainedAt: meta.TrainedAt}
}

func asVectors(records []domain.FeatureRecord) []domain.FeatureVector {
	out := make([]domain.FeatureVector, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}

func asWinnerVectors(records []domain.WinnerFeatureRecord) []domain.FeatureVector {
	out := make([]domain.FeatureVector, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}
