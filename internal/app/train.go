package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
	"github.com/ritika-mhrjn/pollpulse/internal/ml"
)

// TrainResult summarizes one training run for the caller.
type TrainResult struct {
	Task          ml.Task        `json:"task"`
	TrainedAt     time.Time      `json:"trained_at"`
	ElectionsUsed int            `json:"elections_used"`
	TrainRows     int            `json:"train_rows"`
	TestRows      int            `json:"test_rows"`
	BestModel     string         `json:"best_model"`
	Metrics       map[string]any `json:"metrics"`
}

// TrainShares retrains the share regressor and atomically replaces the
// artifact. An empty electionID trains over every election with recorded
// results; a non-empty one restricts the run to that election. Elections
// without labels are skipped, not fatal; the run fails only when no labeled
// rows exist at all.
func (s *Service) TrainShares(ctx context.Context, electionID string) (*TrainResult, error) {
	ids := []string{electionID}
	if electionID == "" {
		var err error
		ids, err = s.store.ElectionIDs(ctx)
		if err != nil {
			metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("list elections: %w", err)
		}
	}

	var rows [][]float64
	var labels []float64
	var used int

	for _, id := range ids {
		records, err := s.aggregator.Aggregate(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				continue
			}
			metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("aggregate election %s: %w", id, err)
		}

		labeled, shares, err := s.aggregator.WithShareLabels(ctx, id, records)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				continue
			}
			metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("labels for election %s: %w", id, err)
		}

		for i, rec := range labeled {
			rows = append(rows, rec.Vector())
			labels = append(labels, shares[i])
		}
		used++
	}

	if len(rows) == 0 {
		metrics.TrainingRunsTotal.WithLabelValues("no_data").Inc()
		return nil, domain.ErrNoData
	}

	bundle, meta, err := ml.TrainRegression(rows, labels, domain.BaseFeatureColumns, s.trainOpts)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := bundle.Save(s.shareModels.Path(), meta); err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.TrainingRunsTotal.WithLabelValues("ok").Inc()
	slog.Info("Share model retrained",
		"elections_used", used,
		"train_rows", meta.TrainRows,
		"test_rows", meta.TestRows,
		"best_model", meta.BestModel)

	return trainResult(meta, used), nil
}

// TrainWinner retrains the winner classifier over every election with a
// recorded outcome. Labels are per candidate: 1 for the winner, 0 otherwise.
// Fails fast with domain.ErrDegenerateLabels before writing anything when
// the label set ends up single-class.
func (s *Service) TrainWinner(ctx context.Context) (*TrainResult, error) {
	ids, err := s.store.ElectionIDs(ctx)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("list elections: %w", err)
	}

	var rows [][]float64
	var labels []float64
	var index []string
	var used int

	for _, id := range ids {
		winner, err := s.store.Winner(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				continue
			}
			metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("winner for election %s: %w", id, err)
		}

		records, err := s.aggregator.AggregateWinner(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				continue
			}
			metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("aggregate election %s: %w", id, err)
		}

		for _, rec := range records {
			row := make([]float64, len(domain.WinnerFeatureColumns))
			for j, col := range domain.WinnerFeatureColumns {
				row[j], _ = rec.Feature(col)
			}
			rows = append(rows, row)
			index = append(index, rec.Candidate.ID)
			if rec.Candidate.ID == winner {
				labels = append(labels, 1)
			} else {
				labels = append(labels, 0)
			}
		}
		used++
	}

	if len(rows) == 0 {
		metrics.TrainingRunsTotal.WithLabelValues("no_data").Inc()
		return nil, domain.ErrNoData
	}

	bundle, meta, err := ml.TrainClassification(rows, labels, domain.WinnerFeatureColumns, index, s.trainOpts)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := bundle.Save(s.winnerModels.Path(), meta); err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.TrainingRunsTotal.WithLabelValues("ok").Inc()
	slog.Info("Winner model retrained",
		"elections_used", used,
		"train_rows", meta.TrainRows,
		"test_rows", meta.TestRows,
		"best_model", meta.BestModel)

	return trainResult(meta, used), nil
}

func trainResult(meta ml.Meta, used int) *TrainResult {
	return &TrainResult{
		Task:          meta.Task,
		TrainedAt:     meta.TrainedAt,
		ElectionsUsed: used,
		TrainRows:     meta.TrainRows,
		TestRows:      meta.TestRows,
		BestModel:     meta.BestModel,
		Metrics:       meta.Metrics,
	}
}
