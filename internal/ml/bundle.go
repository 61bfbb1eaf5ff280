package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
)

// Task discriminates what a bundle was trained for.
type Task string

const (
	// TaskRegression predicts a vote-share scalar per candidate.
	TaskRegression Task = "regression"
	// TaskClassification predicts a win probability per candidate.
	TaskClassification Task = "classification"
)

// Model family names as persisted in artifacts.
const (
	FamilyLinear   = "linear"
	FamilyLogistic = "logistic"
	FamilyForest   = "random_forest"
)

// Bundle is the opaque, versioned model artifact. It is immutable after
// load: scoring goroutines share one bundle with no locking beyond
// load-once, read-many.
type Bundle struct {
	Version        string    `json:"version"`
	Task           Task      `json:"task"`
	FeatureColumns []string  `json:"feature_columns"`
	CandidateIndex []string  `json:"candidate_index,omitempty"`
	Best           string    `json:"best_model"`
	Scaler         *Scaler   `json:"scaler"`
	Linear         *Linear   `json:"linear,omitempty"`
	Logistic       *Logistic `json:"logistic,omitempty"`
	Forest         *Forest   `json:"random_forest,omitempty"`
}

// Meta is the sidecar metadata record written alongside the artifact and
// returned verbatim to prediction callers.
type Meta struct {
	Version   string         `json:"version"`
	Task      Task           `json:"task"`
	TrainedAt time.Time      `json:"trained_at"`
	Features  []string       `json:"features"`
	TrainRows int            `json:"train_rows"`
	TestRows  int            `json:"test_rows"`
	BestModel string         `json:"best_model"`
	Metrics   map[string]any `json:"metrics"`
}

// votesAliases are serving-time column names that can be backfilled from the
// raw vote tally when a trained column has no direct counterpart.
func isVotesAlias(column string) bool {
	switch strings.ToLower(column) {
	case "votes", "vote_count", "raw_votes":
		return true
	}
	return false
}

// Matrix builds the model input matrix from feature vectors in the bundle's
// declared column order. A column the record cannot produce is backfilled
// from raw votes when it is a votes alias, otherwise defaulted to 0 — never
// an error, per the compatibility contract.
func (b *Bundle) Matrix(records []domain.FeatureVector) [][]float64 {
	rows := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(b.FeatureColumns))
		for j, col := range b.FeatureColumns {
			if v, ok := rec.Feature(col); ok {
				row[j] = v
				continue
			}
			if isVotesAlias(col) {
				if v, ok := rec.Feature("raw_votes"); ok {
					row[j] = v
				}
			}
		}
		rows[i] = row
	}
	return rows
}

// Scores runs inference with the bundle's best family and returns one raw
// score per row: a positive-class probability for classification, a scalar
// response for regression. Scores does not clamp or normalize; that is the
// scoring engine's job.
func (b *Bundle) Scores(rows [][]float64) ([]float64, error) {
	switch b.Best {
	case FamilyForest:
		if b.Forest == nil {
			return nil, fmt.Errorf("bundle names %s but carries no forest", b.Best)
		}
		out := make([]float64, len(rows))
		for i, row := range rows {
			v, err := b.Forest.Predict(row)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case FamilyLogistic:
		if b.Logistic == nil || b.Scaler == nil {
			return nil, fmt.Errorf("bundle names %s but carries no logistic model or scaler", b.Best)
		}
		scaled, err := b.Scaler.Transform(rows)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(scaled))
		for i, row := range scaled {
			out[i] = b.Logistic.PredictProba(row)
		}
		return out, nil

	case FamilyLinear:
		if b.Linear == nil || b.Scaler == nil {
			return nil, fmt.Errorf("bundle names %s but carries no linear model or scaler", b.Best)
		}
		scaled, err := b.Scaler.Transform(rows)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(scaled))
		for i, row := range scaled {
			out[i] = b.Linear.Predict(row)
		}
		return out, nil
	}

	return nil, fmt.Errorf("bundle names unknown model family %q", b.Best)
}

// Save writes the artifact and its sidecar metadata file. The artifact is
// written atomically (temp file + rename) so a concurrent hot-reload never
// observes a half-written bundle.
func (b *Bundle) Save(path string, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	if err := writeJSONAtomic(path, b); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	if err := writeJSONAtomic(MetaPath(path), meta); err != nil {
		return fmt.Errorf("write model metadata: %w", err)
	}
	return nil
}

// LoadBundle reads a persisted artifact.
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrModelUnavailable
		}
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(b.FeatureColumns) == 0 {
		return nil, fmt.Errorf("model artifact carries no feature columns")
	}
	return &b, nil
}

// LoadMeta reads the sidecar metadata, returning nil (not an error) when the
// sidecar is missing or unreadable — metadata is informational only.
func LoadMeta(path string) *Meta {
	raw, err := os.ReadFile(MetaPath(path))
	if err != nil {
		return nil
	}
	var m Meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

// MetaPath derives the sidecar path from the artifact path
// (model_v1.json -> model_v1_meta.json).
func MetaPath(artifactPath string) string {
	ext := filepath.Ext(artifactPath)
	return strings.TrimSuffix(artifactPath, ext) + "_meta" + ext
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
