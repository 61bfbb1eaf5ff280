package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritika-mhrjn/pollpulse/internal/app"
	"github.com/ritika-mhrjn/pollpulse/internal/config"
	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/features"
	"github.com/ritika-mhrjn/pollpulse/internal/ml"
	"github.com/ritika-mhrjn/pollpulse/internal/scoring"
)

// stubStore serves one election with two candidates and no recorded results.
type stubStore struct{}

func (stubStore) ElectionExists(_ context.Context, id string) (bool, error) {
	return id == "e1", nil
}

func (stubStore) ElectionIDs(context.Context) ([]string, error) {
	return []string{"e1"}, nil
}

func (stubStore) CandidatesByElection(_ context.Context, id string) ([]domain.Candidate, error) {
	if id != "e1" {
		return nil, nil
	}
	return []domain.Candidate{
		{ID: "alice", Name: "Alice", ElectionID: "e1"},
		{ID: "bob", Name: "Bob", ElectionID: "e1"},
	}, nil
}

func (stubStore) PostsByCandidate(_ context.Context, _, candidateID string) ([]domain.Post, error) {
	if candidateID != "alice" {
		return nil, nil
	}
	return []domain.Post{{ID: "p1", CandidateID: "alice", ElectionID: "e1", Views: 100}}, nil
}

func (stubStore) ReactionCountsByType(_ context.Context, postIDs []string) (map[string]int64, error) {
	return map[string]int64{domain.ReactionLike: 10, domain.ReactionSupport: 4}, nil
}

func (stubStore) ReactionsSince(_ context.Context, _ []string, _ time.Time) (int64, error) {
	return 3, nil
}

func (stubStore) UniqueReactors(_ context.Context, _ []string) (int64, error) {
	return 5, nil
}

func (stubStore) CommentsByPosts(_ context.Context, _ []string) ([]domain.Comment, error) {
	return nil, nil
}

func (stubStore) VoteTally(_ context.Context, _ string) (map[string]int64, error) {
	return map[string]int64{"alice": 20, "bob": 10}, nil
}

func (stubStore) ResultShares(_ context.Context, _ string) (map[string]float64, error) {
	return nil, domain.ErrNoData
}

func (stubStore) Winner(_ context.Context, _ string) (string, error) {
	return "", domain.ErrNoData
}

type neutralScorer struct{}

func (neutralScorer) ScoreText(context.Context, string) domain.SentimentScore {
	return domain.Neutral()
}

// labeledStubStore is stubStore with recorded results, enough to fit a model.
type labeledStubStore struct{ stubStore }

func (labeledStubStore) ResultShares(_ context.Context, id string) (map[string]float64, error) {
	if id != "e1" {
		return nil, domain.ErrNoData
	}
	return map[string]float64{"alice": 70, "bob": 30}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, stubStore{})
}

func newTestServerWith(t *testing.T, store domain.DocumentStore) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Port:         "0",
		TickInterval: 3 * time.Second,
		MaxTicks:     60,
		JitterSigma:  0.5,
	}

	aggregator := features.NewAggregator(store, neutralScorer{}, clockwork.NewFakeClock())
	svc := app.NewService(
		store,
		aggregator,
		scoring.NewEngine(nil),
		ml.NewRegistry(filepath.Join(dir, "share_model_v1.json")),
		ml.NewRegistry(filepath.Join(dir, "winner_model_v1.json")),
		ml.TrainOptions{TestFraction: 0.3, Seed: 42},
	)
	return NewServer(cfg, svc)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPredictShares(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"election_id":"e1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp app.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "e1", resp.ElectionID)
	assert.True(t, resp.UsedFallback)
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, "alice", resp.Predictions[0].CandidateID)

	var total float64
	for _, p := range resp.Predictions {
		total += p.PredictedPct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestPredictSharesExplicitPayload(t *testing.T) {
	srv := newTestServer(t)

	body := `{"candidates":[
		{"candidate_id":"c1","name":"One","likes":10,"hearts":3,"shares":2,"comments_count":1,"avg_sentiment":0.2,"unique_users":8},
		{"candidate_id":"c2","name":"Two","likes":5,"hearts":6,"shares":1,"comments_count":2,"avg_sentiment":-0.1,"unique_users":6}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp app.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.UsedFallback)
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, "c1", resp.Predictions[0].CandidateID)
	assert.Greater(t, resp.Predictions[0].PredictedPct, resp.Predictions[1].PredictedPct)
	assert.InDelta(t, 100.0, resp.Predictions[0].PredictedPct+resp.Predictions[1].PredictedPct, 1e-9)
}

func TestPredictSharesExplicitPayloadNeedsCandidateID(t *testing.T) {
	srv := newTestServer(t)

	body := `{"candidates":[{"name":"Anonymous","likes":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidate_id")
}

func TestPredictSharesValidation(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "election_id")
}

func TestPredictSharesUnknownElection(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"election_id":"ghost"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "election not found")
}

func TestPredictWinnerByPath(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/predict/e1", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp app.WinnerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.PredictedWinner)
	assert.True(t, resp.UsedFallback)
}

func TestPredictWinnerQueryAlias(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/predict?electionId=e1", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp app.WinnerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.PredictedWinner)
}

func TestPredictWinnerQueryAliasMissingParam(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainWithoutLabeledElections(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/train", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	// The stub store records no results; an empty scope is a success=false
	// result, not an error status.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp trainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "no training data")
	assert.Nil(t, resp.Detail)
}

func TestTrainReturnsEnvelope(t *testing.T) {
	srv := newTestServerWith(t, labeledStubStore{})

	req := httptest.NewRequest(http.MethodPost, "/train", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp trainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "model trained", resp.Message)
	assert.NotEmpty(t, resp.Metrics)
	require.NotNil(t, resp.Detail)
	assert.Equal(t, 1, resp.Detail.ElectionsUsed)
	assert.Equal(t, 2, resp.Detail.TrainRows+resp.Detail.TestRows)
}

func TestRateLimiterKicksIn(t *testing.T) {
	srv := newTestServer(t)

	var limited int
	var lastBody string
	for i := 0; i < 40; i++ {
		req := httptest.NewRequest(http.MethodGet, "/predict/e1", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
			lastBody = rec.Body.String()
		}
	}
	require.Greater(t, limited, 0)
	assert.Contains(t, lastBody, `"type":"rate_limited"`)
}

func TestRateLimiterIsPerIP(t *testing.T) {
	srv := newTestServer(t)

	// Exhaust one client's budget.
	for i := 0; i < 40; i++ {
		req := httptest.NewRequest(http.MethodGet, "/predict/e1", nil)
		req.RemoteAddr = "203.0.113.8:1234"
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
	}

	req := httptest.NewRequest(http.MethodGet, "/predict/e1", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
