package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ritika-mhrjn/pollpulse/internal/app"
	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	apperrors "github.com/ritika-mhrjn/pollpulse/internal/errors"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// candidatePayload is one pre-aggregated feature row supplied directly in the
// request body. Absent numeric fields default to zero.
type candidatePayload struct {
	CandidateID   string  `json:"candidate_id"`
	Name          string  `json:"name"`
	Party         string  `json:"party"`
	Photo         string  `json:"photo"`
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

func (p candidatePayload) record() domain.FeatureRecord {
	return domain.FeatureRecord{
		Candidate:     domain.CandidateRef{ID: p.CandidateID, Name: p.Name, Party: p.Party, Photo: p.Photo},
		Likes:         p.Likes,
		Hearts:        p.Hearts,
		ThumbsUp:      p.ThumbsUp,
		ThumbsDown:    p.ThumbsDown,
		Support:       p.Support,
		Shares:        p.Shares,
		CommentsCount: p.CommentsCount,
		AvgSentiment:  p.AvgSentiment,
		UniqueUsers:   p.UniqueUsers,
		Last24Delta:   p.Last24Delta,
	}
}

type predictRequest struct {
	ElectionID string             `json:"election_id"`
	Candidates []candidatePayload `json:"candidates"`
}

// handlePredictShares is the share-prediction endpoint: a ranked percentage
// distribution over candidates. The body carries either a candidates array
// (scored as supplied) or an election_id (aggregated server-side).
func (s *Server) handlePredictShares(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, apperrors.ValidationError("request body must be JSON"))
	}

	if len(req.Candidates) > 0 {
		records := make([]domain.FeatureRecord, len(req.Candidates))
		for i, p := range req.Candidates {
			if p.CandidateID == "" {
				return s.writeError(c, apperrors.ValidationError(fmt.Sprintf("candidates[%d] is missing candidate_id", i)))
			}
			records[i] = p.record()
		}
		return c.JSON(http.StatusOK, s.svc.PredictSharesFromRecords(req.ElectionID, records))
	}

	if req.ElectionID == "" {
		return s.writeError(c, apperrors.ValidationError("provide a candidates payload or election_id"))
	}

	resp, err := s.svc.PredictShares(c.Request().Context(), req.ElectionID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// handlePredictWinner is the winner-prediction endpoint keyed by path param.
func (s *Server) handlePredictWinner(c echo.Context) error {
	electionID := c.Param("election_id")
	if electionID == "" {
		return s.writeError(c, apperrors.ValidationError("election_id is required"))
	}

	resp, err := s.svc.PredictWinner(c.Request().Context(), electionID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// handlePredictWinnerQuery is the query-parameter alias kept for older
// clients (GET /predict?electionId=...).
func (s *Server) handlePredictWinnerQuery(c echo.Context) error {
	electionID := c.QueryParam("electionId")
	if electionID == "" {
		electionID = c.QueryParam("election_id")
	}
	if electionID == "" {
		return s.writeError(c, apperrors.ValidationError("electionId query parameter is required"))
	}

	resp, err := s.svc.PredictWinner(c.Request().Context(), electionID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// trainResponse is the training-trigger envelope. A scope with nothing to fit
// is a success=false result, not an error status.
type trainResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Metrics map[string]any   `json:"metrics,omitempty"`
	Detail  *app.TrainResult `json:"detail,omitempty"`
}

// handleTrain retrains the share regressor and hot-swaps the artifact. An
// optional election_id in the body restricts the run to one election;
// otherwise every election with recorded results contributes rows.
func (s *Server) handleTrain(c echo.Context) error {
	var req predictRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return s.writeError(c, apperrors.ValidationError("request body must be JSON"))
		}
	}

	result, err := s.svc.TrainShares(c.Request().Context(), req.ElectionID)
	if errors.Is(err, domain.ErrNoData) {
		return c.JSON(http.StatusOK, trainResponse{Success: false, Message: "no training data found"})
	}
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, trainResponse{
		Success: true,
		Message: "model trained",
		Metrics: result.Metrics,
		Detail:  result,
	})
}

// writeError maps domain sentinel errors onto structured responses. Unknown
// errors become opaque 500s; the cause is logged, never serialized.
func (s *Server) writeError(c echo.Context, err error) error {
	var structured *apperrors.Error
	switch {
	case errors.Is(err, domain.ErrElectionNotFound):
		structured = apperrors.NotFoundError("election not found")
	case errors.Is(err, domain.ErrNoData):
		structured = apperrors.NoDataError(err.Error())
	case errors.Is(err, domain.ErrDegenerateLabels):
		structured = apperrors.ValidationError(err.Error())
	default:
		structured = apperrors.AsStructuredError(err)
	}

	if structured.Type == apperrors.TypeInternal {
		slog.Error("Request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(structured.HTTPStatus(), structured.ToResponse())
}
