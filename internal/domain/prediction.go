package domain

// Prediction is one candidate's scored entry in a ranked distribution.
// Invariant: PredictedPct >= 0 and, across one result set, the percentages sum
// to 100 (within floating-point tolerance) for a non-empty candidate set.
type Prediction struct {
	CandidateID  string  `json:"candidate_id"`
	Name         string  `json:"name"`
	Party        string  `json:"party,omitempty"`
	Photo        string  `json:"photo,omitempty"`
	RawScore     float64 `json:"raw_score"`
	PredictedPct float64 `json:"predicted_pct"`
}

// ScoreResult is what one scoring call produces: the ranked distribution plus
// an accurate report of whether the heuristic fallback was used.
type ScoreResult struct {
	Predictions  []Prediction
	UsedFallback bool
}
