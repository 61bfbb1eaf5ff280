package domain

import "errors"

var (
	// ErrElectionNotFound means the requested election id matches nothing in
	// the document store.
	ErrElectionNotFound = errors.New("election not found")

	// ErrNoData means the requested scope exists but holds no usable
	// interaction or label documents. It is a result, not a failure.
	ErrNoData = errors.New("no data found for requested scope")

	// ErrDegenerateLabels means the training set contains fewer than two
	// label classes. Training must fail fast instead of fitting a trivial
	// model.
	ErrDegenerateLabels = errors.New("training data has a single label class")

	// ErrModelUnavailable means no model artifact exists or it failed to
	// load. Scoring downgrades to the heuristic; this error never reaches a
	// caller of Score.
	ErrModelUnavailable = errors.New("model bundle unavailable")
)
