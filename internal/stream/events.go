package stream

import "github.com/ritika-mhrjn/pollpulse/internal/domain"

// Wire event names. Clients key off these strings; changing one is a
// breaking protocol change.
const (
	EventWelcome  = "welcome"
	EventUpdate   = "live_poll_update"
	EventFinished = "live_poll_update_finished"
	EventError    = "error"
)

// Subscribe is the single message a client sends after connecting.
type Subscribe struct {
	ElectionID      string  `json:"election_id"`
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`
}

// Event is the server-to-client envelope. Exactly one of Data, Error, or
// Message is set depending on the event name.
type Event struct {
	Event   string              `json:"event"`
	Data    []domain.Prediction `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
}
