// Package stream runs bounded live-prediction sessions over a websocket.
// Each session re-queries the store every tick, perturbs the percentages
// with Gaussian noise, and stops on its own after a fixed number of ticks.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ritika-mhrjn/pollpulse/internal/domain"
	"github.com/ritika-mhrjn/pollpulse/internal/metrics"
)

// State is the session lifecycle. Transitions only move forward:
// Idle -> Streaming -> Finished or Errored.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateFinished
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinished:
		return "finished"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Source produces one fresh prediction snapshot. Every tick calls it anew;
// the session never caches snapshots across ticks.
type Source interface {
	Snapshot(ctx context.Context, electionID string) ([]domain.Prediction, error)
}

// Conn is the write side of the client connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteJSON(v any) error
}

// Options bound a session. Zero values fall back to the defaults used in
// production (3s ticks, 60 ticks, sigma 0.5).
type Options struct {
	Interval    time.Duration
	MaxTicks    int
	JitterSigma float64
	Clock       clockwork.Clock
	Src         rand.Source
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 3 * time.Second
	}
	if o.MaxTicks <= 0 {
		o.MaxTicks = 60
	}
	if o.JitterSigma <= 0 {
		o.JitterSigma = 0.5
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Src == nil {
		o.Src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return o
}

// Session is one client's live stream. A session is single-use: Run may be
// called once.
type Session struct {
	ID     string
	source Source
	conn   Conn
	opts   Options
	jitter jitterer

	mu    sync.Mutex
	state State
}

func NewSession(source Source, conn Conn, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		ID:     uuid.NewString(),
		source: source,
		conn:   conn,
		opts:   opts,
		jitter: newJitterer(opts.JitterSigma, opts.Src),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run drives the session to completion. A subscribe naming an unknown
// election produces exactly one error event and no tick loop. Per-tick
// snapshot failures produce an error-bearing update event and the loop
// continues; only a failed write (client gone) or context cancellation ends
// the session early.
func (s *Session) Run(ctx context.Context, sub Subscribe) error {
	if s.State() != StateIdle {
		return fmt.Errorf("session %s already ran", s.ID)
	}
	s.setState(StateStreaming)

	metrics.StreamSessionsActive.Inc()
	defer metrics.StreamSessionsActive.Dec()

	if _, err := s.source.Snapshot(ctx, sub.ElectionID); err != nil {
		if errors.Is(err, domain.ErrElectionNotFound) || errors.Is(err, domain.ErrNoData) {
			s.setState(StateErrored)
			return s.conn.WriteJSON(Event{Event: EventError, Error: err.Error()})
		}
		// Transient store trouble is not fatal to the subscription; the
		// tick loop will keep retrying.
		slog.Warn("Initial snapshot failed, streaming anyway", "session_id", s.ID, "election_id", sub.ElectionID, "error", err)
	}

	if err := s.conn.WriteJSON(Event{Event: EventWelcome, Message: "connected to prediction stream"}); err != nil {
		s.setState(StateErrored)
		return err
	}

	interval := s.opts.Interval
	if sub.IntervalSeconds > 0 {
		interval = time.Duration(sub.IntervalSeconds * float64(time.Second))
	}

	ticker := s.opts.Clock.NewTicker(interval)
	defer ticker.Stop()

	for tick := 0; tick < s.opts.MaxTicks; tick++ {
		select {
		case <-ctx.Done():
			s.setState(StateErrored)
			return ctx.Err()
		case <-ticker.Chan():
		}

		metrics.StreamTicksTotal.Inc()

		if err := s.emitTick(ctx, sub.ElectionID); err != nil {
			s.setState(StateErrored)
			return err
		}
	}

	s.setState(StateFinished)
	return s.conn.WriteJSON(Event{Event: EventFinished, Message: "stream finished"})
}

func (s *Session) emitTick(ctx context.Context, electionID string) error {
	predictions, err := s.source.Snapshot(ctx, electionID)
	if err != nil {
		metrics.StreamTickErrorsTotal.Inc()
		slog.Warn("Stream tick failed", "session_id", s.ID, "election_id", electionID, "error", err)
		return s.conn.WriteJSON(Event{Event: EventUpdate, Error: err.Error()})
	}
	return s.conn.WriteJSON(Event{Event: EventUpdate, Data: s.jitter.apply(predictions)})
}
