package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ritika-mhrjn/pollpulse/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards embed the stream cross-origin
	},
}

const subscribeTimeout = 10 * time.Second

// handleLiveStream upgrades the connection, waits for the subscribe message,
// and runs one bounded session. The read pump only watches for the client
// going away; any further client messages are discarded.
func (s *Server) handleLiveStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(subscribeTimeout))
	var sub stream.Subscribe
	if err := conn.ReadJSON(&sub); err != nil {
		conn.WriteJSON(stream.Event{Event: stream.EventError, Error: "expected a subscribe message"})
		return nil
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	session := stream.NewSession(s.svc, conn, stream.Options{
		Interval:    s.config.TickInterval,
		MaxTicks:    s.config.MaxTicks,
		JitterSigma: s.config.JitterSigma,
	})

	slog.Info("Live stream started", "session_id", session.ID, "election_id", sub.ElectionID, "remote", c.RealIP())
	if err := session.Run(ctx, sub); err != nil && ctx.Err() == nil {
		slog.Warn("Live stream ended with error", "session_id", session.ID, "error", err)
	}
	slog.Info("Live stream closed", "session_id", session.ID, "state", session.State().String())
	return nil
}
