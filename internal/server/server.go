// Package server exposes the prediction engine over HTTP and websocket.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritika-mhrjn/pollpulse/internal/app"
	"github.com/ritika-mhrjn/pollpulse/internal/config"
)

type Server struct {
	echo    *echo.Echo
	config  *config.Config
	svc     *app.Service
	limiter *rateLimiter
}

func NewServer(cfg *config.Config, svc *app.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
	}))

	srv := &Server{
		echo:    e,
		config:  cfg,
		svc:     svc,
		limiter: newRateLimiter(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limited := s.limiter.middleware()
	s.echo.POST("/predict", s.handlePredictShares, limited)
	s.echo.GET("/predict", s.handlePredictWinnerQuery, limited)
	s.echo.GET("/predict/:election_id", s.handlePredictWinner, limited)
	s.echo.POST("/train", s.handleTrain, limited)

	s.echo.GET("/ws/live", s.handleLiveStream)
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
