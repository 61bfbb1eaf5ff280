package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ritika-mhrjn/pollpulse/internal/app"
	"github.com/ritika-mhrjn/pollpulse/internal/config"
	"github.com/ritika-mhrjn/pollpulse/internal/features"
	"github.com/ritika-mhrjn/pollpulse/internal/ml"
	"github.com/ritika-mhrjn/pollpulse/internal/platform/logging"
	"github.com/ritika-mhrjn/pollpulse/internal/scoring"
	"github.com/ritika-mhrjn/pollpulse/internal/sentiment"
	"github.com/ritika-mhrjn/pollpulse/internal/server"
	"github.com/ritika-mhrjn/pollpulse/internal/store/mongo"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupMongo(cfg *config.Config) *mongodriver.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("Failed to ping MongoDB", "error", err)
		os.Exit(1)
	}
	return client
}

// setupSentimentCache is optional: no REDIS_URL means sentiment scoring runs
// uncached, which is correct, just slower on comment-heavy elections.
func setupSentimentCache(cfg *config.Config) (sentiment.Cache, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse REDIS_URL", "error", err)
		os.Exit(1)
	}
	client := goredis.NewClient(opts)
	return sentiment.NewRedisCache(client), func() { _ = client.Close() }
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	mongoClient := setupMongo(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	cache, closeCache := setupSentimentCache(cfg)
	defer closeCache()

	store := mongo.NewStore(mongoClient.Database(cfg.MongoDatabase))
	scorer := sentiment.NewScorer(cache)
	aggregator := features.NewAggregator(store, scorer, clock)
	engine := scoring.NewEngine(cfg.HeuristicWeights)

	shareModels := ml.NewRegistry(filepath.Join(cfg.ModelDir, "share_model_v1.json"))
	winnerModels := ml.NewRegistry(filepath.Join(cfg.ModelDir, "winner_model_v1.json"))

	trainOpts := ml.TrainOptions{TestFraction: cfg.TestFraction, Seed: cfg.RandomSeed}
	svc := app.NewService(store, aggregator, engine, shareModels, winnerModels, trainOpts)

	srv := server.NewServer(cfg, svc)
	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
