// Command train runs one offline training pass and exits. The server picks
// up the new artifact on its next prediction without a restart.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
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
	"github.com/ritika-mhrjn/pollpulse/internal/store/mongo"
)

func main() {
	task := flag.String("task", "winner", "which model to train: winner or shares")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err == nil {
		err = client.Ping(ctx, readpref.Primary())
	}
	cancel()
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	store := mongo.NewStore(client.Database(cfg.MongoDatabase))
	aggregator := features.NewAggregator(store, sentiment.NewScorer(nil), clockwork.NewRealClock())
	engine := scoring.NewEngine(cfg.HeuristicWeights)

	shareModels := ml.NewRegistry(filepath.Join(cfg.ModelDir, "share_model_v1.json"))
	winnerModels := ml.NewRegistry(filepath.Join(cfg.ModelDir, "winner_model_v1.json"))
	trainOpts := ml.TrainOptions{TestFraction: cfg.TestFraction, Seed: cfg.RandomSeed}
	svc := app.NewService(store, aggregator, engine, shareModels, winnerModels, trainOpts)

	var result *app.TrainResult
	switch *task {
	case "winner":
		result, err = svc.TrainWinner(context.Background())
	case "shares":
		result, err = svc.TrainShares(context.Background(), "")
	default:
		slog.Error("Unknown task", "task", *task)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Training failed", "task", *task, "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
