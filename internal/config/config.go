package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the prediction engine. The heuristic weight
// table and the jitter sigma are deliberately configuration, not constants:
// the shipped defaults are observed calibration with no documented derivation.
type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	MongoURI      string
	MongoDatabase string
	RedisURL      string // optional; empty disables the sentiment cache

	ModelDir string

	TickInterval time.Duration
	MaxTicks     int
	JitterSigma  float64

	TestFraction float64
	RandomSeed   int64

	// HeuristicWeights overrides the built-in weight table when set
	// (HEURISTIC_WEIGHTS as a JSON object of column -> weight).
	HeuristicWeights map[string]float64
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DB_NAME", "digital_voting"),
		RedisURL:      getEnv("REDIS_URL", ""),
		ModelDir:      getEnv("MODEL_DIR", "models"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	var err error
	if cfg.TickInterval, err = getDuration("STREAM_TICK_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("STREAM_TICK_INTERVAL must be positive")
	}

	if cfg.MaxTicks, err = getInt("STREAM_MAX_TICKS", 60); err != nil {
		return nil, err
	}
	if cfg.MaxTicks <= 0 {
		return nil, fmt.Errorf("STREAM_MAX_TICKS must be positive")
	}

	if cfg.JitterSigma, err = getFloat("STREAM_JITTER_SIGMA", 0.5); err != nil {
		return nil, err
	}
	if cfg.JitterSigma < 0 {
		return nil, fmt.Errorf("STREAM_JITTER_SIGMA must not be negative")
	}

	if cfg.TestFraction, err = getFloat("TRAIN_TEST_FRACTION", 0.3); err != nil {
		return nil, err
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TRAIN_TEST_FRACTION must be in (0, 1)")
	}

	seed, err := getInt("RANDOM_SEED", 42)
	if err != nil {
		return nil, err
	}
	cfg.RandomSeed = int64(seed)

	if raw := os.Getenv("HEURISTIC_WEIGHTS"); raw != "" {
		weights := make(map[string]float64)
		if err := json.Unmarshal([]byte(raw), &weights); err != nil {
			return nil, fmt.Errorf("HEURISTIC_WEIGHTS must be a JSON object of column to weight: %w", err)
		}
		cfg.HeuristicWeights = weights
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 3s: %w", key, err)
	}
	return v, nil
}
