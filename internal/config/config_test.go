package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "digital_voting", cfg.MongoDatabase)
	assert.Equal(t, "models", cfg.ModelDir)
	assert.Equal(t, 3*time.Second, cfg.TickInterval)
	assert.Equal(t, 60, cfg.MaxTicks)
	assert.Equal(t, 0.5, cfg.JitterSigma)
	assert.Equal(t, 0.3, cfg.TestFraction)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Nil(t, cfg.HeuristicWeights)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("STREAM_TICK_INTERVAL", "500ms")
	t.Setenv("STREAM_MAX_TICKS", "10")
	t.Setenv("STREAM_JITTER_SIGMA", "1.5")
	t.Setenv("TRAIN_TEST_FRACTION", "0.2")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("HEURISTIC_WEIGHTS", `{"likes": 2.5, "shares": 0.1}`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 10, cfg.MaxTicks)
	assert.Equal(t, 1.5, cfg.JitterSigma)
	assert.Equal(t, 0.2, cfg.TestFraction)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, map[string]float64{"likes": 2.5, "shares": 0.1}, cfg.HeuristicWeights)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"STREAM_TICK_INTERVAL": "-1s",
		"STREAM_MAX_TICKS":     "0",
		"STREAM_JITTER_SIGMA":  "-0.5",
		"TRAIN_TEST_FRACTION":  "1.5",
		"HEURISTIC_WEIGHTS":    "not json",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("MONGO_URI", "mongodb://localhost:27017")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
