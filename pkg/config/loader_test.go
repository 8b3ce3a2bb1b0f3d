package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotaguard/pkg/config"
)

// Each test declares its own struct type: the loader caches by type, so
// sharing one across tests would leak state between them.

func TestLoad(t *testing.T) {
	t.Run("parses env tags", func(t *testing.T) {
		type storeConfig struct {
			ConnURL   string        `env:"TEST_LOADER_CONN_URL"`
			Retention time.Duration `env:"TEST_LOADER_RETENTION" envDefault:"720h"`
		}
		t.Setenv("TEST_LOADER_CONN_URL", "postgres://localhost:5432/quotaguard")

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "postgres://localhost:5432/quotaguard", cfg.ConnURL)
		assert.Equal(t, 720*time.Hour, cfg.Retention)
	})

	t.Run("missing required variable", func(t *testing.T) {
		type requiredConfig struct {
			APIKey string `env:"TEST_LOADER_MISSING_KEY,required"`
		}

		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		type nilConfig struct{}

		err := config.Load[nilConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("returns cached value on repeat loads", func(t *testing.T) {
		type cachedConfig struct {
			Level string `env:"TEST_LOADER_LEVEL" envDefault:"info"`
		}
		t.Setenv("TEST_LOADER_LEVEL", "debug")

		var first cachedConfig
		require.NoError(t, config.Load(&first))
		require.Equal(t, "debug", first.Level)

		// Environment changes after the first load are not observed.
		t.Setenv("TEST_LOADER_LEVEL", "error")
		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "debug", second.Level)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		type mustConfig struct {
			Token string `env:"TEST_LOADER_MUST_TOKEN,required"`
		}

		assert.Panics(t, func() {
			var cfg mustConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("loads valid config", func(t *testing.T) {
		type mustOKConfig struct {
			Name string `env:"TEST_LOADER_MUST_NAME" envDefault:"quotaguard"`
		}

		var cfg mustOKConfig
		assert.NotPanics(t, func() {
			config.MustLoad(&cfg)
		})
		assert.Equal(t, "quotaguard", cfg.Name)
	})
}
