package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 2*time.Second, cfg.Wait.StatusInterval)
		assert.Equal(t, 2*time.Second, cfg.Wait.MessageInterval)
		assert.Equal(t, time.Duration(0), cfg.Wait.Budget)
		assert.Equal(t, "localhost", cfg.Simulate.Host)
		assert.Equal(t, 8080, cfg.Simulate.Port)
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		overrides := map[string]any{
			"project": "acme",
			"wait": map[string]any{
				"budget": "5m",
			},
			"logging": map[string]any{
				"level": "debug",
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		assert.Equal(t, "acme", cfg.Project)
		assert.Equal(t, 5*time.Minute, cfg.Wait.Budget)
		assert.Equal(t, "debug", cfg.Logging.Level)

		// Non-overridden values keep their defaults.
		assert.Equal(t, 2*time.Second, cfg.Wait.StatusInterval)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		require.NoError(t, os.Setenv("JOBWATCH_ENDPOINT", "http://sim:9000"))
		require.NoError(t, os.Setenv("JOBWATCH_LOGGING_LEVEL", "warn"))
		defer func() {
			_ = os.Unsetenv("JOBWATCH_ENDPOINT")
			_ = os.Unsetenv("JOBWATCH_LOGGING_LEVEL")
		}()

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, "http://sim:9000", cfg.Endpoint)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})
}
