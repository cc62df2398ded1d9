// Package config loads CLI and simulator configuration from defaults,
// an optional config file, environment variables, and runtime
// overrides, in increasing order of precedence.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	Endpoint string         `mapstructure:"endpoint"`
	Project  string         `mapstructure:"project"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Wait     WaitConfig     `mapstructure:"wait"`
	Simulate SimulateConfig `mapstructure:"simulate"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// WaitConfig carries polling defaults applied when a manifest or flag
// does not override them.
type WaitConfig struct {
	StatusInterval  time.Duration `mapstructure:"status_interval"`
	MessageInterval time.Duration `mapstructure:"message_interval"`
	Budget          time.Duration `mapstructure:"budget"`
}

// SimulateConfig configures the local simulator server.
type SimulateConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load resolves configuration. Optional override maps are applied last
// and take precedence over file and environment values.
func Load(_ context.Context, overrides ...map[string]any) (*Config, error) {
	v := viper.New()

	v.SetDefault("endpoint", "")
	v.SetDefault("project", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("wait.status_interval", "2s")
	v.SetDefault("wait.message_interval", "2s")
	v.SetDefault("wait.budget", "0s")
	v.SetDefault("simulate.host", "localhost")
	v.SetDefault("simulate.port", 8080)

	v.SetConfigName("jobwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/jobwatch")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("JOBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("merge overrides: %w", err)
		}
	}

	var cfg Config
	decode := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, decode); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
