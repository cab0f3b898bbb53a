// Package config loads the two configuration surfaces the judge needs: its
// own operator knobs (this file), and the problem-domain compiler table and
// testcase metadata (problemconfig.go).
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// OperatorConfig is the judge's own runtime configuration: concurrency caps,
// default limits, and the dashboard bind address. Grounded on the teacher's
// Config struct (api/internal/config/config.go) — same Load/validate shape,
// same viper.SetDefault/SetEnvPrefix wiring, narrowed to the knobs this judge
// actually has.
type OperatorConfig struct {
	LogLevel     string `mapstructure:"log_level"`
	ContestHouse string `mapstructure:"contest_house"`

	MaxConcurrentJobs  int     `mapstructure:"max_concurrent_jobs"`
	DefaultTimeLimit   float64 `mapstructure:"default_time_limit"`
	DefaultMemoryLimit int     `mapstructure:"default_memory_limit"`
	OutputCapBytes     int     `mapstructure:"output_cap_bytes"`
	PollQuantumMillis  int     `mapstructure:"poll_quantum_millis"`

	DashboardAddr string `mapstructure:"dashboard_addr"`
}

// Load reads operator configuration from CPJUDGE_* environment variables and
// an optional cpjudge.yaml/.json/.toml file in the working directory,
// /etc/cpjudge/, or $HOME/.cpjudge/.
func Load() (*OperatorConfig, error) {
	v := viper.New()

	v.SetDefault("log_level", "INFO")
	v.SetDefault("contest_house", os.TempDir())
	v.SetDefault("max_concurrent_jobs", 4)
	v.SetDefault("default_time_limit", 1.0)
	v.SetDefault("default_memory_limit", 1024)
	v.SetDefault("output_cap_bytes", 32*1024*1024)
	v.SetDefault("poll_quantum_millis", 10)
	v.SetDefault("dashboard_addr", "")

	v.SetEnvPrefix("CPJUDGE")
	v.AutomaticEnv()

	v.SetConfigName("cpjudge")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/cpjudge/")
	v.AddConfigPath("$HOME/.cpjudge/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg OperatorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *OperatorConfig) error {
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if cfg.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("max_concurrent_jobs must be positive")
	}
	if cfg.DefaultTimeLimit <= 0 {
		return fmt.Errorf("default_time_limit must be positive")
	}
	if cfg.OutputCapBytes <= 0 {
		return fmt.Errorf("output_cap_bytes must be positive")
	}
	if cfg.PollQuantumMillis <= 0 {
		return fmt.Errorf("poll_quantum_millis must be positive")
	}
	return nil
}

// GetLogLevel returns the parsed log level, defaulting to Info on any
// unexpected value (validate already rejects invalid levels at Load time,
// so this only guards direct construction of an OperatorConfig in tests).
func (c *OperatorConfig) GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
