// Package config provides the immutable run configuration for the pipeline.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"reviewlens/internal/common"
)

// LLM holds the settings for the external inference service.
type LLM struct {
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxNegSamples int
	Enabled       bool
}

// Training holds the settings for model selection and training.
type Training struct {
	Seed      int64
	TestRatio float64
	MaxFolds  int
	Workers   int
}

// Config is the immutable configuration passed into the pipeline stages at
// construction. It is built once from viper, validated, and never mutated.
type Config struct {
	InputPath     string
	OutputDir     string
	StoragePath   string // Optional SQLite artifacts database; empty disables it
	LemmaDictPath string // Optional Dutch lemma dictionary; empty selects the stemmer
	LogLevel      slog.Level
	LogFormat     string
	LLM           LLM
	Training      Training
}

// FromViper assembles a Config from the current viper state.
func FromViper() Config {
	return Config{
		InputPath:     ExpandPath(viper.GetString("input")),
		OutputDir:     ExpandPath(viper.GetString("output_dir")),
		StoragePath:   ExpandPath(viper.GetString("storage.path")),
		LemmaDictPath: ExpandPath(viper.GetString("nlp.lemma_dict")),
		LogLevel:      parseLogLevel(viper.GetString("logging.level")),
		LogFormat:     viper.GetString("logging.format"),
		LLM: LLM{
			Enabled:       viper.GetBool("llm.enabled"),
			BaseURL:       viper.GetString("llm.base_url"),
			Model:         viper.GetString("llm.model"),
			Timeout:       viper.GetDuration("llm.timeout"),
			MaxNegSamples: viper.GetInt("llm.max_negative_samples"),
		},
		Training: Training{
			Seed:      viper.GetInt64("training.seed"),
			TestRatio: viper.GetFloat64("training.test_ratio"),
			MaxFolds:  viper.GetInt("training.max_folds"),
			Workers:   viper.GetInt("training.workers"),
		},
	}
}

// SetDefaults registers the default configuration values with viper.
func SetDefaults() {
	viper.SetDefault("output_dir", "outputs")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("llm.enabled", true)
	viper.SetDefault("llm.base_url", "http://localhost:11434")
	viper.SetDefault("llm.model", "gemma3:latest")
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("llm.max_negative_samples", 100)
	viper.SetDefault("training.seed", 42)
	viper.SetDefault("training.test_ratio", 0.2)
	viper.SetDefault("training.max_folds", 3)
	viper.SetDefault("training.workers", 4)
}

// Validate rejects invalid configuration before any stage runs.
// Configuration errors are fatal at startup, never mid-pipeline.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return common.NewUserError("input CSV path is required", common.ErrMissingConfig)
	}
	if c.OutputDir == "" {
		return common.NewUserError("output directory is required", common.ErrMissingConfig)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return common.NewUserError(
			fmt.Sprintf("unknown log format %q (expected console or json)", c.LogFormat),
			common.ErrInvalidConfig)
	}
	if c.LLM.Timeout <= 0 {
		return common.NewUserError("llm.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.LLM.MaxNegSamples < 0 {
		return common.NewUserError("llm.max_negative_samples must not be negative", common.ErrInvalidConfig)
	}
	if c.LLM.Enabled && c.LLM.BaseURL == "" {
		return common.NewUserError("llm.base_url is required when the LLM strategy is enabled", common.ErrMissingConfig)
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return common.NewUserError("training.test_ratio must be in (0, 1)", common.ErrInvalidConfig)
	}
	if c.Training.MaxFolds < 2 {
		return common.NewUserError("training.max_folds must be at least 2", common.ErrInvalidConfig)
	}
	if c.Training.Workers < 1 {
		return common.NewUserError("training.workers must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExpandPath expands a leading ~ and $VAR style environment variables in a
// file path. An empty path stays empty.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}
