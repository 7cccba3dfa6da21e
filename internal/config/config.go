// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Notion  NotionConfig  `mapstructure:"notion"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Vision  VisionConfig  `mapstructure:"vision"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// NotionConfig controls access to the recipe database.
type NotionConfig struct {
	Token          string  `mapstructure:"token"`
	DatabaseID     string  `mapstructure:"database_id"`
	MaxRetries     int     `mapstructure:"max_retries"`
	BackoffBaseMs  int     `mapstructure:"backoff_base_ms"`
	BackoffMaxMs   int     `mapstructure:"backoff_max_ms"`
	DeletePauseMs  int     `mapstructure:"delete_pause_ms"`
	AppendPauseMs  int     `mapstructure:"append_pause_ms"`
	CallsPerSecond float64 `mapstructure:"calls_per_second"`
}

// FetchConfig governs both fetch tiers.
type FetchConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	RenderTimeoutSec int    `mapstructure:"render_timeout_seconds"`
	RenderPollMs     int    `mapstructure:"render_poll_ms"`
}

// BatchConfig controls batch partitioning and pacing.
type BatchConfig struct {
	Size    int `mapstructure:"size"`
	DelayMs int `mapstructure:"delay_ms"`
}

// VisionConfig configures the multimodal inference collaborator.
type VisionConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig enables the debug metrics endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECIPESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default so AutomaticEnv-sourced values survive
	// Unmarshal.
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("fetch.user_agent", "recipesync/0.1")
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.render_timeout_seconds", 10)
	v.SetDefault("fetch.render_poll_ms", 250)
	v.SetDefault("batch.size", 5)
	v.SetDefault("batch.delay_ms", 1000)
	v.SetDefault("notion.max_retries", 3)
	v.SetDefault("notion.backoff_base_ms", 400)
	v.SetDefault("notion.backoff_max_ms", 5000)
	v.SetDefault("notion.delete_pause_ms", 350)
	v.SetDefault("notion.append_pause_ms", 500)
	v.SetDefault("notion.calls_per_second", 3)
	v.SetDefault("vision.language", "English")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Batch.Size <= 0 {
		return fmt.Errorf("batch.size must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.RenderTimeoutSec <= 0 {
		return fmt.Errorf("fetch.render_timeout_seconds must be > 0")
	}
	if c.Notion.MaxRetries <= 0 {
		return fmt.Errorf("notion.max_retries must be > 0")
	}
	return nil
}

// FetchTimeout returns the static fetch deadline.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RenderTimeout returns the headless render deadline.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Fetch.RenderTimeoutSec) * time.Second
}

// BatchDelay returns the inter-batch pause.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.Batch.DelayMs) * time.Millisecond
}
