// Package config loads the engine configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/couchcryptid/flood-risk-engine/internal/analytics"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
	"github.com/couchcryptid/flood-risk-engine/internal/nowcast"
	"github.com/couchcryptid/flood-risk-engine/internal/risk"
)

// Config represents the complete engine configuration.
type Config struct {
	ServerAddr      string        `mapstructure:"server_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	KafkaBrokers     []string `mapstructure:"kafka_brokers"`
	KafkaSourceTopic string   `mapstructure:"kafka_source_topic"`
	KafkaAlertTopic  string   `mapstructure:"kafka_alert_topic"`
	KafkaGroupID     string   `mapstructure:"kafka_group_id"`

	// Cron specs for the periodic runs.
	AnalyticsSchedule string `mapstructure:"analytics_schedule"`
	NowcastSchedule   string `mapstructure:"nowcast_schedule"`

	// Trend history and its on-disk checkpoint.
	TrendWindow   int           `mapstructure:"trend_window"`
	StorePath     string        `mapstructure:"store_path"`
	SeismicWindow time.Duration `mapstructure:"seismic_window"`

	// Reservoir matcher.
	MatchThreshold float64 `mapstructure:"match_threshold"`
	MatchCacheSize int     `mapstructure:"match_cache_size"`

	Risk      risk.Config      `mapstructure:"risk"`
	Nowcast   nowcast.Config   `mapstructure:"nowcast"`
	Analytics analytics.Config `mapstructure:"analytics"`

	// Monitored locations are static configuration, not discovered from the
	// observation stream.
	Locations []domain.MonitoredLocation `mapstructure:"locations"`
}

// Load reads configuration from the given file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("RISK_ENGINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Struct defaults for the nested tuning blocks; viper overlays whatever
	// the file sets on top of these.
	cfg := Config{
		Risk:      risk.DefaultConfig(),
		Nowcast:   nowcast.DefaultConfig(),
		Analytics: analytics.DefaultConfig(),
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("shutdown_timeout", "15s")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("kafka_source_topic", "hydromet-observations")
	v.SetDefault("kafka_alert_topic", "risk-alerts")
	v.SetDefault("kafka_group_id", "flood-risk-engine")

	v.SetDefault("analytics_schedule", "*/15 * * * *")
	v.SetDefault("nowcast_schedule", "*/5 * * * *")

	v.SetDefault("trend_window", 12)
	v.SetDefault("store_path", "./data/risk-engine.db")
	v.SetDefault("seismic_window", "72h")

	v.SetDefault("match_threshold", 0.45)
	v.SetDefault("match_cache_size", 256)
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server_addr is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("kafka_brokers must contain at least one broker")
	}
	if c.KafkaSourceTopic == "" {
		return fmt.Errorf("kafka_source_topic is required")
	}
	if c.KafkaGroupID == "" {
		return fmt.Errorf("kafka_group_id is required")
	}
	if c.AnalyticsSchedule == "" || c.NowcastSchedule == "" {
		return fmt.Errorf("analytics_schedule and nowcast_schedule are required")
	}
	if c.TrendWindow < 2 {
		return fmt.Errorf("trend_window must be at least 2")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be in (0, 1]")
	}
	if c.MatchCacheSize < 0 {
		return fmt.Errorf("match_cache_size must not be negative")
	}
	if len(c.Locations) == 0 {
		return fmt.Errorf("locations must contain at least one monitored location")
	}
	for i, loc := range c.Locations {
		if loc.ID == "" || loc.Name == "" {
			return fmt.Errorf("locations[%d] needs both id and name", i)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: json, text")
	}

	if c.Nowcast.WarningThreshold >= c.Nowcast.EmergencyThreshold {
		return fmt.Errorf("nowcast.warning_threshold must be below nowcast.emergency_threshold")
	}
	if c.Risk.Bands.LowMax >= c.Risk.Bands.MediumMax {
		return fmt.Errorf("risk.bands.low_max must be below risk.bands.medium_max")
	}

	return nil
}
