// Package config provides YAML-based configuration loading for reconcli.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level reconcli configuration, loaded from reconcli.yaml.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Poll      PollConfig      `yaml:"poll"`
	DB        DBConfig        `yaml:"db"`
	Notify    NotifyConfig    `yaml:"notify"`
	Watch     WatchConfig     `yaml:"watch"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// APIConfig holds connection settings for the reconstruction API.
type APIConfig struct {
	URL        string `yaml:"url"`
	Version    string `yaml:"version"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// PollConfig controls the reconstruction status polling loop.
type PollConfig struct {
	IntervalSec        int `yaml:"interval_sec"`
	MaxTransientErrors int `yaml:"max_transient_errors"`
}

// DBConfig holds settings for the local state database.
type DBConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// NotifyConfig selects chat adapters for workflow notifications.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack notification settings.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord notification settings.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// WatchConfig controls the scene-list refresh schedule for `recon watch`.
type WatchConfig struct {
	Cron string `yaml:"cron"` // 5-field cron expression
}

// DashboardConfig holds settings for the local dashboard server.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied, used when no config
// file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// PollInterval returns the configured poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSec) * time.Second
}

// APITimeout returns the per-request HTTP timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// BaseURL returns the versioned API base URL, e.g. "http://localhost:5000/v1".
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.API.URL, "/") + "/" + c.API.Version
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.API.URL == "" {
		c.API.URL = "http://localhost:5000"
	}
	if c.API.Version == "" {
		c.API.Version = "v1"
	}
	if c.API.TimeoutSec == 0 {
		c.API.TimeoutSec = 120
	}
	if c.Poll.IntervalSec == 0 {
		c.Poll.IntervalSec = 20
	}
	if c.Poll.MaxTransientErrors == 0 {
		c.Poll.MaxTransientErrors = 5
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = "reconcli.db"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "*/5 * * * *"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.API.TimeoutSec < 0 {
		errs = append(errs, "api.timeout_sec must not be negative")
	}
	if c.Poll.IntervalSec < 1 {
		errs = append(errs, "poll.interval_sec must be at least 1")
	}
	if c.Poll.MaxTransientErrors < 1 {
		errs = append(errs, "poll.max_transient_errors must be at least 1")
	}
	switch c.DB.Driver {
	case "sqlite":
	case "mysql":
		if c.DB.Database == "" {
			errs = append(errs, "db.database is required for the mysql driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("db.driver must be sqlite or mysql, got %q", c.DB.Driver))
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.Channel == "" {
		errs = append(errs, "notify.slack.channel is required when notify.slack.bot_token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.Channel == "" {
		errs = append(errs, "notify.discord.channel is required when notify.discord.bot_token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
