package config

import (
	"fmt"
	"time"
)

// Config is the root cortexd configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Approval ApprovalConfig `koanf:"approval"`
	Healing  HealingConfig  `koanf:"healing"`
	Surfaces SurfacesConfig `koanf:"surfaces"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig controls the HTTP approval API.
type ServerConfig struct {
	// Enabled turns the HTTP listener on. The terminal responder works
	// without it.
	Enabled         bool     `koanf:"enabled"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// ApprovalConfig controls the approval gate.
type ApprovalConfig struct {
	Timeout Duration `koanf:"timeout"`
}

// HealingConfig controls the payload self-healing loop.
type HealingConfig struct {
	MaxRetries int `koanf:"max_retries"`
}

// SurfacesConfig holds credentials and endpoints for each connected surface.
type SurfacesConfig struct {
	Figma     FigmaConfig     `koanf:"figma"`
	GitHub    GitHubConfig    `koanf:"github"`
	Notion    NotionConfig    `koanf:"notion"`
	Slack     SlackConfig     `koanf:"slack"`
	Analytics AnalyticsConfig `koanf:"analytics"`
}

// FigmaConfig configures the Figma surface adapter.
type FigmaConfig struct {
	Token   Secret `koanf:"token"`
	BaseURL string `koanf:"base_url"`
	FileKey string `koanf:"file_key"`
}

// GitHubConfig configures the GitHub surface adapter.
type GitHubConfig struct {
	Token Secret `koanf:"token"`
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
}

// NotionConfig configures the Notion surface adapter.
type NotionConfig struct {
	Token      Secret `koanf:"token"`
	BaseURL    string `koanf:"base_url"`
	DatabaseID string `koanf:"database_id"`
}

// SlackConfig configures the Slack surface adapter.
type SlackConfig struct {
	Token   Secret `koanf:"token"`
	BaseURL string `koanf:"base_url"`
	Channel string `koanf:"channel"`
}

// AnalyticsConfig configures the analytics surface adapter.
type AnalyticsConfig struct {
	Token   Secret `koanf:"token"`
	BaseURL string `koanf:"base_url"`
}

// LoggingConfig is the subset of logging configuration that lives in the
// main config file. The logging package expands it into its own Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9090
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Approval.Timeout == 0 {
		cfg.Approval.Timeout = Duration(60 * time.Second)
	}

	if cfg.Healing.MaxRetries == 0 {
		cfg.Healing.MaxRetries = 3
	}

	if cfg.Surfaces.Figma.BaseURL == "" {
		cfg.Surfaces.Figma.BaseURL = "https://api.figma.com"
	}
	if cfg.Surfaces.Notion.BaseURL == "" {
		cfg.Surfaces.Notion.BaseURL = "https://api.notion.com"
	}
	if cfg.Surfaces.Slack.BaseURL == "" {
		cfg.Surfaces.Slack.BaseURL = "https://slack.com/api"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return fmt.Errorf("server shutdown_timeout must be > 0")
	}
	if c.Approval.Timeout.Duration() <= 0 {
		return fmt.Errorf("approval timeout must be > 0")
	}
	if c.Healing.MaxRetries < 1 {
		return fmt.Errorf("healing max_retries must be >= 1, got %d", c.Healing.MaxRetries)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
