package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by ValidateCredentials so queue and config commands work
// without API keys.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePexels(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateMusic(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials ensures the API keys required by the production
// pipeline are present.
func (c *Config) ValidateCredentials() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/reelsmith/config.toml"
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'reelsmith config init')", defaultPath)
	}
	if strings.TrimSpace(c.Pexels.APIKey) == "" {
		return fmt.Errorf("pexels.api_key is required. Set PEXELS_API_KEY env var or edit %s", defaultPath)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validatePexels() error {
	switch c.Pexels.Orientation {
	case "", "portrait", "landscape", "square":
	default:
		return fmt.Errorf("pexels.orientation %q must be portrait, landscape, or square", c.Pexels.Orientation)
	}
	if c.Pexels.PerPage > 80 {
		return errors.New("pexels.per_page must be <= 80")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.Width <= 0 || c.Media.Height <= 0 {
		return errors.New("media.width and media.height must be positive")
	}
	if c.Media.Width%2 != 0 || c.Media.Height%2 != 0 {
		return errors.New("media.width and media.height must be even")
	}
	return nil
}

func (c *Config) validateMusic() error {
	for name, gain := range c.Music.Tracks {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("music.tracks: %q must be a file name, not a path", name)
		}
		if gain < 0 {
			return fmt.Errorf("music.tracks: gain for %q must be >= 0", name)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.batch_size":              c.Workflow.BatchSize,
		"workflow.max_attempts":            c.Workflow.MaxAttempts,
		"workflow.http_timeout_seconds":    c.Workflow.HTTPTimeoutSeconds,
		"workflow.process_timeout_seconds": c.Workflow.ProcessTimeoutSeconds,
		"llm.timeout_seconds":              c.LLM.TimeoutSeconds,
		"notifications.request_timeout":    c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Workflow.Schedule); err != nil {
		return fmt.Errorf("workflow.schedule: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
