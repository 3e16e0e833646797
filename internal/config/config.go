package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	OutputDir  string `toml:"output_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	PromptFile string `toml:"prompt_file"`
}

// LLM contains settings for the script generation service.
type LLM struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Pexels contains settings for the stock footage search API.
type Pexels struct {
	APIKey      string `toml:"api_key"`
	BaseURL     string `toml:"base_url"`
	StyleSuffix string `toml:"style_suffix"`
	PerPage     int    `toml:"per_page"`
	MaxPage     int    `toml:"max_page"`
	MinWidth    int    `toml:"min_width"`
	Orientation string `toml:"orientation"`
}

// Speech contains settings for the edge-tts narration synthesizer.
type Speech struct {
	Binary string `toml:"binary"`
	Voice  string `toml:"voice"`
	Rate   string `toml:"rate"`
	Volume string `toml:"volume"`
	Pitch  string `toml:"pitch"`
}

// Media contains transcoder binaries and the output geometry.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	VideoCodec    string `toml:"video_codec"`
	AudioCodec    string `toml:"audio_codec"`
}

// Music contains the background music library.
type Music struct {
	Dir           string             `toml:"dir"`
	LeadInSeconds float64            `toml:"lead_in_seconds"`
	Tracks        map[string]float64 `toml:"tracks"`
}

// Workflow contains batch sizing, failure policy, and timeouts.
type Workflow struct {
	BatchSize   int `toml:"batch_size"`
	MaxAttempts int `toml:"max_attempts"`
	// RequireFullCoverage fails a topic when any segment ends up without
	// footage. When false, partially covered topics are still delivered.
	RequireFullCoverage   bool   `toml:"require_full_coverage"`
	HTTPTimeoutSeconds    int    `toml:"http_timeout_seconds"`
	ProcessTimeoutSeconds int    `toml:"process_timeout_seconds"`
	Schedule              string `toml:"schedule"`
	MinFreeGiB            int    `toml:"min_free_gib"`
	StaleWorkDays         int    `toml:"stale_work_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: work, output, state, and log directories plus the prompt template
//   - LLM: script generation endpoint
//   - Pexels: stock footage search
//   - Speech: narration synthesis
//   - Media: ffmpeg/ffprobe and output geometry
//   - Music: background track library
//   - Workflow: batch size, failure policy, timeouts, schedule
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Pexels        Pexels        `toml:"pexels"`
	Speech        Speech        `toml:"speech"`
	Media         Media         `toml:"media"`
	Music         Music         `toml:"music"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsmith/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(resolvedPath); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotEnv reads .env files from the working directory and next to the
// config file. Variables already present in the environment win.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("load %s: %w", abs, err)
		}
	}
	return nil
}

// EnsureDirectories creates required directories for batch operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the location of the topic queue database.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.StateDir, "queue.db")
}

// LockPath returns the batch lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "reelsmith.lock")
}

// TopicLogPath returns the per-topic log file for slug.
func (c *Config) TopicLogPath(slug string) string {
	return filepath.Join(c.Paths.LogDir, "topics", slug+".log")
}

// HTTPTimeout returns the per-request timeout for external HTTP calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Workflow.HTTPTimeoutSeconds) * time.Second
}

// ProcessTimeout returns the per-invocation timeout for external processes.
func (c *Config) ProcessTimeout() time.Duration {
	return time.Duration(c.Workflow.ProcessTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
