package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizePexels()
	c.normalizeSpeech()
	c.normalizeMedia()
	if err := c.normalizeMusic(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PromptFile) == "" {
		c.Paths.PromptFile = defaultPromptFile
	}
	if c.Paths.PromptFile, err = expandPath(c.Paths.PromptFile); err != nil {
		return fmt.Errorf("paths.prompt_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = defaultLLMMaxOutputTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizePexels() {
	c.Pexels.APIKey = strings.TrimSpace(c.Pexels.APIKey)
	if c.Pexels.APIKey == "" {
		if value, ok := os.LookupEnv("PEXELS_API_KEY"); ok {
			c.Pexels.APIKey = strings.TrimSpace(value)
		}
	}
	c.Pexels.BaseURL = strings.TrimRight(strings.TrimSpace(c.Pexels.BaseURL), "/")
	if c.Pexels.BaseURL == "" {
		c.Pexels.BaseURL = defaultPexelsBaseURL
	}
	c.Pexels.StyleSuffix = strings.TrimSpace(c.Pexels.StyleSuffix)
	c.Pexels.Orientation = strings.ToLower(strings.TrimSpace(c.Pexels.Orientation))
	if c.Pexels.PerPage <= 0 {
		c.Pexels.PerPage = defaultPexelsPerPage
	}
	if c.Pexels.MaxPage <= 0 {
		c.Pexels.MaxPage = defaultPexelsMaxPage
	}
	if c.Pexels.MinWidth <= 0 {
		c.Pexels.MinWidth = defaultPexelsMinWidth
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.Binary = strings.TrimSpace(c.Speech.Binary)
	if c.Speech.Binary == "" {
		c.Speech.Binary = defaultSpeechBinary
	}
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	if c.Speech.Voice == "" {
		c.Speech.Voice = defaultSpeechVoice
	}
	c.Speech.Rate = strings.TrimSpace(c.Speech.Rate)
	c.Speech.Volume = strings.TrimSpace(c.Speech.Volume)
	c.Speech.Pitch = strings.TrimSpace(c.Speech.Pitch)
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.VideoCodec = strings.TrimSpace(c.Media.VideoCodec)
	if c.Media.VideoCodec == "" {
		c.Media.VideoCodec = defaultVideoCodec
	}
	c.Media.AudioCodec = strings.TrimSpace(c.Media.AudioCodec)
	if c.Media.AudioCodec == "" {
		c.Media.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeMusic() error {
	var err error
	if strings.TrimSpace(c.Music.Dir) == "" {
		c.Music.Dir = defaultMusicDir
	}
	if c.Music.Dir, err = expandPath(c.Music.Dir); err != nil {
		return fmt.Errorf("music.dir: %w", err)
	}
	if c.Music.LeadInSeconds < 0 {
		c.Music.LeadInSeconds = 0
	}
	if len(c.Music.Tracks) > 0 {
		tracks := make(map[string]float64, len(c.Music.Tracks))
		for name, gain := range c.Music.Tracks {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			tracks[trimmed] = gain
		}
		c.Music.Tracks = tracks
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.BatchSize <= 0 {
		c.Workflow.BatchSize = defaultBatchSize
	}
	if c.Workflow.MaxAttempts <= 0 {
		c.Workflow.MaxAttempts = defaultMaxAttempts
	}
	if c.Workflow.HTTPTimeoutSeconds <= 0 {
		c.Workflow.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
	if c.Workflow.ProcessTimeoutSeconds <= 0 {
		c.Workflow.ProcessTimeoutSeconds = defaultProcessTimeoutSeconds
	}
	c.Workflow.Schedule = strings.TrimSpace(c.Workflow.Schedule)
	if c.Workflow.Schedule == "" {
		c.Workflow.Schedule = defaultSchedule
	}
	if c.Workflow.MinFreeGiB < 0 {
		c.Workflow.MinFreeGiB = 0
	}
	if c.Workflow.StaleWorkDays <= 0 {
		c.Workflow.StaleWorkDays = defaultStaleWorkDays
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("REELSMITH_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
