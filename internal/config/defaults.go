package config

const (
	defaultWorkDir               = "~/.local/share/reelsmith/work"
	defaultOutputDir             = "~/Videos/reelsmith"
	defaultStateDir              = "~/.local/share/reelsmith"
	defaultLogDir                = "~/.local/share/reelsmith/logs"
	defaultPromptFile            = "~/.config/reelsmith/prompt.txt"
	defaultMusicDir              = "~/.local/share/reelsmith/music"
	defaultLLMBaseURL            = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultLLMModel              = "gemini-2.5-flash"
	defaultLLMTemperature        = 0.2
	defaultLLMMaxOutputTokens    = 65536
	defaultLLMTimeoutSeconds     = 120
	defaultPexelsBaseURL         = "https://api.pexels.com"
	defaultPexelsStyleSuffix     = "dark, cinematic"
	defaultPexelsPerPage         = 15
	defaultPexelsMaxPage         = 3
	defaultPexelsMinWidth        = 1080
	defaultPexelsOrientation     = "portrait"
	defaultSpeechBinary          = "edge-tts"
	defaultSpeechVoice           = "es-MX-JorgeNeural"
	defaultSpeechRate            = "-1%"
	defaultSpeechVolume          = "+0%"
	defaultSpeechPitch           = "-30Hz"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultFrameWidth            = 1080
	defaultFrameHeight           = 1920
	defaultVideoCodec            = "libx264"
	defaultAudioCodec            = "aac"
	defaultMusicLeadInSeconds    = 10
	defaultBatchSize             = 5
	defaultMaxAttempts           = 3
	defaultHTTPTimeoutSeconds    = 60
	defaultProcessTimeoutSeconds = 1800
	defaultSchedule              = "@every 6h"
	defaultMinFreeGiB            = 2
	defaultStaleWorkDays         = 7
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
//
// The music track table is intentionally empty: tracks are declared in the
// config file or the music library manifest.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			OutputDir:  defaultOutputDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			PromptFile: defaultPromptFile,
		},
		LLM: LLM{
			BaseURL:         defaultLLMBaseURL,
			Model:           defaultLLMModel,
			Temperature:     defaultLLMTemperature,
			MaxOutputTokens: defaultLLMMaxOutputTokens,
			TimeoutSeconds:  defaultLLMTimeoutSeconds,
		},
		Pexels: Pexels{
			BaseURL:     defaultPexelsBaseURL,
			StyleSuffix: defaultPexelsStyleSuffix,
			PerPage:     defaultPexelsPerPage,
			MaxPage:     defaultPexelsMaxPage,
			MinWidth:    defaultPexelsMinWidth,
			Orientation: defaultPexelsOrientation,
		},
		Speech: Speech{
			Binary: defaultSpeechBinary,
			Voice:  defaultSpeechVoice,
			Rate:   defaultSpeechRate,
			Volume: defaultSpeechVolume,
			Pitch:  defaultSpeechPitch,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Width:         defaultFrameWidth,
			Height:        defaultFrameHeight,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
		},
		Music: Music{
			Dir:           defaultMusicDir,
			LeadInSeconds: defaultMusicLeadInSeconds,
		},
		Workflow: Workflow{
			BatchSize:             defaultBatchSize,
			MaxAttempts:           defaultMaxAttempts,
			HTTPTimeoutSeconds:    defaultHTTPTimeoutSeconds,
			ProcessTimeoutSeconds: defaultProcessTimeoutSeconds,
			Schedule:              defaultSchedule,
			MinFreeGiB:            defaultMinFreeGiB,
			StaleWorkDays:         defaultStaleWorkDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
