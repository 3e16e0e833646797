package workflow

import (
	"net/http"

	"reelsmith/internal/config"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/media/mediatool"
	"reelsmith/internal/script"
	"reelsmith/internal/services"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/services/pexels"
	"reelsmith/internal/speech"
)

// NewDependencies wires the production collaborators from cfg: the LLM
// script generator, edge-tts, the Pexels client, ffprobe, and ffmpeg.
func NewDependencies(cfg *config.Config) (Dependencies, error) {
	if cfg == nil {
		return Dependencies{}, services.Wrap(services.ErrConfiguration, "", "dependencies", "config is nil", nil)
	}

	generator := llm.NewClient(llm.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		TimeoutSeconds:  cfg.LLM.TimeoutSeconds,
	}, llm.WithResponseSchema(llm.ResponseSchema{
		Name:        "reel_script",
		Description: "Narrated segments of a short vertical video",
		Schema:      llm.GenerateSchema[script.Document](),
	}))

	footageClient, err := pexels.New(cfg.Pexels.APIKey, cfg.Pexels.BaseURL,
		pexels.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}))
	if err != nil {
		return Dependencies{}, err
	}

	synth := speech.NewEdgeTTS(cfg.Speech.Binary, speech.Voice{
		Name:   cfg.Speech.Voice,
		Rate:   cfg.Speech.Rate,
		Volume: cfg.Speech.Volume,
		Pitch:  cfg.Speech.Pitch,
	}, speech.WithTimeout(cfg.ProcessTimeout()))

	media := mediatool.New(mediatool.Settings{
		Binary:     cfg.Media.FFmpegBinary,
		Width:      cfg.Media.Width,
		Height:     cfg.Media.Height,
		VideoCodec: cfg.Media.VideoCodec,
		AudioCodec: cfg.Media.AudioCodec,
		Timeout:    cfg.ProcessTimeout(),
	})

	return Dependencies{
		Generator:   generator,
		Synthesizer: synth,
		Footage:     footageClient,
		Prober:      ffprobe.NewProber(cfg.Media.FFprobeBinary, cfg.ProcessTimeout()),
		Media:       media,
	}, nil
}
