package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/assembly"
	"reelsmith/internal/config"
	"reelsmith/internal/footage"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/mediatool"
	"reelsmith/internal/mixer"
	"reelsmith/internal/queue"
	"reelsmith/internal/script"
	"reelsmith/internal/services"
	"reelsmith/internal/speech"
	"reelsmith/internal/textutil"
)

const (
	audioDirName = "audio"
	videoDirName = "video"
)

// DurationProber reads media durations in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Dependencies are the external collaborators a pipeline drives.
type Dependencies struct {
	Generator   script.Generator
	Synthesizer speech.Synthesizer
	Footage     footage.Source
	Prober      DurationProber
	Media       mediatool.MediaTool
	// Rand drives footage and music choices. Nil seeds randomly per topic.
	Rand *rand.Rand
}

// Result describes one completed topic run.
type Result struct {
	Topic      string
	ProjectDir string
	Segments   int
	Audio      []speech.AudioAsset
	Footage    []footage.SelectedAsset
	Base       *assembly.BaseTrack
	Mix        *mixer.MixResult
	FinalPath  string
}

// Skipped returns the segment indexes that did not make it into the video.
func (r *Result) Skipped() []int {
	if r == nil || r.Base == nil {
		return nil
	}
	included := make(map[int]struct{}, len(r.Base.Units))
	for _, unit := range r.Base.Units {
		included[unit.Segment] = struct{}{}
	}
	var skipped []int
	for i := 0; i < r.Segments; i++ {
		if _, ok := included[i]; !ok {
			skipped = append(skipped, i)
		}
	}
	return skipped
}

// Pipeline produces one video per topic.
type Pipeline struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger
}

// NewPipeline constructs a pipeline over the given collaborators.
func NewPipeline(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// ProjectDir returns the work directory used for a topic slug.
func (p *Pipeline) ProjectDir(slug string) string {
	return filepath.Join(p.cfg.Paths.WorkDir, slug)
}

// OutputPath returns where the finished video for slug is published.
func (p *Pipeline) OutputPath(slug string) string {
	return filepath.Join(p.cfg.Paths.OutputDir, slug+".mp4")
}

// Process runs every stage for topic. Work already present in the project
// directory is reused.
func (p *Pipeline) Process(ctx context.Context, topic *queue.Topic) (*Result, error) {
	if topic == nil || strings.TrimSpace(topic.Topic) == "" {
		return nil, services.Wrap(services.ErrValidation, "", "process", "topic is empty", nil)
	}
	slug := topic.Slug
	if slug == "" {
		slug = textutil.Slug(topic.Topic)
	}
	projectDir := p.ProjectDir(slug)
	audioDir := filepath.Join(projectDir, audioDirName)
	videoDir := filepath.Join(projectDir, videoDirName)
	for _, dir := range []string{audioDir, videoDir, p.cfg.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "", "prepare", "create directory", err)
		}
	}

	logger, closeLog := p.topicLogger(slug)
	defer closeLog()
	logger = logging.WithContext(ctx, logger).With(logging.String("topic", topic.Topic))
	logger.Info("topic started", logging.String("project_dir", projectDir))

	rng := p.deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	result := &Result{Topic: topic.Topic, ProjectDir: projectDir}
	var segments []script.Segment

	err := runStage(ctx, logger, stageScript, func(ctx context.Context, log *slog.Logger) error {
		template, err := script.LoadPromptTemplate(p.cfg.Paths.PromptFile)
		if err != nil {
			return err
		}
		doc, err := script.Ensure(ctx, p.deps.Generator, template, topic.Topic, projectDir)
		if err != nil {
			return err
		}
		segments = doc.Segments()
		result.Segments = len(segments)
		log.Info("script ready", logging.Int("segments", len(segments)), logging.String("path", doc.Path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStage(ctx, logger, stageSpeech, func(ctx context.Context, log *slog.Logger) error {
		assets, err := speech.NewStage(p.deps.Synthesizer, log).Run(ctx, segments, audioDir)
		result.Audio = assets
		if err != nil {
			return err
		}
		log.Info("narration ready", logging.Int("segments", len(assets)), logging.Int("total", len(segments)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStage(ctx, logger, stageFootage, func(ctx context.Context, log *slog.Logger) error {
		selector := footage.NewSelector(p.deps.Footage, p.footageSettings(), rng, log)
		assets, err := footage.NewStage(selector, p.deps.Prober, log).Run(ctx, segments, audioDir, videoDir)
		result.Footage = assets
		if err != nil {
			return err
		}
		log.Info("footage ready", logging.Int("segments", len(assets)), logging.Int("total", len(segments)))
		if p.cfg.Workflow.RequireFullCoverage && len(assets) < len(segments) {
			return services.Wrap(services.ErrInsufficientAssets, stageFootage, "coverage",
				fmt.Sprintf("%d of %d segments have narration and footage", len(assets), len(segments)), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStage(ctx, logger, stageAssemble, func(ctx context.Context, log *slog.Logger) error {
		base, err := assembly.New(p.deps.Media, p.deps.Prober, log).Assemble(ctx, audioDir, videoDir, projectDir)
		if err != nil {
			return err
		}
		result.Base = base
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStage(ctx, logger, stageMix, func(ctx context.Context, log *slog.Logger) error {
		library, err := p.cfg.MusicLibrary()
		if err != nil {
			return &services.MusicAssetError{Reason: "load music library", Err: err}
		}
		mix, err := mixer.New(p.deps.Media, p.cfg.Music.Dir, library, p.cfg.Music.LeadInSeconds, rng, log).
			Mix(ctx, result.Base.Path, p.OutputPath(slug))
		if err != nil {
			return err
		}
		result.Mix = mix
		result.FinalPath = mix.Path
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("topic completed",
		logging.String(logging.FieldEventType, "topic_complete"),
		logging.String("final_file", result.FinalPath),
		logging.Int("segments", result.Segments),
		logging.Any("skipped_segments", result.Skipped()),
		logging.Float64("expected_duration", result.Base.ExpectedDuration),
	)
	return result, nil
}

func (p *Pipeline) footageSettings() footage.Settings {
	return footage.Settings{
		StyleSuffix: p.cfg.Pexels.StyleSuffix,
		PerPage:     p.cfg.Pexels.PerPage,
		MaxPage:     p.cfg.Pexels.MaxPage,
		MinWidth:    p.cfg.Pexels.MinWidth,
		Orientation: p.cfg.Pexels.Orientation,
	}
}

// topicLogger tees the pipeline logger into log_dir/topics/<slug>.log. When
// the file cannot be opened the shared logger is used alone.
func (p *Pipeline) topicLogger(slug string) (*slog.Logger, func()) {
	if strings.TrimSpace(p.cfg.Paths.LogDir) == "" {
		return p.logger, func() {}
	}
	path := p.cfg.TopicLogPath(slug)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logging.WarnWithContext(p.logger, "topic log unavailable", "topic_log_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "topic progress is only written to the main log"),
		)
		return p.logger, func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logging.WarnWithContext(p.logger, "topic log unavailable", "topic_log_unavailable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "topic progress is only written to the main log"),
		)
		return p.logger, func() {}
	}
	logger := logging.TeeLogger(p.logger, logging.NewJSONHandler(file, p.cfg.Logging.Level))
	return logger, func() { _ = file.Close() }
}
