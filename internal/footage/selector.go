package footage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/samber/lo"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/services/pexels"
)

// Source is the stock footage API used by the selector.
type Source interface {
	Search(ctx context.Context, q pexels.Query) (*pexels.SearchResponse, error)
	Download(ctx context.Context, link string, w io.Writer) (int64, error)
}

// Rendition is one downloadable encoding of a candidate.
type Rendition struct {
	Width  int
	Height int
	Link   string
}

// VideoCandidate is a search hit.
type VideoCandidate struct {
	ID         int64
	Duration   float64
	Renditions []Rendition
}

// Selection is the outcome of Select.
type Selection struct {
	Query     string
	Candidate VideoCandidate
	Rendition Rendition
	// Fallback is set when no candidate met the duration and uniqueness
	// constraints and the first result was taken instead.
	Fallback bool
}

// SelectedAsset is a downloaded footage file for one segment.
type SelectedAsset struct {
	Segment     int
	CandidateID int64
	Path        string
	Fallback    bool
	Reused      bool
}

// Settings controls search parameters.
type Settings struct {
	StyleSuffix string
	PerPage     int
	MaxPage     int
	MinWidth    int
	Orientation string
}

// Selector chooses footage for the segments of one topic run. It is not safe
// for concurrent use.
type Selector struct {
	source   Source
	settings Settings
	rng      *rand.Rand
	excluded map[int64]struct{}
	logger   *slog.Logger
}

// NewSelector constructs a selector. A nil rng is seeded randomly.
func NewSelector(source Source, settings Settings, rng *rand.Rand, logger *slog.Logger) *Selector {
	if settings.PerPage <= 0 {
		settings.PerPage = 15
	}
	if settings.MaxPage <= 0 {
		settings.MaxPage = 3
	}
	if settings.MinWidth <= 0 {
		settings.MinWidth = 1080
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{
		source:   source,
		settings: settings,
		rng:      rng,
		excluded: make(map[int64]struct{}),
		logger:   logging.NewComponentLogger(logger, "footage"),
	}
}

// Excluded reports whether id has already been selected in this run.
func (s *Selector) Excluded(id int64) bool {
	_, ok := s.excluded[id]
	return ok
}

// Exclude marks id as used so later selections skip it.
func (s *Selector) Exclude(id int64) {
	if id > 0 {
		s.excluded[id] = struct{}{}
	}
}

// Query builds the search text for a visual description.
func (s *Selector) Query(description string) string {
	description = strings.TrimSpace(description)
	suffix := strings.TrimSpace(s.settings.StyleSuffix)
	if suffix == "" {
		return description
	}
	if description == "" {
		return suffix
	}
	return description + ", " + suffix
}

// Select searches for footage covering minDuration seconds.
func (s *Selector) Select(ctx context.Context, description string, minDuration float64) (*Selection, error) {
	query := s.Query(description)
	if query == "" {
		return nil, services.Wrap(services.ErrSelectionUnavailable, "footage", "search", "empty visual description", nil)
	}
	page := s.rng.IntN(s.settings.MaxPage) + 1
	resp, err := s.source.Search(ctx, pexels.Query{
		Text:        query,
		Page:        page,
		PerPage:     s.settings.PerPage,
		Orientation: s.settings.Orientation,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrSelectionUnavailable, "footage", "search", fmt.Sprintf("query %q page %d", query, page), err)
	}
	candidates := lo.Map(resp.Videos, func(v pexels.Video, _ int) VideoCandidate {
		return toCandidate(v)
	})
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrSelectionUnavailable, "footage", "search", fmt.Sprintf("no results for %q page %d", query, page), nil)
	}

	valid := lo.Filter(candidates, func(c VideoCandidate, _ int) bool {
		return c.Duration >= minDuration && !s.Excluded(c.ID)
	})

	sel := &Selection{Query: query}
	if len(valid) > 0 {
		sel.Candidate = valid[s.rng.IntN(len(valid))]
	} else {
		sel.Candidate = candidates[0]
		sel.Fallback = true
	}

	rendition, ok := s.pickRendition(sel.Candidate.Renditions)
	if !ok {
		return nil, services.Wrap(services.ErrSelectionUnavailable, "footage", "select", fmt.Sprintf("candidate %d has no renditions", sel.Candidate.ID), nil)
	}
	sel.Rendition = rendition
	if !sel.Fallback {
		s.excluded[sel.Candidate.ID] = struct{}{}
	}
	return sel, nil
}

// pickRendition returns the first rendition at least MinWidth wide, or the
// first rendition when none is.
func (s *Selector) pickRendition(renditions []Rendition) (Rendition, bool) {
	if len(renditions) == 0 {
		return Rendition{}, false
	}
	if r, ok := lo.Find(renditions, func(r Rendition) bool { return r.Width >= s.settings.MinWidth }); ok {
		return r, true
	}
	return renditions[0], true
}

// Fetch downloads the selected rendition to dst. dst only appears once the
// download has completed.
func (s *Selector) Fetch(ctx context.Context, sel *Selection, dst string) error {
	if sel == nil || sel.Rendition.Link == "" {
		return services.Wrap(services.ErrSelectionUnavailable, "footage", "download", "no rendition selected", nil)
	}
	pr, pw := io.Pipe()
	go func() {
		_, err := s.source.Download(ctx, sel.Rendition.Link, pw)
		_ = pw.CloseWithError(err)
	}()
	written, err := fileutil.WriteReaderAtomic(dst, pr, 0o644)
	_ = pr.CloseWithError(errors.New("download aborted"))
	if err != nil {
		return services.Wrap(services.ErrSelectionUnavailable, "footage", "download", fmt.Sprintf("candidate %d", sel.Candidate.ID), err)
	}
	if written == 0 {
		_ = os.Remove(dst)
		return services.Wrap(services.ErrSelectionUnavailable, "footage", "download", fmt.Sprintf("candidate %d returned an empty body", sel.Candidate.ID), nil)
	}
	return nil
}

func toCandidate(v pexels.Video) VideoCandidate {
	return VideoCandidate{
		ID:       v.ID,
		Duration: v.Duration,
		Renditions: lo.Map(v.VideoFiles, func(f pexels.VideoFile, _ int) Rendition {
			return Rendition{Width: f.Width, Height: f.Height, Link: f.Link}
		}),
	}
}
