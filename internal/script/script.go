package script

import (
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/services"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/textutil"
)

// FileName is the script file written inside each project directory.
const FileName = "script.json"

// Part is one entry of the generated script as stored on disk.
type Part struct {
	Name              string `json:"nombre" jsonschema_description:"Short title for this part of the story."`
	Text              string `json:"texto" jsonschema_description:"Narration read aloud for this part."`
	VisualDescription string `json:"descripcion_visual" jsonschema_description:"Short English stock-footage search query describing the visuals."`
}

// Document is the JSON shape the generator must produce.
type Document struct {
	Parts []Part `json:"segmentos" jsonschema_description:"Ordered parts of the narration."`
}

// Segment is one ordered unit of narration. Index is 0-based and defines the
// canonical order of every downstream file.
type Segment struct {
	Index       int
	Name        string
	Text        string
	VisualQuery string
	CleanName   string
}

// AudioFileName returns the NN_<clean>.mp3 narration file name.
func (s Segment) AudioFileName() string {
	return textutil.SegmentFileName(s.Index, s.Name, "mp3")
}

// VideoFileName returns the NN_<clean>.mp4 footage file name.
func (s Segment) VideoFileName() string {
	return textutil.SegmentFileName(s.Index, s.Name, "mp4")
}

// Script is a parsed script document.
type Script struct {
	Path     string
	Document Document
}

// Segments returns the script parts as ordered segments.
func (s *Script) Segments() []Segment {
	if s == nil {
		return nil
	}
	segments := make([]Segment, 0, len(s.Document.Parts))
	for i, part := range s.Document.Parts {
		name := strings.TrimSpace(part.Name)
		query := strings.TrimSpace(part.VisualDescription)
		if query == "" {
			query = name
		}
		segments = append(segments, Segment{
			Index:       i,
			Name:        name,
			Text:        strings.TrimSpace(part.Text),
			VisualQuery: query,
			CleanName:   textutil.CleanName(name),
		})
	}
	return segments
}

// Parse decodes and validates a script payload.
func Parse(content string) (*Script, error) {
	var doc Document
	if err := llm.DecodeLLMJSON(content, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "script", "parse", "invalid script JSON", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return &Script{Document: doc}, nil
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	parsed.Path = path
	return parsed, nil
}

func validate(doc Document) error {
	if len(doc.Parts) == 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "script has no segments", nil)
	}
	for i, part := range doc.Parts {
		if strings.TrimSpace(part.Text) == "" {
			return services.Wrap(services.ErrValidation, "script", "validate", fmt.Sprintf("segment %d has no narration text", i), nil)
		}
	}
	return nil
}
