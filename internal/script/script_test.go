package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

const sampleScript = `{"segmentos":[
 {"nombre":"El Inicio (1947)","texto":"Todo comenzó en Roswell.","descripcion_visual":"desert night sky"},
 {"nombre":"La Prueba","texto":"Nadie pudo explicarlo.","descripcion_visual":"old newspaper"},
 {"nombre":"Final","texto":"¿Tú qué crees?","descripcion_visual":""}
]}`

type countingGenerator struct {
	calls   int
	prompts []string
	content string
	err     error
}

func (g *countingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.content, g.err
}

func TestEnsureGeneratesOnceAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	gen := &countingGenerator{content: sampleScript}

	first, err := Ensure(context.Background(), gen, "Guion sobre {topic}.", "El caso Roswell", dir)
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
	if gen.prompts[0] != "Guion sobre El caso Roswell." {
		t.Fatalf("unexpected prompt %q", gen.prompts[0])
	}
	path := filepath.Join(dir, FileName)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	infoBefore, _ := os.Stat(path)

	gen.content = `{"segmentos":[{"nombre":"otro","texto":"otro","descripcion_visual":"otro"}]}`
	second, err := Ensure(context.Background(), gen, "Guion sobre {topic}.", "El caso Roswell", dir)
	if err != nil {
		t.Fatalf("second Ensure returned error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected generator not to be called again, got %d calls", gen.calls)
	}
	after, _ := os.ReadFile(path)
	infoAfter, _ := os.Stat(path)
	if string(before) != string(after) || !infoBefore.ModTime().Equal(infoAfter.ModTime()) {
		t.Fatal("expected script.json to be left untouched")
	}
	if len(first.Segments()) != 3 || len(second.Segments()) != 3 {
		t.Fatalf("unexpected segment counts %d/%d", len(first.Segments()), len(second.Segments()))
	}
}

func TestSegmentsOrderingAndNames(t *testing.T) {
	parsed, err := Parse(sampleScript)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	segments := parsed.Segments()
	if segments[0].Index != 0 || segments[2].Index != 2 {
		t.Fatalf("unexpected indexes: %+v", segments)
	}
	if segments[0].CleanName != "El_Inicio_1947" {
		t.Fatalf("unexpected clean name %q", segments[0].CleanName)
	}
	if segments[0].AudioFileName() != "00_El_Inicio_1947.mp3" || segments[1].VideoFileName() != "01_La_Prueba.mp4" {
		t.Fatalf("unexpected file names %q %q", segments[0].AudioFileName(), segments[1].VideoFileName())
	}
	if segments[2].VisualQuery != "Final" {
		t.Fatalf("expected blank visual description to fall back to the name, got %q", segments[2].VisualQuery)
	}
}

func TestEnsureRejectsInvalidScripts(t *testing.T) {
	tests := map[string]string{
		"not json":     "lo siento, no puedo",
		"no segments":  `{"segmentos":[]}`,
		"missing text": `{"segmentos":[{"nombre":"a","texto":" ","descripcion_visual":"b"}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := Ensure(context.Background(), &countingGenerator{content: content}, "{topic}", "x", dir)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, statErr := os.Stat(filepath.Join(dir, FileName)); !os.IsNotExist(statErr) {
				t.Fatal("expected no script file after rejection")
			}
		})
	}
}

func TestEnsurePropagatesGeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := Ensure(context.Background(), &countingGenerator{err: boom}, "{topic}", "x", t.TempDir())
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestRenderPrompt(t *testing.T) {
	if got := RenderPrompt("Tema: {topic}. Otra vez: {topic}", " ovnis "); got != "Tema: ovnis. Otra vez: ovnis" {
		t.Fatalf("unexpected render %q", got)
	}
	if got := RenderPrompt("Escribe un guion.\n", "ovnis"); !strings.HasSuffix(got, "\n\novnis") {
		t.Fatalf("expected topic appended, got %q", got)
	}
}

func TestLoadPromptTemplate(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadPromptTemplate(filepath.Join(dir, "missing.txt")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("Guion: {topic}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadPromptTemplate(path)
	if err != nil || got != "Guion: {topic}" {
		t.Fatalf("unexpected template %q (%v)", got, err)
	}
}
