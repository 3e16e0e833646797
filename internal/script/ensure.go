package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

// TopicPlaceholder is replaced with the topic when rendering a prompt template.
const TopicPlaceholder = "{topic}"

// Generator produces a script payload for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RenderPrompt substitutes topic into template. Templates without the
// placeholder get the topic appended on its own line.
func RenderPrompt(template, topic string) string {
	topic = strings.TrimSpace(topic)
	if strings.Contains(template, TopicPlaceholder) {
		return strings.ReplaceAll(template, TopicPlaceholder, topic)
	}
	return strings.TrimRight(template, "\n") + "\n\n" + topic
}

// LoadPromptTemplate reads the prompt template file.
func LoadPromptTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrConfiguration, "script", "prompt", fmt.Sprintf("prompt template %s not found", path), err)
		}
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", services.Wrap(services.ErrConfiguration, "script", "prompt", fmt.Sprintf("prompt template %s is empty", path), nil)
	}
	return string(data), nil
}

// Ensure returns the project's script, generating and persisting it only
// when projectDir has no script.json yet. An existing file is never
// rewritten.
func Ensure(ctx context.Context, gen Generator, promptTemplate, topic, projectDir string) (*Script, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat script: %w", err)
	}

	if gen == nil {
		return nil, services.Wrap(services.ErrConfiguration, "script", "generate", "no generator configured", nil)
	}
	content, err := gen.Generate(ctx, RenderPrompt(promptTemplate, topic))
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(content)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(parsed.Document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	parsed.Path = path
	return parsed, nil
}
