package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MusicManifestName is the optional per-library manifest that lives inside
// the music directory.
const MusicManifestName = "library.yaml"

type musicManifest struct {
	Tracks []struct {
		File string  `yaml:"file"`
		Gain float64 `yaml:"gain"`
	} `yaml:"tracks"`
}

// MusicLibrary returns the effective track table: entries from the music
// directory manifest overlaid by music.tracks from the config file.
func (c *Config) MusicLibrary() (map[string]float64, error) {
	tracks := make(map[string]float64)

	manifestPath := filepath.Join(c.Music.Dir, MusicManifestName)
	data, err := os.ReadFile(manifestPath)
	switch {
	case err == nil:
		var manifest musicManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("parse %s: %w", manifestPath, err)
		}
		for _, track := range manifest.Tracks {
			name := strings.TrimSpace(track.File)
			if name == "" {
				continue
			}
			if strings.ContainsAny(name, `/\`) {
				return nil, fmt.Errorf("%s: %q must be a file name, not a path", manifestPath, name)
			}
			if track.Gain < 0 {
				return nil, fmt.Errorf("%s: gain for %q must be >= 0", manifestPath, name)
			}
			tracks[name] = track.Gain
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", manifestPath, err)
	}

	for name, gain := range c.Music.Tracks {
		tracks[name] = gain
	}
	return tracks, nil
}
