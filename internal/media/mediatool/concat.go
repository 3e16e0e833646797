package mediatool

import (
	"fmt"
	"path/filepath"
	"strings"

	"reelsmith/internal/fileutil"
)

// ConcatListEntry formats one concat-demuxer line for path. The path is made
// absolute and embedded single quotes are escaped for the demuxer.
func ConcatListEntry(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return "file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n", nil
}

// WriteConcatList writes the concat-demuxer list for units, in order.
func WriteConcatList(listPath string, units []string) error {
	var b strings.Builder
	for _, unit := range units {
		line, err := ConcatListEntry(unit)
		if err != nil {
			return err
		}
		b.WriteString(line)
	}
	return fileutil.WriteFileAtomic(listPath, []byte(b.String()), 0o644)
}
