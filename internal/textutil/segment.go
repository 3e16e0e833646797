package textutil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// SegmentFileName returns the NN_<clean>.<ext> name for a segment.
func SegmentFileName(index int, name, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%02d_%s.%s", index, CleanName(name), ext)
}

// ParseSegmentIndex extracts the segment index from an NN_<clean>.<ext> file
// name. The prefix must be at least two digits followed by an underscore.
func ParseSegmentIndex(fileName string) (int, bool) {
	base := filepath.Base(fileName)
	prefix, _, found := strings.Cut(base, "_")
	if !found || len(prefix) < 2 {
		return 0, false
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return index, true
}
