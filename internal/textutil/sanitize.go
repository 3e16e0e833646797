package textutil

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unsafeNameReplacer drops characters that are unsafe in file names or that
// would need quoting in an ffmpeg concat list.
var unsafeNameReplacer = strings.NewReplacer(
	"(", "",
	")", "",
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"'", "",
	"<", "",
	">", "",
	"|", "",
)

// FoldDiacritics strips combining marks so accented letters map to their
// base form. Characters without a decomposition are left untouched.
func FoldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// CleanName converts a segment title into a file name stem. Surrounding
// whitespace is trimmed, inner whitespace becomes underscores, parentheses
// and filesystem-unsafe characters are removed. Returns "segment" when
// nothing usable remains.
func CleanName(name string) string {
	name = strings.TrimSpace(FoldDiacritics(name))
	if name == "" {
		return "segment"
	}
	name = unsafeNameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "segment"
	}
	return name
}

// maxSlugBytes bounds slugs so project directories stay well under NAME_MAX.
const maxSlugBytes = 80

// Slug converts a topic into a lowercase filesystem-safe token.
// Letters of any script are folded and lowercased, digits are kept,
// everything else becomes a single hyphen. When nothing usable remains, or
// the slug has to be truncated, a short hash of the topic is appended so
// distinct topics keep distinct slugs. Returns "topic" for empty input.
func Slug(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "topic"
	}
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(FoldDiacritics(raw)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "topic-" + shortHash(raw)
	}
	if len(out) <= maxSlugBytes {
		return out
	}
	suffix := "-" + shortHash(raw)
	return strings.TrimRight(truncateBytes(out, maxSlugBytes-len(suffix)), "-") + suffix
}

// truncateBytes cuts value to at most limit bytes on a rune boundary.
func truncateBytes(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	end := 0
	for i := range value {
		if i > limit {
			break
		}
		end = i
	}
	return value[:end]
}

func shortHash(value string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	return fmt.Sprintf("%08x", h.Sum32())
}
