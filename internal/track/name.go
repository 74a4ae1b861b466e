package track

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameChars bounds a display name taken from track metadata.
	MaxNameChars = 32
	// DefaultName is used when neither metadata nor the file name give one.
	DefaultName = "track"

	ellipsis = "…"
)

// ResolveName picks the display name for a document: the first track name
// that is not blank after trimming, truncated to MaxNameChars; otherwise the
// stem of the source file; otherwise DefaultName.
func ResolveName(doc *Document) string {
	for _, t := range doc.Tracks {
		if name := strings.TrimSpace(t.Name); name != "" {
			return Truncate(name, MaxNameChars)
		}
	}
	if stem := fileStem(doc.Source); stem != "" {
		return stem
	}
	return DefaultName
}

// Truncate shortens s to at most max characters. A shortened result ends in
// a single ellipsis character that takes the place of the last one kept.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + ellipsis
}

// fileStem returns the base name without its final extension. A leading dot
// alone does not start an extension (".gpx" has stem ".gpx").
func fileStem(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base
	}
	return base[:i]
}
