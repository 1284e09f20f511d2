package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/appdata-validator/internal/grammar"
)

// hasFullStopEnding reports whether s ends in a single full stop. Strings
// with more than one '.' are exempt so that "0 A.D." and "..." pass.
func hasFullStopEnding(s string) bool {
	if strings.Count(s, ".") > 1 {
		return false
	}
	return strings.HasSuffix(s, ".")
}

// hasSentenceEnding reports whether s ends in '.', '!' or ':'.
func hasSentenceEnding(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', ':':
		return true
	}
	return false
}

// textLength is the length rules compare against, in characters.
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}

// idMatchesKind checks the id suffix convention of each component kind.
func idMatchesKind(id string, kind grammar.IDKind) bool {
	switch kind {
	case grammar.IDKindDesktop:
		return strings.HasSuffix(id, ".desktop")
	case grammar.IDKindFont:
		return strings.HasSuffix(id, ".ttf") || strings.HasSuffix(id, ".otf")
	case grammar.IDKindInputMethod:
		return strings.HasSuffix(id, ".xml") || strings.HasSuffix(id, ".db")
	case grammar.IDKindCodec:
		return strings.HasPrefix(id, "gstreamer")
	}
	return false
}
