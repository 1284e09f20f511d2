package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/appdata-validator/internal/grammar"
)

func TestHasFullStopEnding(t *testing.T) {
	assert.True(t, hasFullStopEnding("Text Editor."))
	assert.False(t, hasFullStopEnding("Text Editor"))
	assert.False(t, hasFullStopEnding("0 A.D."))
	assert.False(t, hasFullStopEnding("Loading..."))
	assert.False(t, hasFullStopEnding(""))
}

func TestHasSentenceEnding(t *testing.T) {
	for _, s := range []string{"Done.", "Features:", "Wow!"} {
		assert.True(t, hasSentenceEnding(s), s)
	}
	for _, s := range []string{"", "No ending", "Question?"} {
		assert.False(t, hasSentenceEnding(s), s)
	}
}

func TestTextLength(t *testing.T) {
	assert.Equal(t, 3, textLength("abc"))
	assert.Equal(t, 3, textLength("Änö"))
	assert.Equal(t, 0, textLength(""))
}

func TestIDMatchesKind(t *testing.T) {
	tests := []struct {
		id   string
		kind grammar.IDKind
		want bool
	}{
		{"gnome-software.desktop", grammar.IDKindDesktop, true},
		{"gnome-software", grammar.IDKindDesktop, false},
		{"Cantarell.ttf", grammar.IDKindFont, true},
		{"Cantarell.otf", grammar.IDKindFont, true},
		{"Cantarell.woff", grammar.IDKindFont, false},
		{"hangul.xml", grammar.IDKindInputMethod, true},
		{"pinyin.db", grammar.IDKindInputMethod, true},
		{"gstreamer-ffmpeg", grammar.IDKindCodec, true},
		{"ffmpeg", grammar.IDKindCodec, false},
		{"anything.desktop", grammar.IDKindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, idMatchesKind(tt.id, tt.kind))
		})
	}
}
