package validation

import (
	"github.com/jonathan/appdata-validator/internal/grammar"
	"github.com/jonathan/appdata-validator/internal/screenshot"
)

// Screenshot is an accepted screenshot.
type Screenshot struct {
	URL      string
	Declared screenshot.Declared
	Default  bool
}

// Document is the state gathered from one file during a single pass.
type Document struct {
	IDKind grammar.IDKind

	// first untranslated value of each singular field
	fields map[grammar.Section]string

	Screenshots []Screenshot

	translations map[grammar.Section]int

	SeenHeader    bool
	SeenCopyright bool

	paragraphs          int
	previousParaShort   bool
	paraCharsBeforeList int
}

func newDocument() *Document {
	return &Document{
		fields:       make(map[grammar.Section]string),
		translations: make(map[grammar.Section]int),
	}
}

// Field returns the first untranslated value recorded for a singular field.
func (d *Document) Field(s grammar.Section) (string, bool) {
	v, ok := d.fields[s]
	return v, ok
}

// setField stores the value unless one is already present, in which case it
// reports false.
func (d *Document) setField(s grammar.Section, value string) bool {
	if _, ok := d.fields[s]; ok {
		return false
	}
	d.fields[s] = value
	return true
}

// Translations returns how many translated instances of s were seen.
// Only name, summary and description are counted.
func (d *Document) Translations(s grammar.Section) int {
	return d.translations[s]
}

// Paragraphs returns the number of untranslated description paragraphs.
func (d *Document) Paragraphs() int { return d.paragraphs }

func (d *Document) hasScreenshot(url string) bool {
	for _, s := range d.Screenshots {
		if s.URL == url {
			return true
		}
	}
	return false
}

// hasDefaultScreenshot reports whether an accepted screenshot is the default.
func (d *Document) hasDefaultScreenshot() bool {
	for _, s := range d.Screenshots {
		if s.Default {
			return true
		}
	}
	return false
}
