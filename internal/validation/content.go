package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/appdata-validator/internal/config"
	"github.com/jonathan/appdata-validator/internal/grammar"
	"github.com/jonathan/appdata-validator/internal/screenshot"
	"github.com/jonathan/appdata-validator/internal/types"
)

const (
	placeholderContact       = "someone_who_cares@upstream_project.org"
	disallowedParagraphStart = "This application"
	xmlHeader                = `<?xml version="1.0" encoding="UTF-8"?>`
	copyrightPrefix          = "<!-- Copyright"
)

// contentEngine applies the per-element and document-wide content rules.
// Only untranslated element instances are content checked.
type contentEngine struct {
	rules    config.Rules
	gen      *grammar.Generation
	doc      *Document
	out      *Collector
	verifier *screenshot.Verifier
}

func (e *contentEngine) tag(s grammar.Section) string {
	return e.gen.TagName(s)
}

// open runs the checks that fire when an element starts.
func (e *contentEngine) open(ev *grammar.OpenEvent, translated bool) {
	if ev.Translated {
		switch ev.Section {
		case grammar.SectionName, grammar.SectionSummary:
			e.doc.translations[ev.Section]++
		case grammar.SectionDescription, grammar.SectionParagraph:
			e.doc.translations[grammar.SectionDescription]++
		}
	}
	if translated {
		return
	}

	switch ev.Section {
	case grammar.SectionParagraph:
		e.flushShortParagraph()
	case grammar.SectionList:
		if e.doc.paragraphs < 1 {
			e.out.Add(types.KindStyleIncorrect, "<ul> cannot start a description")
		}
		if e.doc.paraCharsBeforeList != 0 && e.doc.paraCharsBeforeList < e.rules.LengthParaBeforeList {
			e.out.Add(types.KindStyleIncorrect, "Not enough <p> content before <ul>")
		}
		// a short paragraph may introduce a list
		e.doc.previousParaShort = false
		e.doc.paraCharsBeforeList = 0
	}
}

// close runs the checks on the trimmed text of an element that just ended.
func (e *contentEngine) close(ctx context.Context, ev *grammar.OpenEvent, translated bool, raw string) {
	if translated {
		return
	}
	text := strings.TrimSpace(raw)

	switch ev.Section {
	case grammar.SectionID:
		if !e.singular(ev.Section, text) {
			return
		}
		e.doc.IDKind = ev.IDKind
		if !idMatchesKind(text, ev.IDKind) {
			e.out.Add(types.KindMarkupInvalid, "<id> does not have correct extension for kind")
		}
	case grammar.SectionLicense:
		if !e.singular(ev.Section, text) {
			return
		}
		if !e.rules.LicenseAccepted(text) {
			e.out.Add(types.KindTagInvalid, fmt.Sprintf("<%s> is not valid", e.tag(ev.Section)))
		}
	case grammar.SectionURL:
		if !e.singular(ev.Section, text) {
			return
		}
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			e.out.Add(types.KindTagInvalid, "<url> does not start with 'http://'")
		}
	case grammar.SectionUpdateContact:
		if !e.singular(ev.Section, text) {
			return
		}
		if text == placeholderContact {
			e.out.Add(types.KindTagInvalid, "<updatecontact> is still set to a dummy value")
		}
		if textLength(text) < e.rules.LengthUpdateContactMin {
			e.out.Add(types.KindStyleIncorrect, "<updatecontact> is too short")
		}
	case grammar.SectionProjectGroup:
		e.singular(ev.Section, text)
	case grammar.SectionName:
		if !e.singular(ev.Section, text) {
			return
		}
		e.checkLength("name", text, e.rules.LengthNameMin, e.rules.LengthNameMax)
		if hasFullStopEnding(text) {
			e.out.Add(types.KindStyleIncorrect, "<name> cannot end in '.'")
		}
	case grammar.SectionSummary:
		if !e.singular(ev.Section, text) {
			return
		}
		e.checkLength("summary", text, e.rules.LengthSummaryMin, e.rules.LengthSummaryMax)
		if hasFullStopEnding(text) {
			e.out.Add(types.KindStyleIncorrect, "<summary> cannot end in '.'")
		}
	case grammar.SectionParagraph:
		e.checkParagraph(text)
	case grammar.SectionListItem:
		e.checkLength("li", text, e.rules.LengthListItemMin, e.rules.LengthListItemMax)
		if hasFullStopEnding(text) {
			e.out.Add(types.KindStyleIncorrect, "<li> cannot end in '.'")
		}
	case grammar.SectionDescription:
		e.flushShortParagraph()
	case grammar.SectionScreenshot:
		e.checkScreenshot(ctx, ev, text)
	}
}

// singular records the first value of a field that may appear once. A
// repeat is reported and must not be content checked.
func (e *contentEngine) singular(s grammar.Section, value string) bool {
	if e.doc.setField(s, value) {
		return true
	}
	e.out.Add(types.KindTagDuplicated, fmt.Sprintf("<%s> is duplicated", e.tag(s)))
	return false
}

func (e *contentEngine) checkLength(tag, text string, min, max int) {
	n := textLength(text)
	if n < min {
		e.out.Add(types.KindStyleIncorrect, fmt.Sprintf("<%s> is too short", tag))
	}
	if n > max {
		e.out.Add(types.KindStyleIncorrect, fmt.Sprintf("<%s> is too long", tag))
	}
}

func (e *contentEngine) checkParagraph(text string) {
	n := textLength(text)

	// reported later unless a list follows
	if n < e.rules.LengthParaMin {
		e.doc.previousParaShort = true
	}
	if n > e.rules.LengthParaMax {
		e.out.Add(types.KindStyleIncorrect, "<p> is too long")
	}
	if strings.HasPrefix(text, disallowedParagraphStart) {
		e.out.Add(types.KindStyleIncorrect, fmt.Sprintf("<p> should not start with '%s'", disallowedParagraphStart))
	}
	if !hasSentenceEnding(text) {
		e.out.Add(types.KindStyleIncorrect, "<p> does not end in '.|:|!'")
	}
	e.doc.paragraphs++
	e.doc.paraCharsBeforeList += n
}

func (e *contentEngine) flushShortParagraph() {
	if e.doc.previousParaShort {
		e.out.Add(types.KindStyleIncorrect, "<p> is too short")
	}
	e.doc.previousParaShort = false
}

func (e *contentEngine) checkScreenshot(ctx context.Context, ev *grammar.OpenEvent, url string) {
	if url == "" {
		e.out.Add(types.KindValueMissing, "<screenshot> has no content")
		return
	}
	if e.doc.hasScreenshot(url) {
		e.out.Add(types.KindDuplicateData, "<screenshot> has duplicated data")
		return
	}
	declared := screenshot.Declared{Width: ev.Width, Height: ev.Height}
	if !e.verifier.Verify(ctx, url, declared, e.out) {
		return
	}
	e.doc.Screenshots = append(e.doc.Screenshots, Screenshot{URL: url, Declared: declared, Default: ev.Default})
}

// header inspects a processing instruction, rebuilt as written.
func (e *contentEngine) header(raw string) {
	if raw == xmlHeader {
		e.doc.SeenHeader = true
	}
}

// comment inspects a comment, rebuilt as written.
func (e *contentEngine) comment(raw string) {
	if strings.HasPrefix(strings.TrimSpace(raw), copyrightPrefix) {
		e.doc.SeenCopyright = true
	}
}

// finish runs the document-wide checks once the whole stream was read.
func (e *contentEngine) finish() {
	r := e.rules
	d := e.doc

	if _, ok := d.Field(grammar.SectionID); !ok {
		e.out.Add(types.KindTagMissing, "<id> is not present")
	}
	if !d.SeenHeader {
		e.out.Add(types.KindMarkupInvalid, "<?xml> header not found")
	}
	if r.RequireCopyright && !d.SeenCopyright {
		e.out.Add(types.KindValueMissing, "<!-- Copyright [year] [name] --> is not present")
	}
	e.requirePresent(grammar.SectionUpdateContact, r.RequireContactDetails)
	e.requirePresent(grammar.SectionURL, r.RequireURL)
	if _, ok := d.Field(grammar.SectionLicense); !ok {
		e.out.Add(types.KindTagMissing, fmt.Sprintf("<%s> is not present", e.tag(grammar.SectionLicense)))
	}

	if d.paragraphs < r.NumberParaMin {
		e.out.Add(types.KindStyleIncorrect, "Not enough <p> tags for a good description")
	}
	if d.paragraphs > r.NumberParaMax {
		e.out.Add(types.KindStyleIncorrect, "Too many <p> tags for a good description")
	}
	if len(d.Screenshots) < r.NumberScreenshotsMin {
		e.out.Add(types.KindStyleIncorrect, "Not enough <screenshot> tags")
	}
	if len(d.Screenshots) > r.NumberScreenshotsMax {
		e.out.Add(types.KindStyleIncorrect, "Too many <screenshot> tags")
	}
	if len(d.Screenshots) > 1 && !d.hasDefaultScreenshot() {
		e.out.Add(types.KindMarkupInvalid, "<screenshots> has no default <screenshot>")
	}

	name, hasName := d.Field(grammar.SectionName)
	summary, hasSummary := d.Field(grammar.SectionSummary)
	if hasName && hasSummary && textLength(summary) < textLength(name) {
		e.out.Add(types.KindStyleIncorrect, "<summary> is shorter than <name>")
	}

	if r.RequireTranslations {
		if hasName && d.Translations(grammar.SectionName) == 0 {
			e.out.Add(types.KindTranslationsRequired, "<name> has no translations")
		}
		if hasSummary && d.Translations(grammar.SectionSummary) == 0 {
			e.out.Add(types.KindTranslationsRequired, "<summary> has no translations")
		}
		if d.paragraphs > 0 && d.Translations(grammar.SectionDescription) == 0 {
			e.out.Add(types.KindTranslationsRequired, "<description> has no translations")
		}
	}
}

// requirePresent reports a missing field that the generation or the rule
// configuration requires.
func (e *contentEngine) requirePresent(s grammar.Section, required bool) {
	if !required && !e.gen.IsRequired(s) {
		return
	}
	if _, ok := e.doc.Field(s); !ok {
		e.out.Add(types.KindTagMissing, fmt.Sprintf("<%s> is not present", e.tag(s)))
	}
}
