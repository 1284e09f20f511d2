package grammar

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/looplab/fsm"

	"github.com/jonathan/appdata-validator/internal/types"
)

// xmlNamespace is the namespace encoding/xml resolves the xml: prefix to.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Finding is a problem detected while opening a tag. Positions are attached
// by the caller.
type Finding struct {
	Kind    types.ProblemKind
	Message string
}

// OpenEvent describes an accepted open tag.
type OpenEvent struct {
	Tag        string
	Section    Section
	Translated bool
	Lang       string

	// IDKind is set for <id>.
	IDKind IDKind

	// Declared screenshot size, zero when absent.
	Width   int
	Height  int
	Default bool

	Findings []Finding
}

// TransitionError is returned when a tag is not legal from the current section.
type TransitionError struct {
	Tag   string
	From  string
	Close bool

	// Allowed lists the tags that may be opened from From.
	Allowed []string
}

func (e *TransitionError) Error() string {
	if e.Close {
		return fmt.Sprintf("end tag <%s> not allowed from section <%s>", e.Tag, e.From)
	}
	return fmt.Sprintf("start tag <%s> not allowed from section <%s>", e.Tag, e.From)
}

// MachineOptions tunes generation-independent grammar behavior.
type MachineOptions struct {
	// FlagDeprecated records a problem whenever a deprecated tag is used.
	FlagDeprecated bool
}

// Machine follows one document through the grammar. Exactly one section is
// open at a time. A Machine is not safe for concurrent use.
type Machine struct {
	gen  *Generation
	opts MachineOptions
	fsm  *fsm.FSM

	roots          int
	sawDefaultShot bool
}

func openEvent(tag string) string  { return "open:" + tag }
func closeEvent(tag string) string { return "close:" + tag }

// NewMachine compiles gen into a state machine positioned at the root.
func NewMachine(gen *Generation, opts MachineOptions) *Machine {
	events := make(fsm.Events, 0, 2*len(gen.Transitions))
	for _, t := range gen.Transitions {
		events = append(events,
			fsm.EventDesc{Name: openEvent(t.Tag), Src: []string{t.From.String()}, Dst: t.To.String()},
			fsm.EventDesc{Name: closeEvent(t.Tag), Src: []string{t.To.String()}, Dst: t.From.String()},
		)
	}
	return &Machine{
		gen:  gen,
		opts: opts,
		fsm:  fsm.NewFSM(SectionRoot.String(), events, fsm.Callbacks{}),
	}
}

// Generation returns the grammar the machine was built from.
func (m *Machine) Generation() *Generation { return m.gen }

// Current returns the open section.
func (m *Machine) Current() Section {
	return parseSection(m.fsm.Current())
}

// Open advances into tag, checking its attributes. A *TransitionError means
// the tag is not legal here and the machine did not move.
func (m *Machine) Open(ctx context.Context, tag string, attrs []xml.Attr) (*OpenEvent, error) {
	from := m.Current()
	to, ok := m.gen.Child(from, tag)
	if !ok || !m.fsm.Can(openEvent(tag)) {
		return nil, &TransitionError{Tag: tag, From: m.fromName(from), Allowed: m.gen.ChildTags(from)}
	}

	ev := &OpenEvent{Tag: tag, Section: to}
	if lang, found := langAttr(attrs); found {
		ev.Translated = true
		ev.Lang = lang
		if lang == "C" {
			ev.add(types.KindAttributeInvalid, "xml:lang should never be 'C'")
		}
	}
	if replacement, deprecated := m.gen.Deprecated[tag]; deprecated && m.opts.FlagDeprecated {
		ev.add(types.KindAttributeInvalid, fmt.Sprintf("<%s> is deprecated, use <%s> instead", tag, replacement))
	}

	switch to {
	case SectionApplication:
		m.roots++
		if m.roots > 1 {
			ev.add(types.KindMarkupInvalid, fmt.Sprintf("<%s> used more than once", tag))
		}
	case SectionID:
		m.checkID(ev, attrs)
	case SectionURL:
		m.checkURL(ev, attrs)
	case SectionScreenshot:
		m.checkScreenshot(ev, attrs)
	}

	if err := m.fsm.Event(ctx, openEvent(tag)); err != nil {
		return nil, fmt.Errorf("grammar transition into <%s>: %w", tag, err)
	}
	return ev, nil
}

// Close leaves the open section. The tag must name it exactly.
func (m *Machine) Close(ctx context.Context, tag string) (Section, error) {
	cur := m.Current()
	if cur == SectionRoot || !m.fsm.Can(closeEvent(tag)) {
		return cur, &TransitionError{Tag: tag, From: m.fromName(cur), Close: true, Allowed: m.gen.ChildTags(cur)}
	}
	if err := m.fsm.Event(ctx, closeEvent(tag)); err != nil {
		return cur, fmt.Errorf("grammar transition out of <%s>: %w", tag, err)
	}
	return cur, nil
}

func (m *Machine) fromName(s Section) string {
	if s == SectionRoot {
		return "(root)"
	}
	return m.gen.TagName(s)
}

func (m *Machine) checkID(ev *OpenEvent, attrs []xml.Attr) {
	value, ok := attr(attrs, "type")
	if !ok {
		ev.IDKind = IDKindDesktop
		ev.add(types.KindAttributeMissing, "no type attribute in <id>")
		return
	}
	ev.IDKind = ParseIDKind(value)
	if ev.IDKind == IDKindUnknown {
		ev.add(types.KindAttributeInvalid, "<id> has invalid type attribute")
	}
}

func (m *Machine) checkURL(ev *OpenEvent, attrs []xml.Attr) {
	value, ok := attr(attrs, "type")
	if !ok {
		ev.add(types.KindAttributeMissing, "no type attribute in <url>")
		return
	}
	if value != "homepage" {
		ev.add(types.KindAttributeInvalid, "<url> has invalid type attribute")
	}
}

func (m *Machine) checkScreenshot(ev *OpenEvent, attrs []xml.Attr) {
	if v, ok := attr(attrs, "width"); ok {
		ev.Width = atoi(v)
	}
	if v, ok := attr(attrs, "height"); ok {
		ev.Height = atoi(v)
	}
	kind, ok := attr(attrs, "type")
	if !ok {
		return
	}
	if kind != "default" {
		ev.add(types.KindAttributeInvalid, "<screenshot> has unknown type")
		return
	}
	ev.Default = true
	if m.sawDefaultShot {
		ev.add(types.KindMarkupInvalid, "<screenshot> has more than one default")
	}
	m.sawDefaultShot = true
}

func (ev *OpenEvent) add(kind types.ProblemKind, msg string) {
	ev.Findings = append(ev.Findings, Finding{Kind: kind, Message: msg})
}

func attr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func langAttr(attrs []xml.Attr) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == "lang" && (a.Name.Space == "xml" || a.Name.Space == xmlNamespace) {
			return a.Value, true
		}
	}
	return "", false
}

// atoi parses a declared dimension; junk counts as undeclared.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
