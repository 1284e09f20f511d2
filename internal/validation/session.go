package validation

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/appdata-validator/internal/config"
	"github.com/jonathan/appdata-validator/internal/grammar"
	"github.com/jonathan/appdata-validator/internal/screenshot"
	"github.com/jonathan/appdata-validator/internal/types"
)

// Options provides optional parameters for a validation pass.
type Options struct {
	// LogicalName replaces the on-disk filename for the extension check.
	LogicalName string

	// Logger receives debug events for parse events and problems.
	// Nil disables logging.
	Logger *zerolog.Logger

	// Verifier overrides the screenshot verifier built from the rules.
	Verifier *screenshot.Verifier
}

// frame is one open element.
type frame struct {
	event      *grammar.OpenEvent
	translated bool
	text       strings.Builder
}

// Session validates a single document. A Session is used for one pass and
// then discarded; nothing is shared with other sessions except the rules.
type Session struct {
	rules     config.Rules
	filename  string
	logger    zerolog.Logger
	machine   *grammar.Machine
	collector *Collector
	engine    *contentEngine
	stack     []*frame

	sawElement bool
}

// NewSession prepares a pass over the document called filename.
func NewSession(rules config.Rules, filename string, opts *Options) (*Session, error) {
	if opts == nil {
		opts = &Options{}
	}
	gen, err := grammar.Lookup(rules.Generation)
	if err != nil {
		return nil, &Error{Message: "cannot select grammar", Cause: err}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("file", filename).Logger()
	}

	verifier := opts.Verifier
	if verifier == nil {
		verifier = screenshot.NewVerifier(rules, screenshot.WithLogger(logger))
	}

	name := filename
	if opts.LogicalName != "" {
		name = opts.LogicalName
	}

	collector := NewCollector(nil, logger)
	return &Session{
		rules:     rules,
		filename:  name,
		logger:    logger,
		machine:   grammar.NewMachine(gen, grammar.MachineOptions{FlagDeprecated: rules.DeprecatedFailure}),
		collector: collector,
		engine: &contentEngine{
			rules:    rules,
			gen:      gen,
			doc:      newDocument(),
			out:      collector,
			verifier: verifier,
		},
	}, nil
}

// Document returns the state gathered so far.
func (s *Session) Document() *Document { return s.engine.doc }

// Run reads the whole document and returns the recorded problems in order.
// The returned error is only set when the context is cancelled; every
// document defect is a problem.
func (s *Session) Run(ctx context.Context, r io.Reader) ([]types.Problem, error) {
	suffix := s.rules.FilenameSuffix
	if suffix == "" {
		suffix = config.DefaultFilenameSuffix
	}
	if !strings.HasSuffix(s.filename, suffix) {
		s.collector.Add(types.KindFilenameInvalid, fmt.Sprintf("incorrect extension, expected '%s'", suffix))
	}

	dec := xml.NewDecoder(r)
	dec.Strict = true
	s.collector.SetPositioner(dec.InputPos)

	complete, err := s.stream(ctx, dec)
	if err != nil {
		return s.collector.Problems(), err
	}
	if complete {
		s.engine.finish()
	}
	return s.collector.Problems(), nil
}

// stream feeds every token to the grammar and then to the content rules.
// It reports false when the document was abandoned on a markup error.
func (s *Session) stream(ctx context.Context, dec *xml.Decoder) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			switch {
			case !s.sawElement:
				s.collector.Add(types.KindMarkupInvalid, "document is empty or contains only whitespace")
				return false, nil
			case len(s.stack) > 0:
				s.collector.Add(types.KindMarkupInvalid, "unexpected end of document")
				return false, nil
			}
			return true, nil
		}
		if err != nil {
			s.collector.Add(types.KindMarkupInvalid, syntaxMessage(err))
			return false, nil
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			s.engine.header(fmt.Sprintf("<?%s %s?>", t.Target, t.Inst))
		case xml.Comment:
			s.engine.comment("<!--" + string(t) + "-->")
		case xml.StartElement:
			if !s.startElement(ctx, t) {
				return false, nil
			}
		case xml.CharData:
			if n := len(s.stack); n > 0 {
				s.stack[n-1].text.Write(t)
			}
		case xml.EndElement:
			if !s.endElement(ctx, t) {
				return false, nil
			}
		}
	}
}

func (s *Session) startElement(ctx context.Context, t xml.StartElement) bool {
	ev, err := s.machine.Open(ctx, t.Name.Local, t.Attr)
	if err != nil {
		s.reject(err)
		return false
	}

	s.sawElement = true
	translated := ev.Translated
	if n := len(s.stack); n > 0 && s.stack[n-1].translated {
		translated = true
	}
	event := s.logger.Debug().Str("tag", ev.Tag).Bool("translated", translated)
	if ev.Lang != "" {
		event = event.Str("lang", ev.Lang)
	}
	event.Msg("START")

	for _, f := range ev.Findings {
		s.collector.Add(f.Kind, f.Message)
	}
	s.engine.open(ev, translated)
	s.stack = append(s.stack, &frame{event: ev, translated: translated})
	return true
}

func (s *Session) endElement(ctx context.Context, t xml.EndElement) bool {
	if _, err := s.machine.Close(ctx, t.Name.Local); err != nil {
		s.reject(err)
		return false
	}
	s.logger.Debug().Str("tag", t.Name.Local).Msg("END")

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.engine.close(ctx, top.event, top.translated, top.text.String())
	return true
}

// reject records a grammar failure. Illegal tags also log what the open
// section would have accepted.
func (s *Session) reject(err error) {
	var terr *grammar.TransitionError
	if errors.As(err, &terr) {
		s.logger.Debug().Str("tag", terr.Tag).Str("section", terr.From).Strs("allowed", terr.Allowed).Msg("illegal tag")
	}
	s.collector.Add(types.KindMarkupInvalid, err.Error())
}

// syntaxMessage strips the decoder's "XML syntax error on line N: " prefix;
// the position is recorded separately.
func syntaxMessage(err error) string {
	var serr *xml.SyntaxError
	if errors.As(err, &serr) {
		return serr.Msg
	}
	return err.Error()
}

// Validate checks an in-memory document. filename is the logical name used
// for the extension check.
func Validate(ctx context.Context, data []byte, filename string, rules config.Rules, opts *Options) ([]types.Problem, error) {
	session, err := NewSession(rules, filename, opts)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx, bytes.NewReader(data))
}

// ValidateFile reads and checks the document at path. A read failure is
// reported as a single failed-to-open problem, not as an error.
func ValidateFile(ctx context.Context, path string, rules config.Rules, opts *Options) ([]types.Problem, error) {
	session, err := NewSession(rules, path, opts)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		session.logger.Debug().Err(err).Msg("failed to open document")
		return []types.Problem{{Kind: types.KindFailedToOpen, Message: err.Error()}}, nil
	}
	return session.Run(ctx, bytes.NewReader(data))
}
