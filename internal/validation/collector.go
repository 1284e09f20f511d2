package validation

import (
	"github.com/rs/zerolog"

	"github.com/jonathan/appdata-validator/internal/types"
)

// Positioner reports the current input position, 1-based.
type Positioner func() (line, column int)

type problemKey struct {
	kind    types.ProblemKind
	message string
}

// Collector accumulates the problems of one validation pass. It is append
// only; a problem whose kind and message were already recorded is dropped.
type Collector struct {
	problems []types.Problem
	seen     map[problemKey]struct{}
	pos      Positioner
	logger   zerolog.Logger
}

// NewCollector returns an empty collector. pos may be nil, in which case
// problems carry no position until SetPositioner is called.
func NewCollector(pos Positioner, logger zerolog.Logger) *Collector {
	return &Collector{
		seen:   make(map[problemKey]struct{}),
		pos:    pos,
		logger: logger,
	}
}

// SetPositioner changes where positions for later problems come from.
func (c *Collector) SetPositioner(pos Positioner) { c.pos = pos }

// Add records a problem at the current input position.
func (c *Collector) Add(kind types.ProblemKind, message string) {
	line, col := 0, 0
	if c.pos != nil {
		line, col = c.pos()
	}
	c.AddAt(kind, message, line, col)
}

// AddAt records a problem at an explicit position. It reports whether the
// problem was new.
func (c *Collector) AddAt(kind types.ProblemKind, message string, line, column int) bool {
	key := problemKey{kind: kind, message: message}
	if _, dup := c.seen[key]; dup {
		c.logger.Debug().Str("kind", kind.String()).Str("message", message).Msg("dropping duplicate problem")
		return false
	}
	c.seen[key] = struct{}{}
	c.problems = append(c.problems, types.Problem{Kind: kind, Message: message, Line: line, Column: column})
	c.logger.Debug().
		Str("kind", kind.String()).
		Str("message", message).
		Int("line", line).
		Int("column", column).
		Msg("adding problem")
	return true
}

// Len returns the number of recorded problems.
func (c *Collector) Len() int { return len(c.problems) }

// Problems returns a copy of the recorded problems in insertion order.
// The result is never nil.
func (c *Collector) Problems() []types.Problem {
	out := make([]types.Problem, len(c.problems))
	copy(out, c.problems)
	return out
}
