// Package types provides type definitions for structured data used throughout the appdata validator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// ProblemKind is the closed taxonomy of diagnostics a validation pass can record.
type ProblemKind int

const (
	KindTagDuplicated ProblemKind = iota
	KindTagMissing
	KindTagInvalid
	KindAttributeMissing
	KindAttributeInvalid
	KindMarkupInvalid
	KindStyleIncorrect
	KindFilenameInvalid
	KindFailedToOpen
	KindTranslationsRequired
	KindDuplicateData
	KindValueMissing
	KindURLNotFound
	KindFileInvalid
	KindAspectRatioInvalid
	KindResolutionInvalid
)

var problemKindNames = [...]string{
	KindTagDuplicated:        "tag-duplicated",
	KindTagMissing:           "tag-missing",
	KindTagInvalid:           "tag-invalid",
	KindAttributeMissing:     "attribute-missing",
	KindAttributeInvalid:     "attribute-invalid",
	KindMarkupInvalid:        "markup-invalid",
	KindStyleIncorrect:       "style-incorrect",
	KindFilenameInvalid:      "filename-invalid",
	KindFailedToOpen:         "failed-to-open",
	KindTranslationsRequired: "translations-required",
	KindDuplicateData:        "duplicate-data",
	KindValueMissing:         "value-missing",
	KindURLNotFound:          "url-not-found",
	KindFileInvalid:          "file-invalid",
	KindAspectRatioInvalid:   "aspect-ratio-invalid",
	KindResolutionInvalid:    "resolution-invalid",
}

func (k ProblemKind) String() string {
	if k < 0 || int(k) >= len(problemKindNames) {
		return "unknown"
	}
	return problemKindNames[k]
}

// ParseProblemKind maps a dashed kind name back to its ProblemKind.
func ParseProblemKind(s string) (ProblemKind, error) {
	for i, name := range problemKindNames {
		if name == s {
			return ProblemKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown problem kind %q", s)
}

// MarshalJSON encodes the kind as its dashed name.
func (k ProblemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a dashed kind name.
func (k *ProblemKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProblemKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Problem is one recorded diagnostic.
// Line and Column are zero when the position is unknown.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Message string      `json:"message"`
	Line    int         `json:"line,omitempty"`
	Column  int         `json:"column,omitempty"`
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%s: %s [%d,%d]", p.Kind, p.Message, p.Line, p.Column)
	}
	return fmt.Sprintf("%s: %s", p.Kind, p.Message)
}

// FileReport holds the problems found for a single document.
type FileReport struct {
	Filename string    `json:"filename"`
	Problems []Problem `json:"problems"`
}

// Valid reports whether the document produced no problems.
func (r FileReport) Valid() bool {
	return len(r.Problems) == 0
}

// Report is the outcome of one batch run.
type Report struct {
	RunID      string       `json:"run_id"`
	Generation string       `json:"generation"`
	Files      []FileReport `json:"files"`
}

// ProblemCount returns the total number of problems across all files.
func (r *Report) ProblemCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Problems)
	}
	return n
}
