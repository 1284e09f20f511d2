// Package observability provides formatted output for validation reports.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/appdata-validator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// kindWidth is the column the problem kind is padded to
	kindWidth = 20
)

// Printer handles formatted output of validation results
type Printer struct {
	out io.Writer

	// ShowPositions appends [line:column] to problems that carry one.
	ShowPositions bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// FormatProblem renders one problem as a listing line, without newline.
func FormatProblem(problem types.Problem, withPosition bool) string {
	line := fmt.Sprintf("• %-*s  : %s", kindWidth, problem.Kind, problem.Message)
	if withPosition && problem.Line > 0 {
		line += fmt.Sprintf(" [%d:%d]", problem.Line, problem.Column)
	}
	return line
}

// PrintFileReport writes the result of one document in the listing format:
// "<file> validated OK." or the problem count followed by one line each.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFileReport(report types.FileReport) {
	if report.Valid() {
		fmt.Fprintf(p.out, "%s validated OK.\n", report.Filename)
		return
	}
	fmt.Fprintf(p.out, "%s %d problems detected:\n", report.Filename, len(report.Problems))
	for _, problem := range report.Problems {
		fmt.Fprintln(p.out, FormatProblem(problem, p.ShowPositions))
	}
}

// PrintReport writes every file of the report in order.
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}
	for _, f := range report.Files {
		p.PrintFileReport(f)
	}
}

// PrintSummary outputs a box with per-kind problem totals for the batch.
func (p *Printer) PrintSummary(report *types.Report) {
	if report == nil {
		return
	}

	valid := 0
	byKind := make(map[types.ProblemKind]int)
	for _, f := range report.Files {
		if f.Valid() {
			valid++
		}
		for _, problem := range f.Problems {
			byKind[problem.Kind]++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Generation: %s\n", report.Generation))
	sb.WriteString(fmt.Sprintf("Files:      %d (%d valid)\n", len(report.Files), valid))
	sb.WriteString(fmt.Sprintf("Problems:   %d\n", report.ProblemCount()))

	kinds := make([]types.ProblemKind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	if len(kinds) > 0 {
		sb.WriteString("\n")
	}
	for _, k := range kinds {
		sb.WriteString(fmt.Sprintf("  %-*s %d\n", kindWidth, k, byKind[k]))
	}

	p.printBox("VALIDATION SUMMARY", sb.String())
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, report *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
