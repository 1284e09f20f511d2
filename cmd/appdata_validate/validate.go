package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/appdata-validator/internal/observability"
	"github.com/jonathan/appdata-validator/internal/pipeline"
	"github.com/jonathan/appdata-validator/internal/schemas"
	"github.com/jonathan/appdata-validator/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate AppData files",
	Long: `Validates each AppData file and lists the problems found.

Exit status is 0 when every file validated OK, 2 when problems were found
and 1 on usage or configuration errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var (
	validateFilename string
	validateJSON     bool
	validateOutput   string
	validateJobs     int
)

func init() {
	validateCmd.Flags().StringVar(&validateFilename, "filename", "", "Logical filename used for the extension check (single file only)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
	validateCmd.Flags().StringVarP(&validateOutput, "out", "o", "", "Also write the JSON report to this path")
	validateCmd.Flags().IntVarP(&validateJobs, "jobs", "j", 1, "Number of files validated at once")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	rules, err := resolveRules(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		Rules:       rules,
		Jobs:        validateJobs,
		LogicalName: validateFilename,
		Logger:      &log.Logger,
	}
	if verbose {
		opts.OnProgress = func(ev pipeline.ProgressEvent) {
			log.Info().Str("file", ev.Filename).Int("problems", ev.Problems).Msgf("validated %d/%d", ev.Index+1, ev.Total)
		}
	}
	report, err := pipeline.Run(cmd.Context(), args, opts)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	log.Debug().Str("run_id", report.RunID).Int("files", len(report.Files)).Int("problems", report.ProblemCount()).Msg("validation finished")

	out := cmd.OutOrStdout()
	if validateJSON {
		if err := observability.WriteJSON(out, report); err != nil {
			return err
		}
	} else {
		printer := observability.NewPrinter(out)
		printer.ShowPositions = verbose
		printer.PrintReport(report)
		if verbose && len(report.Files) > 1 {
			printer.PrintSummary(report)
		}
	}

	if validateOutput != "" {
		if err := writeReport(validateOutput, report); err != nil {
			return err
		}
		log.Info().Str("path", validateOutput).Msg("report written")
	}

	if n := report.ProblemCount(); n > 0 {
		return &problemsFoundError{Count: n}
	}
	return nil
}

// writeReport checks the encoded report against the report schema before
// writing it.
func writeReport(path string, report *types.Report) error {
	var buf bytes.Buffer
	if err := observability.WriteJSON(&buf, report); err != nil {
		return err
	}
	if err := schemas.ValidateBytes(schemas.ReportSchema, buf.Bytes()); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
