// Package main provides the appdata-validate command line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	exitSuccess  = 0
	exitUsage    = 1
	exitProblems = 2
)

// environment variables read by the rule flags
const (
	rulesEnvVar = "APPDATA_VALIDATE_RULES"
	relaxEnvVar = "RELAX"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "appdata-validate",
	Short: "AppData metadata validator",
	Long:  "appdata-validate checks AppStream AppData files for markup, style and content problems.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log parse events and problems to stderr")
}

// problemsFoundError is returned when validation completed and at least one
// document has problems.
type problemsFoundError struct {
	Count int
}

func (e *problemsFoundError) Error() string {
	return fmt.Sprintf("%d problems detected", e.Count)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var problems *problemsFoundError
	if errors.As(err, &problems) {
		return exitProblems
	}
	return exitUsage
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
