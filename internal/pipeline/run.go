// Package pipeline runs validation passes over a batch of documents.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/appdata-validator/internal/config"
	"github.com/jonathan/appdata-validator/internal/screenshot"
	"github.com/jonathan/appdata-validator/internal/types"
	"github.com/jonathan/appdata-validator/internal/validation"
)

// ProgressEvent is emitted after each document has been validated.
type ProgressEvent struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Filename string `json:"filename"`
	Problems int    `json:"problems"`
}

// ProgressCallback is called when a document finishes. It may be called
// from several goroutines at once when Jobs > 1.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for a batch run
type RunOptions struct {
	Rules config.Rules

	// Jobs bounds how many documents are validated at once. Values below 1
	// mean one at a time.
	Jobs int

	// LogicalName overrides the filename used for the extension check.
	// Only valid for a single document.
	LogicalName string

	Logger     *zerolog.Logger
	Verifier   *screenshot.Verifier
	OnProgress ProgressCallback
}

// ValidateFiles validates every path and returns one report per path, in
// input order. Each document gets its own session; only the rules and the
// verifier are shared. The error is set for configuration mistakes or a
// cancelled context, never for document problems.
func ValidateFiles(ctx context.Context, paths []string, opts RunOptions) ([]types.FileReport, error) {
	if opts.LogicalName != "" && len(paths) > 1 {
		return nil, fmt.Errorf("logical filename %q cannot apply to %d files", opts.LogicalName, len(paths))
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	verifier := opts.Verifier
	if verifier == nil {
		verifier = screenshot.NewVerifier(opts.Rules, screenshot.WithLogger(logger))
	}
	sessionOpts := &validation.Options{
		LogicalName: opts.LogicalName,
		Logger:      opts.Logger,
		Verifier:    verifier,
	}

	reports := make([]types.FileReport, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			problems, err := validation.ValidateFile(gCtx, path, opts.Rules, sessionOpts)
			if err != nil {
				return fmt.Errorf("validating %s: %w", path, err)
			}
			// each goroutine owns its slot
			reports[i] = types.FileReport{Filename: path, Problems: problems}
			if opts.OnProgress != nil {
				opts.OnProgress(ProgressEvent{Index: i, Total: len(paths), Filename: path, Problems: len(problems)})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Run validates paths and wraps the results in a Report with a fresh run id.
func Run(ctx context.Context, paths []string, opts RunOptions) (*types.Report, error) {
	files, err := ValidateFiles(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	generation := opts.Rules.Generation
	if generation == "" {
		generation = config.DefaultRules().Generation
	}
	return &types.Report{
		RunID:      uuid.NewString(),
		Generation: generation,
		Files:      files,
	}, nil
}
