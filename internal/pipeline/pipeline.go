// Package pipeline runs the two casefold phases in order: lowercase the
// tree, then repair the relative imports inside it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"casefold/internal/config"
	"casefold/internal/imports"
	"casefold/internal/normalize"
	"casefold/internal/report"
	"casefold/internal/snapshot"
)

type Options struct {
	Config *config.Config

	// Dir is the project directory; Config.Target is resolved against it.
	Dir         string
	DryRun      bool
	SkipRename  bool
	SkipImports bool
	Fingerprint bool
	Workers     int
	// Progress receives the fingerprint progress bar; nil disables it.
	Progress io.Writer
}

// Root returns the absolute directory the phases operate on.
func Root(opts Options) (string, error) {
	root := opts.Config.Target
	if !filepath.IsAbs(root) {
		root = filepath.Join(opts.Dir, root)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("cannot read root directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", root)
	}
	return root, nil
}

// Run executes the batch. Per-entry problems end up in the Summary; the
// returned error is reserved for an unusable root.
func Run(ctx context.Context, opts Options, log zerolog.Logger) (*report.Summary, error) {
	root, err := Root(opts)
	if err != nil {
		return nil, err
	}

	summary := &report.Summary{Root: root, DryRun: opts.DryRun}
	log.Info().Str("root", root).Bool("dry_run", opts.DryRun).Msg("Starting")

	if opts.Fingerprint {
		snap, err := snapshot.Take(ctx, root, snapshot.Options{
			Skip:     opts.Config.SkipSet(),
			Workers:  opts.Workers,
			Progress: opts.Progress,
		})
		if err != nil {
			return nil, err
		}
		summary.Before = snap.Hash
		log.Info().Str("fingerprint", snap.Hash).Int("entries", len(snap.Leaves)).Msg("Tree fingerprint before run")
	}

	if !opts.SkipRename {
		log.Info().Msg("Renaming all files and folders to lowercase...")
		res, err := normalize.New(opts.Config, opts.DryRun, log).Run(root)
		if err != nil {
			return nil, err
		}
		summary.Renamed = len(res.Renamed)
		summary.RenameFailures = len(res.Failed)
	}

	if !opts.SkipImports {
		log.Info().Msg("Fixing import paths...")
		res, err := imports.NewRepairer(opts.Config, opts.DryRun, log).Run(root)
		if err != nil {
			return nil, err
		}
		summary.Scanned = res.Scanned
		summary.FilesFixed = len(res.Fixed)
		for _, f := range res.Fixed {
			summary.ImportsFixed += len(f.Fixes)
		}
		summary.Unresolved = len(res.Unresolved)
		summary.FileFailures = len(res.Failed)
	}

	if opts.Fingerprint && !opts.DryRun {
		snap, err := snapshot.Take(ctx, root, snapshot.Options{
			Skip:    opts.Config.SkipSet(),
			Workers: opts.Workers,
		})
		if err != nil {
			return nil, err
		}
		summary.After = snap.Hash
		log.Info().Str("fingerprint", snap.Hash).Msg("Tree fingerprint after run")
	}

	log.Info().Int("renamed", summary.Renamed).Int("imports_fixed", summary.ImportsFixed).Msg("All done")
	return summary, nil
}
