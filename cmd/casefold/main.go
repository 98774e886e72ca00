package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"casefold/internal/config"
	"casefold/internal/pipeline"
	"casefold/internal/report"
	"casefold/internal/snapshot"
)

// errWarnings makes main exit with status 2 under --strict.
var errWarnings = errors.New("run finished with warnings")

type options struct {
	configPath      string
	target          string
	extensions      []string
	skip            []string
	renameMode      string
	extensionPolicy string
	dryRun          bool
	skipRename      bool
	skipImports     bool
	fingerprint     bool
	workers         int
	strict          bool
	verbose         bool
	noColor         bool
	output          string
	compare         string
}

// newRenderer styles output for w; noColor forces plain text.
func newRenderer(w io.Writer, noColor bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(w io.Writer, verbose, noColor bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      noColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(out).Level(level)
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *options, dir string) (*config.Config, error) {
	path := opts.configPath
	if !cmd.Flags().Changed("config") {
		path = filepath.Join(dir, config.DefaultFile)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target = opts.target
	}
	if flags.Changed("ext") {
		cfg.Extensions = opts.extensions
	}
	if flags.Changed("skip") {
		cfg.Skip = opts.skip
	}
	if flags.Changed("rename-mode") {
		cfg.RenameMode = config.RenameMode(opts.renameMode)
	}
	if flags.Changed("extension-policy") {
		cfg.ExtensionPolicy = config.ExtensionPolicy(opts.extensionPolicy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func directoryArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

func progressWriter() io.Writer {
	if isTerminal(os.Stderr) {
		return os.Stderr
	}
	return nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	dir := directoryArg(args)
	cfg, err := loadConfig(cmd, opts, dir)
	if err != nil {
		return err
	}

	log := newLogger(cmd.OutOrStdout(), opts.verbose, opts.noColor || !isTerminal(os.Stdout))

	summary, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Config:      cfg,
		Dir:         dir,
		DryRun:      opts.dryRun,
		SkipRename:  opts.skipRename,
		SkipImports: opts.skipImports,
		Fingerprint: opts.fingerprint,
		Workers:     opts.workers,
		Progress:    progressWriter(),
	}, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "\n"+report.Format(summary, newRenderer(out, opts.noColor)))

	if opts.strict && summary.HasWarnings() {
		return errWarnings
	}
	return nil
}

func fingerprint(cmd *cobra.Command, opts *options, args []string) error {
	dir := directoryArg(args)
	cfg, err := loadConfig(cmd, opts, dir)
	if err != nil {
		return err
	}

	root, err := pipeline.Root(pipeline.Options{Config: cfg, Dir: dir})
	if err != nil {
		return err
	}

	snap, err := snapshot.Take(cmd.Context(), root, snapshot.Options{
		Skip:     cfg.SkipSet(),
		Workers:  opts.workers,
		Progress: progressWriter(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s (%d entries)\n", snap.Hash, root, len(snap.Leaves))
	if len(snap.Errors) > 0 {
		fmt.Fprintf(out, "⚠ Skipped %d entries due to errors\n", len(snap.Errors))
	}

	if opts.compare != "" {
		old, err := snapshot.Load(opts.compare)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		fmt.Fprintf(out, "\nCompared with %s:\n", opts.compare)
		fmt.Fprint(out, snapshot.FormatDiff(snapshot.Compare(old, snap)))
	}

	if opts.output != "" {
		if err := snapshot.Save(snap, opts.output); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Fprintf(out, "Saved: %s\n", opts.output)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "casefold [directory]",
		Short: "Lowercase a source tree and repair its relative imports.",
		Long: `Rename every file and directory under the target to lowercase, deepest
entries first, then rewrite relative import/require specifiers in source
files so they match the names on disk.

Directories named in the skip list (node_modules, .git, dist, build, out by
default) are left untouched by both phases.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "Config file path")
	pf.StringVarP(&opts.target, "target", "t", ".", "Subdirectory to operate on, relative to the directory")
	pf.StringSliceVarP(&opts.extensions, "ext", "e", nil, "Source extensions to repair (e.g. js,jsx,ts,tsx)")
	pf.StringSliceVarP(&opts.skip, "skip", "s", nil, "Directory names to leave untouched")
	pf.IntVarP(&opts.workers, "workers", "w", runtime.NumCPU()*2, "Number of hashing workers for fingerprints")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug details")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	f := root.Flags()
	f.StringVar(&opts.renameMode, "rename-mode", string(config.RenameAuto), "Rename strategy: auto, direct or two-step")
	f.StringVar(&opts.extensionPolicy, "extension-policy", string(config.PolicyExplicit), "Specifier suffixes: explicit or preserve")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Report what would change without touching the tree")
	f.BoolVar(&opts.skipRename, "skip-rename", false, "Only repair imports")
	f.BoolVar(&opts.skipImports, "skip-imports", false, "Only lowercase names")
	f.BoolVar(&opts.fingerprint, "fingerprint", false, "Log the tree fingerprint before and after the run")
	f.BoolVar(&opts.strict, "strict", false, "Exit with status 2 when any warning was logged")

	fp := &cobra.Command{
		Use:   "fingerprint [directory]",
		Short: "Print a Merkle fingerprint of the tree's names and contents.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fingerprint(cmd, opts, args)
		},
	}
	fp.Flags().StringVarP(&opts.output, "output", "o", "", "Save the snapshot as JSON")
	fp.Flags().StringVar(&opts.compare, "compare", "", "Compare with a snapshot saved by --output")
	root.AddCommand(fp)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errWarnings):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
