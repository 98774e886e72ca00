// Package normalize renames every file and directory under a root to its
// lowercase form, deepest entries first.
package normalize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"casefold/internal/config"
	"casefold/internal/pathcase"
	"casefold/internal/walker"
)

// TempPrefix marks the intermediate name used by a two-step rename.
const TempPrefix = "__tmp__"

var (
	ErrTargetExists = errors.New("a different entry already has the lowercase name")
	ErrVanished     = errors.New("entry no longer exists")
)

type Rename struct {
	From string
	To   string
	Kind walker.Kind
}

// RenamePlan is ordered so that every entry comes before its ancestors.
type RenamePlan struct {
	Root    string
	Renames []Rename
}

type Failure struct {
	Path string
	Err  error
}

type Result struct {
	Renamed []Rename
	Failed  []Failure
}

type Normalizer struct {
	skip   map[string]bool
	mode   config.RenameMode
	dryRun bool
	log    zerolog.Logger
}

func New(cfg *config.Config, dryRun bool, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		skip:   cfg.SkipSet(),
		mode:   cfg.RenameMode,
		dryRun: dryRun,
		log:    log,
	}
}

// Plan walks root and returns the renames needed to lowercase it. Entries
// that are already lowercase are left out, so a second Plan after Apply is
// empty. Unreadable subdirectories are returned as failures.
func (n *Normalizer) Plan(root string) (*RenamePlan, []Failure, error) {
	walked, err := walker.BottomUp(root, n.skip)
	if err != nil {
		return nil, nil, err
	}

	for _, dir := range walked.Skipped {
		n.log.Debug().Str("path", relPath(root, dir)).Msg("Skipped ignored directory")
	}

	plan := &RenamePlan{Root: root}
	for _, entry := range walked.Entries {
		base := filepath.Base(entry.Path)
		lower := pathcase.Lower(base)
		if lower == base {
			n.log.Debug().Str("path", relPath(root, entry.Path)).Msg("Already lowercase")
			continue
		}
		plan.Renames = append(plan.Renames, Rename{
			From: entry.Path,
			To:   filepath.Join(filepath.Dir(entry.Path), lower),
			Kind: entry.Kind,
		})
	}

	var failed []Failure
	for _, err := range walked.Errors {
		var pathErr *os.PathError
		path := root
		if errors.As(err, &pathErr) {
			path = pathErr.Path
		}
		n.log.Warn().Str("path", relPath(root, path)).Err(err).Msg("Could not read directory")
		failed = append(failed, Failure{Path: path, Err: err})
	}
	return plan, failed, nil
}

// Apply performs the plan in order. A failed rename is logged and recorded,
// and the remaining renames still run.
func (n *Normalizer) Apply(plan *RenamePlan) *Result {
	result := &Result{}
	twoStep := n.mode == config.RenameTwoStep
	if n.mode == config.RenameAuto && !n.dryRun && len(plan.Renames) > 0 {
		twoStep = pathcase.IsCaseInsensitive(plan.Root)
		if twoStep {
			n.log.Debug().Msg("Case-insensitive filesystem detected, renaming through temporary names")
		}
	}

	for _, r := range plan.Renames {
		from, to := relPath(plan.Root, r.From), relPath(plan.Root, r.To)

		sameFile, err := checkTarget(r)
		if err != nil {
			n.log.Warn().Str("path", from).Err(err).Msg("Could not rename")
			result.Failed = append(result.Failed, Failure{Path: r.From, Err: err})
			continue
		}

		if n.dryRun {
			n.log.Info().Str("from", from).Str("to", to).Msg("Would rename")
			result.Renamed = append(result.Renamed, r)
			continue
		}

		if twoStep || sameFile {
			err = renameTwoStep(r.From, r.To)
		} else {
			err = os.Rename(r.From, r.To)
		}
		if err != nil {
			n.log.Warn().Str("path", from).Err(err).Msg("Could not rename")
			result.Failed = append(result.Failed, Failure{Path: r.From, Err: err})
			continue
		}

		n.log.Info().Str("from", from).Str("to", to).Msg("Renamed")
		result.Renamed = append(result.Renamed, r)
	}
	return result
}

// Run plans and applies the lowercase renames under root.
func (n *Normalizer) Run(root string) (*Result, error) {
	plan, failed, err := n.Plan(root)
	if err != nil {
		return nil, err
	}
	result := n.Apply(plan)
	result.Failed = append(failed, result.Failed...)
	return result, nil
}

// checkTarget reports whether r.To already resolves to the same entry as
// r.From, which happens on case-insensitive filesystems.
func checkTarget(r Rename) (bool, error) {
	fromInfo, err := os.Lstat(r.From)
	if err != nil {
		if os.IsNotExist(err) {
			return false, ErrVanished
		}
		return false, err
	}

	toInfo, err := os.Lstat(r.To)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if os.SameFile(fromInfo, toInfo) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s", ErrTargetExists, filepath.Base(r.To))
}

// renameTwoStep moves from to a temporary sibling and then to to, so a
// case-only change is not swallowed by the filesystem.
func renameTwoStep(from, to string) error {
	tmp := filepath.Join(filepath.Dir(from), TempPrefix+filepath.Base(from))
	if _, err := os.Lstat(tmp); err == nil {
		return fmt.Errorf("temporary name %s is taken", filepath.Base(tmp))
	}

	if err := os.Rename(from, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, to); err != nil {
		if rbErr := os.Rename(tmp, from); rbErr != nil {
			return fmt.Errorf("%w (rollback failed, entry left at %s: %v)", err, tmp, rbErr)
		}
		return err
	}
	return nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
