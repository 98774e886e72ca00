package imports

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"casefold/internal/config"
	"casefold/internal/walker"
)

// Fix is one specifier that was rewritten.
type Fix struct {
	Line int
	From string
	To   string
	Form Form
}

type FileResult struct {
	Path       string
	Fixes      []Fix
	Unresolved []Reference
	Written    bool
}

type Failure struct {
	Path string
	Err  error
}

type Result struct {
	Scanned    int
	Fixed      []FileResult
	Unresolved []Reference
	Failed     []Failure
}

// Repairer rewrites relative specifiers in every recognized source file.
type Repairer struct {
	cfg    *config.Config
	dryRun bool
	log    zerolog.Logger
}

func NewRepairer(cfg *config.Config, dryRun bool, log zerolog.Logger) *Repairer {
	return &Repairer{cfg: cfg, dryRun: dryRun, log: log}
}

// Run repairs every source file under root. Only a failure to walk root is
// returned; per-file problems are logged and collected in the Result.
func (r *Repairer) Run(root string) (*Result, error) {
	files, err := walker.Files(root, r.cfg.SkipSet(), r.cfg.HasExtension)
	if err != nil {
		return nil, err
	}

	for _, dir := range files.Skipped {
		r.log.Debug().Str("path", relPath(root, dir)).Msg("Skipped ignored directory")
	}

	result := &Result{}
	for _, err := range files.Errors {
		path := root
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			path = pathErr.Path
		}
		r.log.Warn().Str("path", relPath(root, path)).Err(err).Msg("Could not read directory")
		result.Failed = append(result.Failed, Failure{Path: path, Err: err})
	}

	resolver := NewResolver(r.cfg)
	for _, entry := range files.Entries {
		result.Scanned++

		fr, err := r.RepairFile(resolver, root, entry.Path)
		if err != nil {
			r.log.Warn().Str("file", relPath(root, entry.Path)).Err(err).Msg("Could not fix imports")
			result.Failed = append(result.Failed, Failure{Path: entry.Path, Err: err})
			continue
		}
		result.Unresolved = append(result.Unresolved, fr.Unresolved...)
		if len(fr.Fixes) > 0 {
			result.Fixed = append(result.Fixed, *fr)
		}
	}
	return result, nil
}

// RepairFile rewrites the specifiers of one file. The file is written only
// when at least one specifier changed.
func (r *Repairer) RepairFile(resolver *Resolver, root, path string) (*FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content := string(data)
	refs := Scan(path, content)
	fr := &FileResult{Path: path}
	rel := relPath(root, path)
	if len(refs) == 0 {
		r.log.Debug().Str("file", rel).Msg("No relative imports")
		return fr, nil
	}

	dir := filepath.Dir(path)

	var b strings.Builder
	b.Grow(len(content))
	pos := 0
	for _, ref := range refs {
		res := resolver.Resolve(dir, ref.Specifier)
		if !res.Found() {
			r.log.Warn().Str("file", rel).Int("line", ref.Line).Str("import", ref.Specifier).Msg("Unresolved import")
			fr.Unresolved = append(fr.Unresolved, ref)
			continue
		}
		if res.Specifier == ref.Specifier {
			continue
		}

		b.WriteString(content[pos:ref.Start])
		b.WriteString(res.Specifier)
		pos = ref.End

		r.log.Info().Str("file", rel).Int("line", ref.Line).
			Str("from", ref.Specifier).Str("to", res.Specifier).Msg("Rewrote import")
		fr.Fixes = append(fr.Fixes, Fix{Line: ref.Line, From: ref.Specifier, To: res.Specifier, Form: res.Form})
	}

	if len(fr.Fixes) == 0 {
		r.log.Debug().Str("file", rel).Int("imports", len(refs)).Msg("Imports already match")
		return fr, nil
	}
	b.WriteString(content[pos:])

	if r.dryRun {
		r.log.Info().Str("file", rel).Int("fixes", len(fr.Fixes)).Msg("Would fix imports")
		return fr, nil
	}
	if err := os.WriteFile(path, []byte(b.String()), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	fr.Written = true
	r.log.Info().Str("file", rel).Int("fixes", len(fr.Fixes)).Msg("Fixed imports")
	return fr, nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
