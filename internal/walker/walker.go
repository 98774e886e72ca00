package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"casefold/internal/hash"
	"casefold/internal/progress"
)

type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// TreeEntry is one path produced by a traversal.
type TreeEntry struct {
	Path string
	Kind Kind
}

type WalkResult struct {
	Entries []TreeEntry
	// Skipped lists the ignored directories that were pruned.
	Skipped []string
	Errors  []error
}

// BottomUp lists every entry under root, descendants strictly before their
// ancestors. Directories named in skip are pruned with their contents. The
// root itself is not included. Only a failure to list root is returned as an
// error; unreadable subdirectories are collected in Errors.
func BottomUp(root string, skip map[string]bool) (*WalkResult, error) {
	result := &WalkResult{
		Entries: make([]TreeEntry, 0),
		Errors:  make([]error, 0),
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}
	postOrder(root, entries, skip, result)
	return result, nil
}

func postOrder(dir string, entries []fs.DirEntry, skip map[string]bool, result *WalkResult) {
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if skip[entry.Name()] {
			if entry.IsDir() {
				result.Skipped = append(result.Skipped, path)
			}
			continue
		}

		if entry.IsDir() {
			children, err := os.ReadDir(path)
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else {
				postOrder(path, children, skip, result)
			}
			result.Entries = append(result.Entries, TreeEntry{Path: path, Kind: Directory})
			continue
		}
		result.Entries = append(result.Entries, TreeEntry{Path: path, Kind: File})
	}
}

// Files walks root top-down and returns the regular files accepted by match.
// Directories named in skip are pruned.
func Files(root string, skip map[string]bool, match func(name string) bool) (*WalkResult, error) {
	result := &WalkResult{
		Entries: make([]TreeEntry, 0),
		Errors:  make([]error, 0),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			result.Errors = append(result.Errors, err)
			return nil
		}

		if path != root && skip[d.Name()] {
			if d.IsDir() {
				result.Skipped = append(result.Skipped, path)
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && (match == nil || match(d.Name())) {
			result.Entries = append(result.Entries, TreeEntry{Path: path, Kind: File})
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return result, nil
}

type HashResult struct {
	Hashes map[string]string // path -> hash
	Errors []error
}

// HashFiles hashes files on a bounded pool of workers. Per-file failures are
// collected; only context cancellation is returned as an error.
func HashFiles(ctx context.Context, files []string, numWorkers int, bar *progress.Bar) (*HashResult, error) {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	result := &HashResult{
		Hashes: make(map[string]string, len(files)),
		Errors: make([]error, 0),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := hash.File(path)

			mu.Lock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
			} else {
				result.Hashes[path] = sum
			}
			mu.Unlock()

			if bar != nil {
				bar.SetDirectory(filepath.Dir(path))
				bar.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
