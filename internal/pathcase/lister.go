package pathcase

import (
	"fmt"
	"os"
	"path/filepath"
)

// Entry is one name from a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Lister lists directories and caches the result for the lifetime of one
// phase. It must not be reused across a rename pass.
type Lister struct {
	cache map[string][]Entry
}

func NewLister() *Lister {
	return &Lister{cache: make(map[string][]Entry)}
}

// List returns the entries of dir.
func (l *Lister) List(dir string) ([]Entry, error) {
	if entries, ok := l.cache[dir]; ok {
		return entries, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		isDir := d.IsDir()
		if d.Type()&os.ModeSymlink != 0 {
			// Follow links so a linked directory can still be resolved through.
			if info, err := os.Stat(filepath.Join(dir, d.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		entries = append(entries, Entry{Name: d.Name(), IsDir: isDir})
	}
	l.cache[dir] = entries
	return entries, nil
}

// Find looks up name in dir ignoring case. An exact match wins over a
// case-insensitive one. kind restricts which entries may match.
func (l *Lister) Find(dir, name string, kind Kind) (Entry, bool) {
	entries, err := l.List(dir)
	if err != nil {
		return Entry{}, false
	}

	key := Key(name)
	var found Entry
	ok := false
	for _, e := range entries {
		if !kind.accepts(e) {
			continue
		}
		if e.Name == name {
			return e, true
		}
		if !ok && Key(e.Name) == key {
			found, ok = e, true
		}
	}
	return found, ok
}

// Kind filters the entries Find may return.
type Kind int

const (
	AnyKind Kind = iota
	FileKind
	DirKind
)

func (k Kind) accepts(e Entry) bool {
	switch k {
	case FileKind:
		return !e.IsDir
	case DirKind:
		return e.IsDir
	}
	return true
}
