package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

type ChangeType string

const (
	Added    ChangeType = "ADDED"
	Modified ChangeType = "MODIFIED"
	Deleted  ChangeType = "DELETED"
)

type Change struct {
	Type ChangeType
	Path string
	Dir  bool
}

type Diff struct {
	Added    []Change
	Modified []Change
	Deleted  []Change
}

func (d *Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Deleted) > 0
}

// Compare lists the entries that differ between two snapshots. A renamed
// entry shows up as one deletion and one addition.
func Compare(oldSnap, newSnap *Snapshot) *Diff {
	diff := &Diff{}
	oldLeaves := index(oldSnap)
	newLeaves := index(newSnap)

	for path, leaf := range newLeaves {
		prev, ok := oldLeaves[path]
		switch {
		case !ok:
			diff.Added = append(diff.Added, Change{Type: Added, Path: path, Dir: leaf.Dir})
		case prev.Dir != leaf.Dir || prev.Hash != leaf.Hash:
			diff.Modified = append(diff.Modified, Change{Type: Modified, Path: path, Dir: leaf.Dir})
		}
	}
	for path, leaf := range oldLeaves {
		if _, ok := newLeaves[path]; !ok {
			diff.Deleted = append(diff.Deleted, Change{Type: Deleted, Path: path, Dir: leaf.Dir})
		}
	}

	for _, changes := range [][]Change{diff.Added, diff.Modified, diff.Deleted} {
		sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	}
	return diff
}

func index(snap *Snapshot) map[string]*Leaf {
	m := make(map[string]*Leaf, len(snap.Leaves))
	for _, l := range snap.Leaves {
		m[l.Path] = l
	}
	return m
}

func FormatDiff(d *Diff) string {
	if !d.HasChanges() {
		return "No changes detected.\n"
	}

	var b strings.Builder
	section := func(title, mark string, changes []Change) {
		if len(changes) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s (%d):\n", title, len(changes))
		for _, c := range changes {
			path := c.Path
			if c.Dir {
				path += "/"
			}
			fmt.Fprintf(&b, "  %s %s\n", mark, path)
		}
		b.WriteString("\n")
	}
	section(string(Added), "+", d.Added)
	section(string(Modified), "~", d.Modified)
	section(string(Deleted), "-", d.Deleted)

	fmt.Fprintf(&b, "Summary: %d added, %d modified, %d deleted\n",
		len(d.Added), len(d.Modified), len(d.Deleted))
	return b.String()
}
