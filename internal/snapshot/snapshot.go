// Package snapshot fingerprints a directory tree: a Merkle root over every
// entry's relative path and, for files, the hash of its content. Two trees
// with the same names and contents have the same fingerprint, so a second
// casefold run that changes nothing leaves the fingerprint unchanged.
package snapshot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	mt "github.com/txaty/go-merkletree"

	"casefold/internal/hash"
	"casefold/internal/progress"
	"casefold/internal/walker"
)

type Leaf struct {
	Path string `json:"path"`
	Dir  bool   `json:"dir,omitempty"`
	Hash string `json:"hash,omitempty"`
}

// Serialize implements mt.DataBlock.
func (l *Leaf) Serialize() ([]byte, error) {
	kind := "f"
	if l.Dir {
		kind = "d"
	}
	return []byte(kind + "\x00" + l.Path + "\x00" + l.Hash), nil
}

type Snapshot struct {
	Generator string    `json:"generator"`
	Created   time.Time `json:"created"`
	Root      string    `json:"root"`
	Hash      string    `json:"hash"`
	Leaves    []*Leaf   `json:"leaves"`
	// Errors holds files that could not be hashed; they are left out of Leaves.
	Errors []string `json:"errors,omitempty"`
}

type Options struct {
	Skip    map[string]bool
	Workers int
	// Progress receives a progress bar while hashing; nil disables it.
	Progress io.Writer
}

// Take fingerprints root. Files are hashed concurrently; the tree itself is
// only read.
func Take(ctx context.Context, root string, opts Options) (*Snapshot, error) {
	walked, err := walker.BottomUp(root, opts.Skip)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range walked.Entries {
		if e.Kind == walker.File {
			files = append(files, e.Path)
		}
	}

	bar := progress.New(int64(len(files)), opts.Progress, opts.Progress != nil)
	hashed, err := walker.HashFiles(ctx, files, opts.Workers, bar)
	if err != nil {
		return nil, fmt.Errorf("failed to hash files: %w", err)
	}
	bar.Finish()

	snap := &Snapshot{
		Generator: "casefold",
		Created:   time.Now(),
		Root:      root,
	}
	for _, err := range append(walked.Errors, hashed.Errors...) {
		snap.Errors = append(snap.Errors, err.Error())
	}

	for _, e := range walked.Entries {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to compute relative path: %w", err)
		}
		leaf := &Leaf{Path: filepath.ToSlash(rel), Dir: e.Kind == walker.Directory}
		if !leaf.Dir {
			sum, ok := hashed.Hashes[e.Path]
			if !ok {
				continue
			}
			leaf.Hash = sum
		}
		snap.Leaves = append(snap.Leaves, leaf)
	}
	sort.Slice(snap.Leaves, func(i, j int) bool { return snap.Leaves[i].Path < snap.Leaves[j].Path })

	snap.Hash, err = rootHash(snap.Leaves)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func rootHash(leaves []*Leaf) (string, error) {
	switch len(leaves) {
	case 0:
		sum, _ := hash.Node([]byte("empty-tree"))
		return hex.EncodeToString(sum), nil
	case 1:
		data, _ := leaves[0].Serialize()
		sum, _ := hash.Node(data)
		return hex.EncodeToString(sum), nil
	}

	blocks := make([]mt.DataBlock, len(leaves))
	for i, l := range leaves {
		blocks[i] = l
	}

	tree, err := mt.New(&mt.Config{HashFunc: hash.Node}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build merkle tree: %w", err)
	}
	return hex.EncodeToString(tree.Root), nil
}

func Save(snap *Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
