package imports

import (
	"path/filepath"
	"strings"

	"casefold/internal/config"
	"casefold/internal/pathcase"
)

// Form tells which candidate shape matched a specifier.
type Form int

const (
	Unresolved Form = iota
	WithExtension
	Exact
	DirectoryIndex
	Directory
)

func (f Form) String() string {
	switch f {
	case WithExtension:
		return "extension"
	case Exact:
		return "exact"
	case DirectoryIndex:
		return "index"
	case Directory:
		return "directory"
	}
	return "unresolved"
}

type Resolution struct {
	Form Form
	// Path is the absolute on-disk path the specifier resolves to.
	Path string
	// Specifier is the rewritten specifier using on-disk casing.
	Specifier string
}

func (r Resolution) Found() bool {
	return r.Form != Unresolved
}

// Resolver matches specifiers against directory listings ignoring case. It
// caches listings, so use a fresh Resolver after the tree changes.
type Resolver struct {
	exts   []string
	index  string
	policy config.ExtensionPolicy
	lister *pathcase.Lister
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		exts:   cfg.Extensions,
		index:  cfg.Index,
		policy: cfg.ExtensionPolicy,
		lister: pathcase.NewLister(),
	}
}

// Resolve resolves specifier relative to dir. Candidates are tried in order:
// base plus each extension, the bare base as a file, base/index plus each
// extension, then the bare base as a directory. Every directory segment is
// matched case-insensitively as well.
func (r *Resolver) Resolve(dir, specifier string) Resolution {
	spec, tail := splitQuery(specifier)

	dirRef := len(spec) > 1 && strings.HasSuffix(spec, "/")
	if dirRef {
		spec = strings.TrimSuffix(spec, "/")
		tail = "/" + tail
	}

	segs := strings.Split(spec, "/")
	last := len(segs) - 1
	cur := dir
	for i, seg := range segs[:last] {
		switch seg {
		case ".", "":
		case "..":
			cur = filepath.Dir(cur)
		default:
			e, ok := r.lister.Find(cur, seg, pathcase.DirKind)
			if !ok {
				return Resolution{}
			}
			segs[i] = e.Name
			cur = filepath.Join(cur, e.Name)
		}
	}

	base := segs[last]
	if dirRef || base == "." || base == ".." {
		return r.resolveDirectory(cur, segs, tail)
	}

	for _, ext := range r.exts {
		e, ok := r.lister.Find(cur, base+ext, pathcase.FileKind)
		if !ok {
			continue
		}
		segs[last] = e.Name
		if r.policy == config.PolicyPreserve {
			segs[last] = e.Name[:len(e.Name)-len(ext)]
		}
		return r.result(WithExtension, filepath.Join(cur, e.Name), segs, tail)
	}

	if e, ok := r.lister.Find(cur, base, pathcase.FileKind); ok {
		segs[last] = e.Name
		return r.result(Exact, filepath.Join(cur, e.Name), segs, tail)
	}

	if d, ok := r.lister.Find(cur, base, pathcase.DirKind); ok {
		dirPath := filepath.Join(cur, d.Name)
		segs[last] = d.Name
		if name, ok := r.findIndex(dirPath); ok {
			if r.policy == config.PolicyExplicit {
				segs[last] = d.Name + "/" + name
			}
			return r.result(DirectoryIndex, filepath.Join(dirPath, name), segs, tail)
		}
		// Without an index the directory itself matches; nothing is appended.
		return r.result(Directory, dirPath, segs, tail)
	}

	return Resolution{}
}

// resolveDirectory handles specifiers that name a directory outright, such
// as "..", "./" or "./components/". They are never given a suffix, and an
// existing directory resolves even without an index file.
func (r *Resolver) resolveDirectory(cur string, segs []string, tail string) Resolution {
	last := len(segs) - 1
	switch base := segs[last]; base {
	case ".", "":
	case "..":
		cur = filepath.Dir(cur)
	default:
		d, ok := r.lister.Find(cur, base, pathcase.DirKind)
		if !ok {
			return Resolution{}
		}
		segs[last] = d.Name
		cur = filepath.Join(cur, d.Name)
	}

	if name, ok := r.findIndex(cur); ok {
		return r.result(DirectoryIndex, filepath.Join(cur, name), segs, tail)
	}
	return r.result(Directory, cur, segs, tail)
}

func (r *Resolver) findIndex(dir string) (string, bool) {
	for _, ext := range r.exts {
		if e, ok := r.lister.Find(dir, r.index+ext, pathcase.FileKind); ok {
			return e.Name, true
		}
	}
	return "", false
}

func (r *Resolver) result(form Form, path string, segs []string, tail string) Resolution {
	return Resolution{
		Form:      form,
		Path:      path,
		Specifier: strings.Join(segs, "/") + tail,
	}
}

// splitQuery separates a trailing ?query or #fragment, as bundlers allow.
func splitQuery(specifier string) (string, string) {
	if i := strings.IndexAny(specifier, "?#"); i > 0 {
		return specifier[:i], specifier[i:]
	}
	return specifier, ""
}
