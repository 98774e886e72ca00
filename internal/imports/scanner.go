// Package imports finds relative import and require specifiers in source
// files and rewrites them to the casing that exists on disk.
package imports

import (
	"regexp"
	"sort"
	"strings"
)

// Reference is one relative module specifier found in a source file.
type Reference struct {
	File      string
	Specifier string
	// Start and End are the byte offsets of Specifier in the file text.
	Start, End int
	Prefix     string
	Suffix     string
	Line       int
}

// Patterns are matched against raw text, not a parsed AST. Each has three
// groups: the text before the specifier, the specifier, and the closing text.
// A statement may span lines but not a semicolon or another quote, so
// lookalikes inside comments still match.
var patterns = []*regexp.Regexp{
	// import x from './x', import { a,\n b } from "./x", import type T from './t'
	regexp.MustCompile(`(\bimport\s[^'";]*?\bfrom\s*['"])([^'"\n]+)(['"])`),
	// export * from './x', export { a } from './x'
	regexp.MustCompile(`(\bexport\s[^'";]*?\bfrom\s*['"])([^'"\n]+)(['"])`),
	// import './styles.css'
	regexp.MustCompile(`(\bimport\s*['"])([^'"\n]+)(['"])`),
	// require('./x')
	regexp.MustCompile(`(\brequire\s*\(\s*['"])([^'"\n]+)(['"]\s*\))`),
	// import('./x')
	regexp.MustCompile(`(\bimport\s*\(\s*['"])([^'"\n]+)(['"]\s*\))`),
}

// IsRelative reports whether specifier is a relative module path. Bare
// package names, absolute paths and URLs are not.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Scan returns the relative references in content, ordered by position.
func Scan(file, content string) []Reference {
	byStart := make(map[int]Reference)
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			spec := content[m[4]:m[5]]
			if !IsRelative(spec) {
				continue
			}
			if _, seen := byStart[m[4]]; seen {
				continue
			}
			byStart[m[4]] = Reference{
				File:      file,
				Specifier: spec,
				Start:     m[4],
				End:       m[5],
				Prefix:    content[m[2]:m[3]],
				Suffix:    content[m[6]:m[7]],
			}
		}
	}

	refs := make([]Reference, 0, len(byStart))
	for _, ref := range byStart {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })

	line, pos := 1, 0
	for i := range refs {
		line += strings.Count(content[pos:refs[i].Start], "\n")
		pos = refs[i].Start
		refs[i].Line = line
	}
	return refs
}
