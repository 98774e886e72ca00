// Package pathcase holds the name folding and case-insensitive lookup
// shared by the normalizer and the import repairer.
package pathcase

import (
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lower returns the full Unicode lowercase form of name.
func Lower(name string) string {
	return cases.Lower(language.Und).String(name)
}

// IsLower reports whether name is already in its lowercase form.
func IsLower(name string) bool {
	return Lower(name) == name
}

// Key is the comparison key for case-insensitive name matching. Names are
// NFC-normalized first so decomposed names (as stored by macOS) still match.
func Key(name string) string {
	return Lower(norm.NFC.String(name))
}

// IsCaseInsensitive checks whether the filesystem holding dir folds case.
// It creates a mixed-case temp file and stats its lowercase twin. Any error
// is treated as a case-sensitive filesystem.
func IsCaseInsensitive(dir string) bool {
	f, err := os.CreateTemp(dir, ".CaseFold-Check-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	defer os.Remove(name)

	lower := filepath.Join(filepath.Dir(name), Lower(filepath.Base(name)))
	a, err := os.Stat(name)
	if err != nil {
		return false
	}
	b, err := os.Stat(lower)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}
