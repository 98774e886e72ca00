package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompare_RenameEditDelete(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"App.jsx":  "app",
		"util.js":  "export {};",
		"other.js": "",
	})
	before := take(t, tmpDir, nil)

	if err := os.Rename(filepath.Join(tmpDir, "App.jsx"), filepath.Join(tmpDir, "app.jsx")); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := os.Remove(filepath.Join(tmpDir, "other.js")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	createFiles(t, tmpDir, map[string]string{
		"util.js":    "export default 1;",
		"lib/new.js": "",
	})
	after := take(t, tmpDir, nil)

	diff := Compare(before, after)
	if !diff.HasChanges() {
		t.Fatal("Expected changes")
	}

	check := func(name string, changes []Change, want []string) {
		t.Helper()
		if len(changes) != len(want) {
			t.Fatalf("%s: expected %v, got %+v", name, want, changes)
		}
		for i, w := range want {
			if changes[i].Path != w {
				t.Errorf("%s[%d]: expected %s, got %s", name, i, w, changes[i].Path)
			}
		}
	}
	check("Added", diff.Added, []string{"app.jsx", "lib", "lib/new.js"})
	check("Modified", diff.Modified, []string{"util.js"})
	check("Deleted", diff.Deleted, []string{"App.jsx", "other.js"})

	report := FormatDiff(diff)
	for _, want := range []string{"+ lib/", "~ util.js", "- App.jsx", "Summary: 3 added, 1 modified, 2 deleted"} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q:\n%s", want, report)
		}
	}
}

func TestCompare_NoChanges(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{"a.js": "a", "b/c.js": "c"})

	diff := Compare(take(t, tmpDir, nil), take(t, tmpDir, nil))
	if diff.HasChanges() {
		t.Errorf("Unchanged tree reported changes: %+v", diff)
	}
	if got := FormatDiff(diff); got != "No changes detected.\n" {
		t.Errorf("Unexpected report %q", got)
	}
}
