package pathcase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLower(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"App.JSX", "app.jsx"},
		{"already.js", "already.js"},
		{"ÄRGER.ts", "ärger.ts"},
		{"MemoryUse.jsx", "memoryuse.jsx"},
	}

	for _, tt := range tests {
		if got := Lower(tt.in); got != tt.want {
			t.Errorf("Lower(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsLower(t *testing.T) {
	if !IsLower("agents.jsx") {
		t.Error("agents.jsx should be lowercase")
	}
	if IsLower("Agents.jsx") {
		t.Error("Agents.jsx should not be lowercase")
	}
}

func TestKey_NormalizationForms(t *testing.T) {
	// "é" precomposed vs "e" + combining acute.
	if Key("Caf\u00e9.js") != Key("cafe\u0301.js") {
		t.Error("NFC and NFD spellings should compare equal")
	}
	if Key("thing.js") == Key("things.js") {
		t.Error("Different names should not compare equal")
	}
}

func TestLister_FindPrefersExactMatch(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"Foo.js", "foo.js"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 2 {
		t.Skip("filesystem is case-insensitive")
	}

	l := NewLister()
	e, ok := l.Find(tmpDir, "foo.js", FileKind)
	if !ok || e.Name != "foo.js" {
		t.Errorf("Expected exact match foo.js, got %+v (ok=%v)", e, ok)
	}
	e, ok = l.Find(tmpDir, "FOO.js", FileKind)
	if !ok || Key(e.Name) != "foo.js" {
		t.Errorf("Expected case-insensitive match, got %+v (ok=%v)", e, ok)
	}
}

func TestLister_FindKinds(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "components"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "thing.js"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	l := NewLister()
	if _, ok := l.Find(tmpDir, "Components", FileKind); ok {
		t.Error("A directory should not match FileKind")
	}
	if e, ok := l.Find(tmpDir, "Components", DirKind); !ok || e.Name != "components" {
		t.Errorf("Expected directory components, got %+v (ok=%v)", e, ok)
	}
	if _, ok := l.Find(tmpDir, "Thing.JS", AnyKind); !ok {
		t.Error("Thing.JS should match thing.js")
	}
	if _, ok := l.Find(filepath.Join(tmpDir, "missing"), "x", AnyKind); ok {
		t.Error("Listing a missing directory should not match")
	}
}

func TestIsCaseInsensitive_LeavesNoTempFile(t *testing.T) {
	tmpDir := t.TempDir()

	IsCaseInsensitive(tmpDir)

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Temp file was left behind: %v", entries)
	}
}
