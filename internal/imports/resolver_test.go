package imports

import (
	"os"
	"path/filepath"
	"testing"

	"casefold/internal/config"
)

func createFiles(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		fullPath := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte("export default 1;\n"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func newResolver(policy config.ExtensionPolicy) *Resolver {
	cfg := config.DefaultConfig()
	cfg.ExtensionPolicy = policy
	return NewResolver(cfg)
}

func TestResolve_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{
		"utils/helper.js",
		"other/thing.js",
		"components/agents/index.jsx",
		"components/login.jsx",
		"styles/app.css",
		"lib/config.js",
		"lib/index.ts",
	})
	from := filepath.Join(tmpDir, "utils")

	tests := []struct {
		spec string
		want string
		form Form
	}{
		{"../Other/Thing", "../other/thing.js", WithExtension},
		{"../other/thing.js", "../other/thing.js", Exact},
		{"../Other/Thing.JS", "../other/thing.js", Exact},
		{"./Helper", "./helper.js", WithExtension},
		{"../Components/Agents", "../components/agents/index.jsx", DirectoryIndex},
		{"../Components/Login", "../components/login.jsx", WithExtension},
		{"../Styles/App.css", "../styles/app.css", Exact},
		{"../Styles/App.css?inline", "../styles/app.css?inline", Exact},
		{"../Lib/", "../lib/", DirectoryIndex},
		{"../lib/Config", "../lib/config.js", WithExtension},
	}

	r := newResolver(config.PolicyExplicit)
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			res := r.Resolve(from, tt.spec)
			if !res.Found() {
				t.Fatalf("Resolve(%q) was unresolved", tt.spec)
			}
			if res.Specifier != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.spec, res.Specifier, tt.want)
			}
			if res.Form != tt.form {
				t.Errorf("Resolve(%q) form = %v, want %v", tt.spec, res.Form, tt.form)
			}
			if _, err := os.Stat(res.Path); err != nil {
				t.Errorf("Resolved path does not exist: %v", err)
			}
		})
	}
}

func TestResolve_Preserve(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{
		"app.jsx",
		"foo.js",
		"components/agents/index.jsx",
	})

	tests := []struct {
		spec string
		want string
	}{
		{"./Foo", "./foo"},
		{"./foo", "./foo"},
		{"./Foo.js", "./foo.js"},
		{"./Components/Agents", "./components/agents"},
		{"./App", "./app"},
	}

	r := newResolver(config.PolicyPreserve)
	for _, tt := range tests {
		res := r.Resolve(tmpDir, tt.spec)
		if !res.Found() {
			t.Errorf("Resolve(%q) was unresolved", tt.spec)
			continue
		}
		if res.Specifier != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.spec, res.Specifier, tt.want)
		}
	}
}

func TestResolve_DirectoryReferences(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"index.js", "sub/file.js"})

	r := newResolver(config.PolicyExplicit)
	from := filepath.Join(tmpDir, "sub")

	for _, spec := range []string{"..", "../"} {
		res := r.Resolve(from, spec)
		if !res.Found() || res.Specifier != spec {
			t.Errorf("Resolve(%q) = %+v, want unchanged and found", spec, res)
		}
	}

	res := r.Resolve(from, ".")
	if res.Form != Directory || res.Specifier != "." {
		t.Errorf("Resolve(\".\") without an index file = %+v, want the directory itself", res)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"agents.jsx"})

	r := newResolver(config.PolicyExplicit)
	for _, spec := range []string{"./Agnets", "./Missing/Agents", "./Missing/", "./agents.jsx/x"} {
		if res := r.Resolve(tmpDir, spec); res.Found() {
			t.Errorf("Resolve(%q) should be unresolved, got %+v", spec, res)
		}
	}
}

func TestResolve_ExtensionBeforeDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"graph.js", "graph/index.js"})

	res := newResolver(config.PolicyExplicit).Resolve(tmpDir, "./Graph")
	if res.Form != WithExtension || res.Specifier != "./graph.js" {
		t.Errorf("Expected ./graph.js via extension, got %+v", res)
	}
}

func TestResolve_DirectoryWithoutIndex(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"assets/readme.md", "config/package.json"})

	for _, policy := range []config.ExtensionPolicy{config.PolicyExplicit, config.PolicyPreserve} {
		r := newResolver(policy)

		tests := map[string]string{
			"./Assets":  "./assets",
			"./Config":  "./config",
			"./Config/": "./config/",
		}
		for spec, want := range tests {
			res := r.Resolve(tmpDir, spec)
			if res.Form != Directory {
				t.Errorf("%s: Resolve(%q) form = %v, want %v", policy, spec, res.Form, Directory)
			}
			if res.Specifier != want {
				t.Errorf("%s: Resolve(%q) = %q, want %q", policy, spec, res.Specifier, want)
			}
			if res.Path != filepath.Join(tmpDir, filepath.Base(want)) {
				t.Errorf("%s: Resolve(%q) path = %q", policy, spec, res.Path)
			}
		}
	}
}
