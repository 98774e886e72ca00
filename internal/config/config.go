package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the project directory given
// on the command line. --config overrides it.
const DefaultFile = "casefold.yaml"

type RenameMode string

const (
	RenameAuto    RenameMode = "auto"
	RenameDirect  RenameMode = "direct"
	RenameTwoStep RenameMode = "two-step"
)

type ExtensionPolicy string

const (
	// PolicyExplicit appends the matched extension or /index file to the specifier.
	PolicyExplicit ExtensionPolicy = "explicit"
	// PolicyPreserve only corrects casing of the segments already written.
	PolicyPreserve ExtensionPolicy = "preserve"
)

type Config struct {
	Target          string          `yaml:"target"`
	Extensions      []string        `yaml:"extensions"`
	Skip            []string        `yaml:"skip"`
	Index           string          `yaml:"index"`
	RenameMode      RenameMode      `yaml:"rename_mode"`
	ExtensionPolicy ExtensionPolicy `yaml:"extension_policy"`
}

func DefaultConfig() *Config {
	return &Config{
		Target:          ".",
		Extensions:      []string{".js", ".jsx", ".ts", ".tsx"},
		Skip:            []string{"node_modules", ".git", "dist", "build", "out"},
		Index:           "index",
		RenameMode:      RenameAuto,
		ExtensionPolicy: PolicyExplicit,
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes extensions and checks enum values.
func (c *Config) Validate() error {
	if c.Target == "" {
		c.Target = "."
	}
	if c.Index == "" {
		c.Index = "index"
	}
	if c.RenameMode == "" {
		c.RenameMode = RenameAuto
	}
	if c.ExtensionPolicy == "" {
		c.ExtensionPolicy = PolicyExplicit
	}

	c.Extensions = normalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		return errors.New("config: at least one source extension is required")
	}

	skip := c.Skip[:0]
	for _, name := range c.Skip {
		name = strings.Trim(strings.TrimSpace(name), "/")
		if name != "" {
			skip = append(skip, name)
		}
	}
	c.Skip = skip

	switch c.RenameMode {
	case RenameAuto, RenameDirect, RenameTwoStep:
	default:
		return fmt.Errorf("config: unknown rename_mode %q", c.RenameMode)
	}
	switch c.ExtensionPolicy {
	case PolicyExplicit, PolicyPreserve:
	default:
		return fmt.Errorf("config: unknown extension_policy %q", c.ExtensionPolicy)
	}
	return nil
}

// SkipSet returns the ignored directory names as a lookup set.
func (c *Config) SkipSet() map[string]bool {
	set := make(map[string]bool, len(c.Skip))
	for _, name := range c.Skip {
		set[name] = true
	}
	return set
}

// HasExtension reports whether the extension of name is a recognized one.
func (c *Config) HasExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range c.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
