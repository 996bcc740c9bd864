// Package config loads .lits.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the target directory upwards.
const FileName = ".lits.yaml"

// Config holds generator settings.
type Config struct {
	// Tag is the build tag marking Go declaration files.
	Tag string `yaml:"tag"`
	// Marker is the package selector of marker calls.
	Marker string `yaml:"marker"`
	// Suffix names generated files: <stem><suffix>.
	Suffix string `yaml:"suffix"`
	// Comments adds a human-readable line above each generated declaration.
	Comments *bool `yaml:"comments"`
	// Manifests enables reading .cue manifests next to Go declaration files.
	Manifests *bool `yaml:"manifests"`

	// Path is where the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	yes := true
	return &Config{
		Tag:       "lits",
		Marker:    "lits",
		Suffix:    "_gen.go",
		Comments:  &yes,
		Manifests: &yes,
	}
}

// WantComments reports whether generated declarations get comments.
func (c *Config) WantComments() bool {
	return c.Comments == nil || *c.Comments
}

// WantManifests reports whether CUE manifests are read.
func (c *Config) WantManifests() bool {
	return c.Manifests == nil || *c.Manifests
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs []error
	if !token.IsIdentifier(c.Tag) {
		errs = append(errs, fmt.Errorf("tag %q is not a valid build tag", c.Tag))
	}
	if !token.IsIdentifier(c.Marker) {
		errs = append(errs, fmt.Errorf("marker %q is not a Go identifier", c.Marker))
	}
	if !strings.HasSuffix(c.Suffix, ".go") || strings.ContainsRune(c.Suffix, filepath.Separator) {
		errs = append(errs, fmt.Errorf("suffix %q must end in .go and contain no path separator", c.Suffix))
	}
	if strings.HasSuffix(c.Suffix, "_test.go") {
		errs = append(errs, fmt.Errorf("suffix %q would generate test files", c.Suffix))
	}
	return errors.Join(errs...)
}

// Parse decodes config data over the defaults. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Find looks for FileName in dir and its parents and loads the first one.
// With no file anywhere it returns Default().
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(abs, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}
