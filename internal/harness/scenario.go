package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: one package directory of
// declaration sources and what converting it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the content of .lits.yaml for the scenario. Empty means
	// the defaults.
	Config string `yaml:"config,omitempty"`

	// Files maps file names to contents. Names must not contain a path
	// separator: everything lands in one package directory.
	Files map[string]string `yaml:"files"`

	// Expect lists the checks run against the result.
	Expect []Expectation `yaml:"expect"`
}

// Expectation is a single check on a scenario result.
type Expectation struct {
	// Type is one of the Expect* constants.
	Type string `yaml:"type"`

	// Name is the declaration checked by a value expectation.
	Name string `yaml:"name,omitempty"`
	// Value is the expected emitted Go expression.
	Value string `yaml:"value,omitempty"`
	// Human is the expected human-readable rendering.
	Human string `yaml:"human,omitempty"`

	// Code is the expected diagnostic code (error).
	Code string `yaml:"code,omitempty"`
	// Line restricts an error expectation to one source line.
	Line int `yaml:"line,omitempty"`
	// Contains is a fragment the diagnostic message must include.
	Contains string `yaml:"contains,omitempty"`

	// Count is the exact number of diagnostics (error_count).
	Count int `yaml:"count,omitempty"`
}

// Expectation type constants.
const (
	ExpectValue      = "value"
	ExpectError      = "error"
	ExpectErrorCount = "error_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Files) == 0 {
		return fmt.Errorf("files map is required and must be non-empty")
	}

	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}

	for name := range s.Files {
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("file name %q must be a plain file name", name)
		}
	}

	for i, e := range s.Expect {
		if err := validateExpectation(i, &e); err != nil {
			return err
		}
	}

	return nil
}

// validateExpectation validates a single expectation based on its type.
func validateExpectation(index int, e *Expectation) error {
	if e.Type == "" {
		return fmt.Errorf("expect[%d]: type is required", index)
	}

	switch e.Type {
	case ExpectValue:
		if e.Name == "" {
			return fmt.Errorf("expect[%d]: name is required for value", index)
		}
		if e.Value == "" && e.Human == "" {
			return fmt.Errorf("expect[%d]: value or human is required for value", index)
		}
	case ExpectError:
		if e.Code == "" {
			return fmt.Errorf("expect[%d]: code is required for error", index)
		}
		if e.Line < 0 {
			return fmt.Errorf("expect[%d]: line must be positive", index)
		}
	case ExpectErrorCount:
		if e.Count < 0 {
			return fmt.Errorf("expect[%d]: count must be non-negative for error_count", index)
		}
	default:
		return fmt.Errorf("expect[%d]: unknown expectation type %q", index, e.Type)
	}

	return nil
}
