package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `name: minimal
description: One duration
files:
  limits.go: |
    //go:build lits

    package limits

    const Retry = lits.Duration("30m" * 2)
expect:
  - type: value
    name: Retry
    human: 1 hour
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "One duration", s.Description)
	require.Contains(t, s.Files, "limits.go")
	assert.Contains(t, s.Files["limits.go"], `lits.Duration("30m" * 2)`)
	require.Len(t, s.Expect, 1)
	assert.Equal(t, ExpectValue, s.Expect[0].Type)
	assert.Equal(t, "Retry", s.Expect[0].Name)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "expects: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nfiles: {a.go: x}\nexpect: [{type: error_count}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nfiles: {a.go: x}\nexpect: [{type: error_count}]\n",
			want: "description is required",
		},
		{
			name: "no files",
			yaml: "name: n\ndescription: d\nexpect: [{type: error_count}]\n",
			want: "files map is required",
		},
		{
			name: "no expectations",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\n",
			want: "expect list is required",
		},
		{
			name: "nested file",
			yaml: "name: n\ndescription: d\nfiles: {sub/a.go: x}\nexpect: [{type: error_count}]\n",
			want: "must be a plain file name",
		},
		{
			name: "unknown expectation",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\nexpect: [{type: trace_order}]\n",
			want: `unknown expectation type "trace_order"`,
		},
		{
			name: "value without name",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\nexpect: [{type: value, value: \"1\"}]\n",
			want: "name is required for value",
		},
		{
			name: "value without anything to compare",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\nexpect: [{type: value, name: A}]\n",
			want: "value or human is required",
		},
		{
			name: "error without code",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\nexpect: [{type: error, line: 3}]\n",
			want: "code is required for error",
		},
		{
			name: "negative count",
			yaml: "name: n\ndescription: d\nfiles: {a.go: x}\nexpect: [{type: error_count, count: -1}]\n",
			want: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(minimalScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(minimalScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	assert.Len(t, scenarios, 2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("name: broken\n"), 0644))
	_, err = LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
}
