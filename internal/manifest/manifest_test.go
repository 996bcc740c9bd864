package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
)

const limitsManifest = `goPackage: "config"

duration: {
	Timeout: "1h"
	Retry: {value: "30m", mul: 2}
	Tick: {value: "1s", div: 2.0}
}

datetime: Launch: "2000-01-01T00:00:00Z"

bytes: {
	Page: "4 KiB"
	MaxBody: {value: "1 KiB", type: "uint32"}
}
`

func TestParseFile(t *testing.T) {
	f, errs := ParseFile("limits.cue", []byte(limitsManifest))
	require.Empty(t, errs)
	require.NotNil(t, f)

	assert.Equal(t, "config", f.Package)
	assert.Equal(t, "limits.cue", f.Path)
	require.Len(t, f.Decls, 6)

	names := make([]string, len(f.Decls))
	for i, d := range f.Decls {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Timeout", "Retry", "Tick", "Launch", "Page", "MaxBody"}, names)

	timeout := f.Decls[0]
	assert.Equal(t, ir.KindDuration, timeout.Kind)
	assert.Equal(t, ir.StorageConst, timeout.Storage)
	assert.Nil(t, timeout.Duration.Modifier)
	assert.Equal(t, `"1h"`, timeout.Expr)
	assert.Equal(t, 4, timeout.Duration.Text.Span.Start.Line)

	retry := f.Decls[1]
	require.NotNil(t, retry.Duration.Modifier)
	assert.Equal(t, lits.Multiply, retry.Duration.Modifier.Op)
	assert.Equal(t, 2.0, retry.Duration.Modifier.Number)
	assert.Equal(t, `"30m" * 2`, retry.Expr)

	tick := f.Decls[2]
	assert.Equal(t, lits.Divide, tick.Duration.Modifier.Op)
	assert.Equal(t, 0.5, tick.Duration.Scalar())

	launch := f.Decls[3]
	assert.Equal(t, ir.KindDatetime, launch.Kind)
	assert.Equal(t, ir.StorageVar, launch.Storage)
	assert.Equal(t, "2000-01-01T00:00:00Z", launch.Text.Value)

	maxBody := f.Decls[5]
	assert.Equal(t, "uint32", maxBody.TypeName)
	assert.Equal(t, "1 KiB", maxBody.Text.Value)
	assert.Equal(t, 13, maxBody.TypePos.Line)
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{
			name: "missing package",
			src:  "duration: A: \"1h\"\n",
			msg:  "goPackage is required",
		},
		{
			name: "bad package",
			src:  "goPackage: \"my-pkg\"\n",
			line: 1,
			msg:  "not a Go identifier",
		},
		{
			name: "mul and div",
			src:  "goPackage: \"p\"\nduration: A: {value: \"1h\", mul: 2, div: 3}\n",
			line: 2,
			msg:  "mutually exclusive",
		},
		{
			name: "number instead of string",
			src:  "goPackage: \"p\"\nbytes: A: 1024\n",
			line: 2,
			msg:  "expected string literal",
		},
		{
			name: "string modifier",
			src:  "goPackage: \"p\"\nduration: A: {value: \"1h\", mul: \"2\"}\n",
			line: 2,
			msg:  "expected integer or float literal",
		},
		{
			name: "datetime struct",
			src:  "goPackage: \"p\"\ndatetime: A: {value: \"2000-01-01T00:00:00Z\"}\n",
			line: 2,
			msg:  "datetime must be a string",
		},
		{
			name: "quoted label",
			src:  "goPackage: \"p\"\nduration: \"not-go\": \"1h\"\n",
			line: 2,
			msg:  "not a Go identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseFile("m.cue", []byte(tt.src))
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.msg)

			var pos lits.Pos
			if le, ok := lits.AsError(errs[0]); ok {
				pos = le.Span.Start
			} else {
				var ce *ir.CompileError
				require.ErrorAs(t, errs[0], &ce)
				pos = ce.Pos
			}
			if tt.line > 0 {
				assert.Equal(t, tt.line, pos.Line)
			}
		})
	}
}

func TestParseFileInvalidCUE(t *testing.T) {
	_, errs := ParseFile("m.cue", []byte("goPackage: \"p\"\nduration: {\n"))
	require.NotEmpty(t, errs)

	var ce *ir.CompileError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, ir.FieldSyntax, ce.Field)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cue"), []byte("goPackage: \"p\"\nbytes: B: \"1 kB\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("goPackage: \"p\"\nduration: A: \"1h\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	files, errs := LoadDir(dir)
	require.Empty(t, errs)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.cue"), files[0].Path)
	assert.Equal(t, "A", files[0].Decls[0].Name)
	assert.Equal(t, "B", files[1].Decls[0].Name)
}

func TestLoadDirMissing(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Len(t, errs, 1)

	var ce *ir.CompileError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, ir.FieldLoad, ce.Field)
}
