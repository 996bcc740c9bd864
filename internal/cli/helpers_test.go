package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const limitsSource = `//go:build lits

package limits

import "time"

const Timeout = lits.Duration("30m" * 2)

const Tick time.Duration = lits.Duration("1s" / 2)

const MaxBody uint32 = lits.Bytes("1 KiB")

var Launch = lits.Datetime("2000-01-01T00:00:00Z")
`

const badSource = `//go:build lits

package limits

const Bad = lits.Duration("forever")

const Small uint8 = lits.Bytes("1 KiB")
`

const pollManifest = `goPackage: "limits"

duration: Poll: {value: "5s", mul: 3}
`

// writeFiles creates files in a fresh temporary directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// runRoot executes the root command with args and returns stdout, stderr.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
