package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(dirs ...string) (*Watcher, chan []error, *bytes.Buffer) {
	opts := &WatchOptions{
		GenerateOptions: GenerateOptions{RootOptions: &RootOptions{Format: "text"}},
		Debounce:        50 * time.Millisecond,
	}
	logs := &bytes.Buffer{}
	w := NewWatcher(opts, dirs, zerolog.New(logs))
	runs := make(chan []error, 100)
	w.onRun = func(_ string, _ []GeneratedFile, errs []error) {
		runs <- errs
	}
	return w, runs, logs
}

// waitRun blocks until a regeneration satisfies ok.
func waitRun(t *testing.T, runs <-chan []error, ok func([]error) bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case errs := <-runs:
			if ok(errs) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for regeneration")
		}
	}
}

func TestWatcherRegeneratesOnChange(t *testing.T) {
	dir := writeFiles(t, map[string]string{"limits.go": limitsSource})
	source := filepath.Join(dir, "limits.go")
	output := filepath.Join(dir, "limits_gen.go")

	w, runs, logs := newTestWatcher(dir)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitRun(t, runs, func(errs []error) bool { return len(errs) == 0 })
	assert.Contains(t, readFile(t, output), "const Timeout = 3600*time.Second")

	updated := strings.Replace(limitsSource, `"30m" * 2`, `"30m" * 4`, 1)
	require.NoError(t, os.WriteFile(source, []byte(updated), 0644))
	waitRun(t, runs, func([]error) bool {
		return strings.Contains(readFile(t, output), "const Timeout = 7200*time.Second")
	})

	// A broken edit keeps the last good output.
	require.NoError(t, os.WriteFile(source, []byte(badSource), 0644))
	waitRun(t, runs, func(errs []error) bool { return len(errs) > 0 })
	assert.Contains(t, readFile(t, output), "const Timeout = 7200*time.Second")

	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, logs.String(), `"message":"generated"`)
	assert.Contains(t, logs.String(), `"code":"E202"`)
	assert.Contains(t, logs.String(), "previous output kept")
}

func TestWatcherMissingDirectory(t *testing.T) {
	w, _, _ := newTestWatcher(filepath.Join(t.TempDir(), "missing"))

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch ")
}

func TestWatcherRelevant(t *testing.T) {
	w, _, _ := newTestWatcher()
	w.outputs[filepath.Clean("/src/limits_gen.go")] = true

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"go source", fsnotify.Event{Name: "/src/limits.go", Op: fsnotify.Write}, true},
		{"manifest", fsnotify.Event{Name: "/src/limits.cue", Op: fsnotify.Create}, true},
		{"config", fsnotify.Event{Name: "/src/.lits.yaml", Op: fsnotify.Write}, true},
		{"removed", fsnotify.Event{Name: "/src/limits.go", Op: fsnotify.Remove}, true},
		{"generated output", fsnotify.Event{Name: "/src/limits_gen.go", Op: fsnotify.Write}, false},
		{"test file", fsnotify.Event{Name: "/src/limits_test.go", Op: fsnotify.Write}, false},
		{"other file", fsnotify.Event{Name: "/src/README.md", Op: fsnotify.Write}, false},
		{"chmod", fsnotify.Event{Name: "/src/limits.go", Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
