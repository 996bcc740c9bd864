package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/lits/internal/config"
)

// DefaultDebounce is how long watch waits after the last change before
// regenerating. Editors often write a file several times per save.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	GenerateOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{GenerateOptions: GenerateOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Regenerate whenever declarations change",
		Long: `Run generate for the given directories (default the current one), then
again whenever a declaration file, manifest or .lits.yaml in them changes.

Conversion errors are logged and the previous generated files are left in
place. Stops on interrupt.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			formatter := newFormatter(rootOpts, cmd)
			w := NewWatcher(opts, args, *formatter.Logger())
			if err := w.Run(cmd.Context()); err != nil {
				return outputError(formatter, ErrCodeGeneric, err.Error(), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Suffix, "suffix", "", "output file suffix (default from config)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "quiet period before regenerating")

	return cmd
}

// Watcher regenerates directories when their inputs change.
type Watcher struct {
	opts    *WatchOptions
	dirs    []string
	logger  zerolog.Logger
	outputs map[string]bool // generated files, ignored as inputs

	// onRun, when set, is called after every regeneration.
	onRun func(dir string, files []GeneratedFile, errs []error)
}

// NewWatcher creates a Watcher over dirs.
func NewWatcher(opts *WatchOptions, dirs []string, logger zerolog.Logger) *Watcher {
	return &Watcher{
		opts:    opts,
		dirs:    dirs,
		logger:  logger,
		outputs: make(map[string]bool),
	}
}

// Run generates every directory once, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	for _, dir := range w.dirs {
		w.regenerate(dir)
	}
	w.logger.Info().Strs("dirs", w.dirs).Msg("watching for changes")

	debounce := w.opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	pending := make(map[string]bool)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("input changed")

			pending[filepath.Dir(event.Name)] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			dirs := make([]string, 0, len(pending))
			for dir := range pending {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			clear(pending)
			for _, dir := range dirs {
				w.regenerate(dir)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info().Msg("stopped watching")
			return nil
		}
	}
}

// relevant reports whether event touches a declaration input.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.outputs[name] {
		return false
	}
	base := filepath.Base(name)
	switch {
	case base == config.FileName:
		return true
	case strings.HasSuffix(base, "_test.go"):
		return false
	case filepath.Ext(base) == ".go", filepath.Ext(base) == ".cue":
		return true
	}
	return false
}

func (w *Watcher) regenerate(dir string) {
	files, errs := generateDir(&w.opts.GenerateOptions, dir, &w.logger)
	for _, f := range files {
		w.outputs[filepath.Clean(f.Output)] = true
		if f.Status == StatusWritten {
			w.logger.Info().Str("file", f.Output).Int("literals", f.Count).Msg("generated")
		}
	}
	for _, err := range errs {
		d := NewDiagnostic(err)
		ev := w.logger.Error().Str("code", d.Code)
		if d.Pos != nil {
			ev = ev.Str("pos", d.Pos.String())
		}
		ev.Msg(d.Message)
	}
	if len(errs) > 0 {
		w.logger.Warn().Str("dir", dir).Int("errors", len(errs)).Msg("generation failed; previous output kept")
	}
	if w.onRun != nil {
		w.onRun(dir, files, errs)
	}
}
