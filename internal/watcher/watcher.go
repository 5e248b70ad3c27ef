// Package watcher re-analyzes a repository tree when its files change and
// emits alerts when quality, security or organization scores regress.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/scanner"
)

// DefaultDebounce is the quiet period after the last change before a
// re-analysis starts.
const DefaultDebounce = 2 * time.Second

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// AnalyzeFunc runs one analysis of the watched tree.
type AnalyzeFunc func(ctx context.Context) (*engine.Report, error)

// Options configures a Watcher.
type Options struct {
	Debounce  time.Duration
	ScoreDrop float64
	Logger    *slog.Logger
	// OnReport, when set, receives every successful analysis.
	OnReport func(*engine.Report)
	// Now is the clock stamped on states; nil means time.Now.
	Now func() time.Time
}

// Watcher re-runs an analysis after file changes settle and compares each
// run with the previous one.
type Watcher struct {
	root          string
	analyze       AnalyzeFunc
	alertFn       func(Alert)
	opts          Options
	log           *slog.Logger
	previous      *State
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
}

// New creates a Watcher for the tree at root.
func New(root string, analyze AnalyzeFunc, alertFn func(Alert), opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		root:          root,
		analyze:       analyze,
		alertFn:       alertFn,
		opts:          opts,
		log:           log,
		lastAlertKeys: make(map[string]bool),
	}
}

// Run takes a baseline analysis, then re-analyzes after every burst of
// changes. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}

	state, err := w.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial analysis: %w", err)
	}
	w.previous = state

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch; errors mean it was a file.
				_ = w.addTree(fsw, ev.Name)
			}
			w.log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "err", err)

		case <-timer.C:
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single cycle: analyzes, compares against the previous
// state, updates it, and returns any alerts. Identical alerts are suppressed
// until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Analysis failed",
			Message: fmt.Sprintf("Could not analyze %s: %v", w.root, err),
			Time:    w.opts.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr, w.opts.ScoreDrop)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

func (w *Watcher) snapshot(ctx context.Context) (*State, error) {
	report, err := w.analyze(ctx)
	if err != nil {
		return nil, err
	}
	if w.opts.OnReport != nil {
		w.opts.OnReport(report)
	}
	return StateFromReport(report, w.opts.Now()), nil
}

// relevant drops attribute-only events and anything inside a hidden
// directory, which the scanner never visits either. Hidden files in visited
// directories (.env) stay relevant since the scanner records them.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return w.relevantPath(ev.Name)
}

func (w *Watcher) relevantPath(name string) bool {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if scanner.IsHidden(dir) {
			return false
		}
	}
	return true
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if path == dir {
				return errors.New("not a directory")
			}
			return nil
		}
		if path != dir && scanner.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.log.Debug("cannot watch directory", "path", path, "err", err)
		}
		return nil
	})
}
