// Package watch reclassifies test files as they change on disk. It is
// advisory tooling for contributors moving tests between tiers; nothing
// here is on the CI routing path.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// Event is one debounced classification of a changed file.
type Event struct {
	Path         string    `json:"path"`
	TierID       tier.ID   `json:"tier,omitempty"`
	Kind         tier.Kind `json:"kind,omitempty"`
	Unclassified bool      `json:"unclassified,omitempty"`
}

// Options configures a watch session.
type Options struct {
	ProjectDir string
	TestsRoot  string
	// Matcher classifies changed files; nil uses the default catalog.
	Matcher *tier.Matcher
	// Debounce collapses bursts of events per path.
	Debounce time.Duration
	Logger   *log.Logger
	// OnEvent receives every debounced classification; used by the CLI
	// for output and by tests.
	OnEvent func(Event)
}

// Run watches the tests tree until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := opts.Matcher
	if m == nil {
		m = tier.NewMatcher(nil)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := filepath.Join(opts.ProjectDir, opts.TestsRoot)
	if err := addRecursive(watcher, root); err != nil {
		return err
	}
	logger.Info("watching tests tree", "root", root)

	deb := newDebouncer(opts.Debounce)
	defer deb.stop()

	classify := func(p string) {
		rel, err := filepath.Rel(opts.ProjectDir, p)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)

		ev := Event{Path: rel}
		match, cerr := m.Classify(rel)
		switch {
		case cerr == nil:
			ev.TierID = match.Tier.ID
			ev.Kind = match.Pattern.Kind
			logger.Info("classified", "path", rel, "tier", match.Tier.ID, "kind", match.Pattern.Kind)
		case errors.Is(cerr, tier.ErrUnclassified):
			ev.Unclassified = true
			logger.Warn("unclassified test file, add a pattern or move it", "path", rel)
		default:
			logger.Error("classify failed", "path", rel, "err", cerr)
			return
		}
		if opts.OnEvent != nil {
			opts.OnEvent(ev)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fe, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if fe.Op.Has(fsnotify.Create) {
				// New directories need their own watch.
				if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, fe.Name)
					continue
				}
			}
			if !fe.Op.Has(fsnotify.Create) && !fe.Op.Has(fsnotify.Write) && !fe.Op.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(fe.Name)
			if strings.HasPrefix(name, ".") || !watchableExt(name) {
				continue
			}
			deb.trigger(fe.Name, classify)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", werr)
		}
	}
}

func watchableExt(name string) bool {
	return strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".json")
}

// addRecursive watches dir and every subdirectory, skipping hidden dirs
// and caches. Missing paths are ignored: a Create event may race the
// file's removal.
func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || name == "__pycache__") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// debouncer collapses rapid event bursts per path into one callback.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) trigger(path string, fn func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		fn(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = map[string]*time.Timer{}
}
