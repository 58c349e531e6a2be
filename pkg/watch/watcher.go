// Package watch reports debounced file changes under a project directory.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/logging"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a Change is
	// emitted. Zero or less means 100ms.
	Debounce time.Duration
	// Ignore holds .dockerignore-style patterns relative to the root.
	Ignore []string
	Logger *logrus.Entry
}

// Change is one debounced batch of modified paths, relative to the root.
type Change struct {
	Paths []string
	Time  time.Time
}

// Watcher watches every non-ignored directory under a root.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	matcher  *patternmatcher.PatternMatcher
	debounce time.Duration
	logger   *logrus.Entry

	changes chan Change

	mu      sync.Mutex
	pending map[string]struct{}
	watched map[string]bool
}

// New creates a Watcher for root and registers its directory tree.
func New(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.InvalidInput("watch root", err)
	}

	matcher, err := patternmatcher.New(opts.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid watch ignore pattern").
			WithDetail("patterns", opts.Ignore)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}

	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("watch")
	}

	w := &Watcher{
		root:     abs,
		watcher:  fw,
		matcher:  matcher,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		changes:  make(chan Change, 1),
		pending:  make(map[string]struct{}),
		watched:  make(map[string]bool),
	}

	if err := w.addTree(abs); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Changes delivers debounced batches. At most one batch waits unread;
// changes arriving while it waits are folded into the next one.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Ignored reports whether path (absolute or relative to the root) matches
// an ignore pattern, either itself or through a parent directory.
func (w *Watcher) Ignored(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(w.root, path)
		if err != nil {
			return false
		}
		rel = r
	}
	if rel == "." {
		return false
	}
	ignored, err := w.matcher.MatchesOrParentMatches(rel)
	if err != nil {
		w.logger.WithError(err).Debugf("Ignore match failed for %s", rel)
		return false
	}
	return ignored
}

// Run processes filesystem events until ctx is cancelled, then closes the
// watcher and the Changes channel.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")
		case <-timer.C:
			w.flush()
		case <-ctx.Done():
			return nil
		}
	}
}

// handle records event and reports whether it counts as a change.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod || w.Ignored(event.Name) {
		return false
	}
	w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.WithError(err).Warnf("Failed to watch new directory %s", event.Name)
			}
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		rel = event.Name
	}

	w.mu.Lock()
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		delete(w.watched, event.Name)
	}
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
	return true
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	select {
	case w.changes <- Change{Paths: paths, Time: time.Now()}:
	default:
		w.logger.WithField("paths", paths).Debug("Change already queued")
	}
}

// addTree watches dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot watch directory").
					WithDetail("path", path)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.Ignored(path) {
			return filepath.SkipDir
		}

		w.mu.Lock()
		seen := w.watched[path]
		w.watched[path] = true
		w.mu.Unlock()
		if seen {
			return nil
		}

		if err := w.watcher.Add(path); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to watch directory").
				WithDetail("path", path)
		}
		return nil
	})
}

// Close stops the watcher without waiting for Run to return.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
