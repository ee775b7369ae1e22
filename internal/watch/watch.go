// Package watch rebuilds the deck when content under a directory changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"slidedeck/internal/logging"
)

// DefaultDebounce collapses bursts of saves into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc runs one full build.
type RebuildFunc func(ctx context.Context) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(w *Watcher) { w.logger = logging.OrNop(l) } }

// Watcher triggers RebuildFunc after content under root settles.
type Watcher struct {
	root     string
	rebuild  RebuildFunc
	debounce time.Duration
	logger   logging.Logger
	fw       *fsnotify.Watcher
}

// New watches root and every directory below it.
func New(root string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, rebuild: rebuild, debounce: DefaultDebounce, logger: logging.Nop(), fw: fw}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is done, rebuilding after each settled burst of
// changes. Rebuild errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fw.Close() }()
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	w.logger.Info("watching content", "root", w.root, "debounce", w.debounce.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watch directory failed", "path", ev.Name, "error", err)
					}
				}
			}
			w.logger.Debug("content changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

// ignored filters store bookkeeping: metadata sidecars, temp files and the
// reorganizer's staging area.
func ignored(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".meta") || strings.HasPrefix(name, ".tmp-") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".staging" {
			return true
		}
	}
	return false
}
