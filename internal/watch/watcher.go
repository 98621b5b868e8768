// Package watch triggers rebuilds when content files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// DefaultDebounce coalesces bursts of editor writes into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors directory trees and calls OnChange after changes settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	roots    []string
	ignore   []string
	debounce time.Duration
	onChange func(ctx context.Context, changed []string)
}

// New watches roots recursively. Paths under any ignore prefix (for example
// the output directory) never trigger a rebuild.
func New(roots, ignore []string, onChange func(ctx context.Context, changed []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{watcher: fw, debounce: DefaultDebounce, onChange: onChange}
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve watch path: %w", err)
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

// WithDebounce overrides DefaultDebounce.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return err
		}
	}
	slog.Info("Watching for changes", slog.Any("paths", w.roots))

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = map[string]struct{}{}
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			pending = map[string]struct{}{}
			w.onChange(ctx, changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) || (p != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, ig := range w.ignore {
		if abs == ig || strings.HasPrefix(abs, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
