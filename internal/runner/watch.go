package runner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// Watcher re-parses files below a set of directories when they change.
// Each changed file is parsed again as a whole.
type Watcher struct {
	runner    *Runner
	watcher   *fsnotify.Watcher
	roots     []string
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Watch registers dirs and their subdirectories with a file system watcher.
// Directories whose name starts with a dot are skipped. Nothing is parsed until
// Run is called.
func (r *Runner) Watch(dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}

	w := &Watcher{runner: r, watcher: fw, logger: r.logger}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			_ = fw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve watch path").
				WithContext("path", dir).
				Build()
		}
		if err := w.addTree(abs); err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}
	// Longest root first so nested roots win when computing ids.
	sort.Slice(w.roots, func(i, j int) bool { return len(w.roots[i]) > len(w.roots[j]) })
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", root).
			Build()
	}
	return nil
}

// Close releases the underlying file system watcher. It is safe to call more
// than once and after Run returned.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}

// Run processes events until ctx is done, then closes the watcher. Bursts of
// events are coalesced: files are parsed once no event arrived for the
// runner's debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Watching for changes", "dirs", w.roots, "debounce", w.runner.debounce.String())

	pending := make(map[string]source)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(err))

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			src, ok := w.handle(event)
			if !ok {
				continue
			}
			pending[src.path] = src
			if timer == nil {
				timer = time.NewTimer(w.runner.debounce)
			} else {
				timer.Reset(w.runner.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.flush(ctx, pending)
			pending = make(map[string]source)
		}
	}
}

// handle filters an event down to a file that needs parsing. New directories
// are added to the watch set.
func (w *Watcher) handle(event fsnotify.Event) (source, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return source{}, false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return source{}, false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return source{}, false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
		}
		return source{}, false
	}
	if !info.Mode().IsRegular() {
		return source{}, false
	}
	return source{path: event.Name, id: w.idFor(event.Name)}, true
}

func (w *Watcher) idFor(p string) string {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func (w *Watcher) flush(ctx context.Context, pending map[string]source) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		res := w.runner.processFile(ctx, w.logger, pending[p])
		w.runner.observe(res)
		if res.Err == nil {
			w.logger.Info("Re-parsed file", logfields.ID(res.ID), "outcome", string(res.Outcome))
		}
	}
}
