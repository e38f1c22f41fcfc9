// Package watch turns file system events under the data directories into
// reload requests. Events are debounced and a reload is only requested when
// the JSON content actually changed.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/zeusync/provision/internal/core/observability/log"
)

const DefaultDebounce = 250 * time.Millisecond

// Change is one reload request.
type Change struct {
	// Paths are the JSON files touched since the previous request.
	Paths  []string
	Digest uint64
}

// Watcher is safe to Close from any goroutine; Run must be called once.
type Watcher struct {
	log      log.Log
	fs       *fsnotify.Watcher
	dirs     []string
	debounce time.Duration

	reloads chan Change
	closeCh chan struct{}
	once    sync.Once

	pending map[string]struct{}
	digest  uint64
}

// New watches the existing directories among dirs. Missing ones are skipped.
func New(logger log.Log, dirs []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		log:      logger.With(log.Component("watch")),
		fs:       fsw,
		debounce: debounce,
		reloads:  make(chan Change, 1),
		closeCh:  make(chan struct{}),
		pending:  make(map[string]struct{}),
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			w.log.Debug("watch dir missing", log.String("dir", dir))
			continue
		}
		if err := fsw.Add(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				w.log.Debug("watch dir missing", log.String("dir", dir))
				continue
			}
			_ = fsw.Close()
			return nil, err
		}
		w.dirs = append(w.dirs, dir)
	}
	w.digest, _ = Digest(w.dirs)
	return w, nil
}

// Reloads delivers reload requests. It is closed when Run returns.
func (w *Watcher) Reloads() <-chan Change { return w.reloads }

// Dirs returns the directories actually watched.
func (w *Watcher) Dirs() []string { return slices.Clone(w.dirs) }

// Run processes events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.reloads)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isJSON(event.Name) {
				continue
			}
			w.pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", log.Error(err))
		case <-timer.C:
			if change, ok := w.flush(); ok {
				w.emit(change)
			}
		case <-w.closeCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flush turns the pending paths into a Change when the content digest moved.
func (w *Watcher) flush() (Change, bool) {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)

	sum, err := Digest(w.dirs)
	if err != nil {
		w.log.Warn("digest failed", log.Error(err))
		return Change{}, false
	}
	if sum == w.digest {
		w.log.Debug("content unchanged, reload skipped", log.Strings("paths", paths))
		return Change{}, false
	}
	w.digest = sum
	return Change{Paths: paths, Digest: sum}, true
}

// emit replaces an undelivered request so the host only sees the latest.
func (w *Watcher) emit(change Change) {
	for {
		select {
		case w.reloads <- change:
			return
		default:
		}
		select {
		case stale := <-w.reloads:
			change.Paths = mergePaths(stale.Paths, change.Paths)
		default:
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
	})
	return err
}

// Digest hashes every top-level JSON file of dirs, path and content, in
// lexical order.
func Digest(dirs []string) (uint64, error) {
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() && isJSON(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	slices.Sort(files)

	h := xxhash.New()
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, err
		}
		_, _ = h.WriteString(f)
		_, _ = h.Write(raw)
	}
	return h.Sum64(), nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func mergePaths(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
