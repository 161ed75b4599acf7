// Package watch runs a drop folder: audio files that appear in a directory
// are handed, one at a time, to a handler.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must go without further writes before it
// is treated as complete.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one settled file. Calls never overlap.
type Handler func(path string)

// Watcher feeds new files in a directory to a Handler.
type Watcher struct {
	dir    string
	exts   map[string]bool
	settle time.Duration
	handle Handler
}

// New creates a Watcher for dir that accepts files with one of exts
// (compared case-insensitively, with or without the leading dot).
func New(dir string, exts []string, handle Handler) *Watcher {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return &Watcher{dir: dir, exts: set, settle: DefaultSettle, handle: handle}
}

// SetSettle overrides DefaultSettle.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Matches reports whether path has an accepted extension.
func (w *Watcher) Matches(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// Run watches until ctx is cancelled. A file is queued once it has gone the
// settle period without writes; queued files are handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.dir, err)
	}
	slog.Info("watching directory", "dir", w.dir, "settle", w.settle)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan string, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case path := <-queue:
				w.handle(path)
			case <-ctx.Done():
				return
			}
		}
	}()

	var mu sync.Mutex
	debouncers := make(map[string]func(func()))
	settled := func(path string) func() {
		return func() {
			mu.Lock()
			delete(debouncers, path)
			mu.Unlock()
			if _, err := os.Stat(path); err != nil {
				slog.Debug("file vanished before it settled", "path", path)
				return
			}
			select {
			case queue <- path:
				slog.Debug("queued file", "path", path)
			case <-ctx.Done():
			}
		}
	}

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				cancel()
				<-done
				return nil
			}
			if !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) || !w.Matches(ev.Name) {
				continue
			}
			mu.Lock()
			d, ok := debouncers[ev.Name]
			if !ok {
				d = debounce.New(w.settle)
				debouncers[ev.Name] = d
			}
			mu.Unlock()
			d(settled(ev.Name))

		case err, ok := <-fw.Errors:
			if !ok {
				cancel()
				<-done
				return nil
			}
			slog.Warn("watcher error", "dir", w.dir, "error", err)

		case <-ctx.Done():
			<-done
			return nil
		}
	}
}
