package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchUser is recorded as the author of candidates ingested from the drop
// folder, where no authenticated user exists.
const watchUser = "watcher"

// defaultQuietWindow is how long a drop file must go without writes before
// it is submitted. Producers that create the file first and stream the
// payload afterwards keep resetting the window, so only the complete file is
// picked up.
const defaultQuietWindow = 500 * time.Millisecond

// Watcher feeds a drop folder into the upload pipeline. Files with a .b64
// extension written into the watched directory are submitted as jobs under
// their base name and removed afterwards.
type Watcher struct {
	coord *Coordinator
	fs    *fsnotify.Watcher
	log   *slog.Logger
	quiet time.Duration
	done  chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewWatcher starts watching dir. Files already present are submitted
// immediately, so uploads dropped while the service was down are not lost.
func NewWatcher(coord *Coordinator, dir string, log *slog.Logger) (*Watcher, error) {
	return newWatcher(coord, dir, log, defaultQuietWindow)
}

func newWatcher(coord *Coordinator, dir string, log *slog.Logger, quiet time.Duration) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ingest: creating watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("ingest: watching %s: %w", dir, err)
	}

	w := &Watcher{
		coord:   coord,
		fs:      fs,
		log:     log,
		quiet:   quiet,
		done:    make(chan struct{}),
		pending: map[string]*time.Timer{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("ingest: listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.submitFile(filepath.Join(dir, e.Name()))
		}
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher and cancels files still inside their quiet window.
// Jobs already submitted keep running; wait on the coordinator for those.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				w.schedule(ev.Name)
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				w.cancel(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

// schedule arms, or re-arms, the quiet-window timer for path. Every write
// pushes the submission out again, so a file being streamed in is only read
// once its producer has gone silent.
func (w *Watcher) schedule(path string) {
	if !strings.EqualFold(filepath.Ext(path), ".b64") {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.quiet)
		return
	}
	w.pending[path] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.submitFile(path)
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) submitFile(path string) {
	if !strings.EqualFold(filepath.Ext(path), ".b64") {
		return
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		w.log.Error("reading dropped file", "path", path, "error", err)
		return
	}

	name := filepath.Base(path)
	if _, err := w.coord.Submit(context.Background(), name, strings.TrimSpace(string(payload)), watchUser); err != nil {
		w.log.Error("submitting dropped file", "path", path, "error", err)
		return
	}
	w.log.Info("submitted dropped file", "file", name)

	if err := os.Remove(path); err != nil {
		w.log.Warn("removing dropped file", "path", path, "error", err)
	}
}
