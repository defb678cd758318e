// Package watch redraws a chart when its CSV file changes on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Scheduler queues a debounced redraw. *chart.Controller satisfies it
type Scheduler interface {
	Schedule()
}

// Watcher follows one file. It watches the parent directory so editors that replace the file
// through a rename are still seen.
type Watcher struct {
	path    string
	target  Scheduler
	log     *slog.Logger
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching bool
	stopOnce sync.Once
	done     chan struct{}
}

func New(path string, target Scheduler, log *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		path:    abs,
		target:  target,
		log:     log.With("path", abs),
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. Events are processed until ctx ends or Stop is called
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.path), err)
	}
	go w.processEvents(ctx)
	w.log.Info("watch.started")
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("watch.changed", "op", event.Op.String())
			w.target.Schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch.error", "error", err)
		}
	}
}

// relevant keeps content changes to the watched file. Removal alone is ignored: the redraw
// happens when the replacement appears.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
