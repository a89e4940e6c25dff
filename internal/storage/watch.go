package storage

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gitlab.com/tozd/go/errors"
)

// Watcher reports changes to a single document file. The parent directory
// is watched so that atomic replacement by rename is seen as well.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	// OnError receives watcher errors. They don't stop the watcher.
	OnError func(error)
}

// NewWatcher starts watching path. A burst of changes is reported once,
// debounce after the last change of the burst.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, errors.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, debounce: debounce, watcher: w}, nil
}

// Run calls onChange once the file has been quiet for the debounce period,
// until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
