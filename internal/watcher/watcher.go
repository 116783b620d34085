// Package watcher reports edits to a single file, such as the config file,
// coalescing bursts of writes into one signal.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/backoffice/internal/log"
)

// DefaultDebounce is the quiet period after the last write before a change
// is reported.
const DefaultDebounce = 250 * time.Millisecond

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher signals on Changes whenever the watched file is written, created
// or renamed into place.
type Watcher struct {
	fs       *fsnotify.Watcher
	name     string
	path     string
	debounce time.Duration
	changes  chan struct{}
	quit     chan struct{}
	once     sync.Once
}

// File starts watching path. The parent directory is watched so editors
// that save by writing a temp file and renaming it are still seen.
func File(path string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		name:     filepath.Base(path),
		path:     path,
		debounce: DefaultDebounce,
		changes:  make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w.fs = fs

	log.Debug(log.CatWatcher, "Watching file", "path", path, "debounce", w.debounce)
	go w.run()
	return w, nil
}

// Changes receives one value per settled burst of edits. A signal that is
// not consumed absorbs later ones.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.quit)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	var settle *time.Timer
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-w.quit:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err, "path", w.path)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.touches(ev) {
				continue
			}
			if settle == nil {
				settle = time.AfterFunc(w.debounce, w.signal)
				continue
			}
			settle.Reset(w.debounce)
		}
	}
}

func (w *Watcher) signal() {
	select {
	case <-w.quit:
	case w.changes <- struct{}{}:
	default:
	}
}

// touches reports whether ev may have changed the watched file's contents.
func (w *Watcher) touches(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != w.name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
