package watches

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files. Parent directories are watched
// so files replaced by rename are still seen.
type Watcher struct {
	w      *fsnotify.Watcher
	files  map[string]bool
	events chan string
	errors chan error

	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
}

func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &Watcher{
		w:       w,
		files:   make(map[string]bool),
		events:  make(chan string, 128),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.Close()
			return nil, err
		}
		watcher.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	go watcher.loop()
	return watcher, nil
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			select {
			case w.events <- filepath.Clean(ev.Name):
			case <-w.done:
				return
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// Events yields absolute paths of changed files; closed after Close.
func (w *Watcher) Events() <-chan string { return w.events }
func (w *Watcher) Errors() <-chan error  { return w.errors }

// Close stops the watcher; safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	return w.w.Close()
}
