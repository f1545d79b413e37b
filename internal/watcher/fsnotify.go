package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/wex/internal/logging"
)

// Watcher calls a handler after the watched file changes.
type Watcher struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	path    string
	dir     string
	logger  *logging.Logger

	handler  func(Event)
	debounce *debouncer

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New watches path and calls handler, from a background goroutine, once
// a burst of changes has settled. The file need not exist yet but its
// directory must.
func New(path string, handler func(Event), opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		dir:     filepath.Dir(abs),
		logger:  logging.Nop(),
		handler: handler,
		closeCh: make(chan struct{}),
	}
	w.debounce = newDebouncer(DefaultDelay, w.fire)
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")

	if _, err := os.Stat(w.dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fsw

	w.closedWg.Add(1)
	go w.processLoop()

	w.logger.Debug("watching %s", w.path)
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Flush calls the handler now for changes still inside the debounce window.
func (w *Watcher) Flush() {
	w.debounce.flush()
}

// Close stops watching. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debounce.stop()
	w.closedWg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch %s: %v", w.dir, err)
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	w.debounce.add(Event{Path: w.path, Op: op, Timestamp: time.Now()})
}

func (w *Watcher) fire(ev Event) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	w.logger.Debug("%s changed (%v)", ev.Path, ev.Op)
	w.handler(ev)
}

// convertOp maps fsnotify operations; chmod alone is not a change.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
