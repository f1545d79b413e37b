package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces events arriving within delay of each other into a
// single call of fire.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func(Event)
	timer   *time.Timer
	pending *Event
	stopped bool
}

func newDebouncer(delay time.Duration, fire func(Event)) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

// add merges ev into the pending event and restarts the timer.
func (d *debouncer) add(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Op |= ev.Op
		d.pending.Timestamp = ev.Timestamp
		d.timer.Reset(d.delay)
		return
	}

	d.pending = &ev
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// flush fires the pending event, if any.
func (d *debouncer) flush() {
	d.mu.Lock()
	if d.pending == nil || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	ev := *d.pending
	d.pending = nil
	d.mu.Unlock()

	d.fire(ev)
}

// stop drops the pending event; later adds are ignored.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}

// isPending reports whether an event is waiting.
func (d *debouncer) isPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
