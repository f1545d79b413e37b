package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{0, "NONE"},
		{OpWrite, "WRITE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove | OpRename, "REMOVE|RENAME"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestEvent_Exists(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{OpWrite, true},
		{OpCreate, true},
		{OpRemove, false},
		{OpWrite | OpRename, false},
		{OpRename | OpCreate, true},
	}
	for _, tt := range tests {
		if got := (Event{Op: tt.op}).Exists(); got != tt.want {
			t.Errorf("Event{%v}.Exists() = %v", tt.op, got)
		}
	}
}

func TestConvertOp(t *testing.T) {
	if got := convertOp(fsnotify.Chmod); got != 0 {
		t.Errorf("chmod = %v", got)
	}
	if got := convertOp(fsnotify.Create | fsnotify.Write); got != OpCreate|OpWrite {
		t.Errorf("create|write = %v", got)
	}
}

type collector struct {
	mu     sync.Mutex
	events []Event
	ch     chan struct{}
}

func newCollector() *collector {
	return &collector{ch: make(chan struct{}, 16)}
}

func (c *collector) handle(ev Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) wait(t *testing.T) Event {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

func TestDebouncer_Coalesces(t *testing.T) {
	c := newCollector()
	d := newDebouncer(time.Hour, c.handle)

	d.add(Event{Path: "f", Op: OpCreate})
	d.add(Event{Path: "f", Op: OpWrite})
	if !d.isPending() {
		t.Fatal("nothing pending")
	}
	d.flush()

	ev := c.wait(t)
	if ev.Op != OpCreate|OpWrite {
		t.Errorf("Op = %v", ev.Op)
	}
	if d.isPending() || c.count() != 1 {
		t.Errorf("pending %v, fired %d", d.isPending(), c.count())
	}
}

func TestDebouncer_Fires(t *testing.T) {
	c := newCollector()
	d := newDebouncer(10*time.Millisecond, c.handle)
	d.add(Event{Path: "f", Op: OpWrite})
	if ev := c.wait(t); ev.Path != "f" {
		t.Errorf("Path = %q", ev.Path)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	c := newCollector()
	d := newDebouncer(time.Hour, c.handle)
	d.add(Event{Path: "f", Op: OpWrite})
	d.stop()
	d.flush()
	d.add(Event{Path: "f", Op: OpWrite})
	if d.isPending() || c.count() != 0 {
		t.Errorf("pending %v, fired %d", d.isPending(), c.count())
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New("x", nil); !errors.Is(err, ErrNoHandler) {
		t.Errorf("New(nil handler) = %v", err)
	}
	missing := filepath.Join(t.TempDir(), "nodir", "macros.xml")
	if _, err := New(missing, func(Event) {}); err == nil {
		t.Error("New in a missing directory succeeded")
	}
}

func TestWatcher_FileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "macros.xml")
	c := newCollector()

	w, err := New(path, c.handle, WithDelay(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<macros/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := c.wait(t)
	if ev.Path != w.Path() {
		t.Errorf("Path = %q, want %q", ev.Path, w.Path())
	}
	if !ev.Exists() {
		t.Errorf("Op = %v", ev.Op)
	}
}

func TestWatcher_Close(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "macros.xml")
	c := newCollector()

	w, err := New(path, c.handle, WithDelay(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	w.Flush()
	if c.count() != 0 {
		t.Errorf("fired %d after close", c.count())
	}
}
