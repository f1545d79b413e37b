// Package watcher notifies when a single file changes on disk.
//
// The file's directory is watched rather than the file itself so that
// editors that save by writing a new file and renaming it over the old one
// keep being observed. Bursts of events are coalesced into one callback.
package watcher

import (
	"errors"
	"strings"
	"time"
)

// Errors returned by the watcher.
var (
	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrNoHandler indicates New was called without a callback.
	ErrNoHandler = errors.New("no change handler")
)

// DefaultDelay is the debounce delay used when none is configured.
const DefaultDelay = 100 * time.Millisecond

// Op is a set of file system operations.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operations joined by '|'.
func (op Op) String() string {
	var names []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
	} {
		if op.Has(o.op) {
			names = append(names, o.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event describes a change to the watched file. Op combines every
// operation seen during the debounce window.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Exists reports whether the file is expected to exist after the event.
func (e Event) Exists() bool {
	return e.Op.Has(OpCreate) || (e.Op.Has(OpWrite) && !e.Op.Has(OpRemove) && !e.Op.Has(OpRename))
}
