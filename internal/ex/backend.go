// Package ex implements a small ex command interpreter over two backends:
// an in-memory Buffer and a Streamed file that is edited through the
// stream package without loading it.
package ex

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/dshills/wex/internal/address"
	"github.com/dshills/wex/internal/macro"
)

// Errors returned by command execution.
var (
	// ErrUnknownCommand indicates a command the interpreter does not know.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrIncomplete indicates a command that needs more input.
	ErrIncomplete = errors.New("incomplete command")

	// ErrNoMatch indicates a find or substitute that matched nothing.
	ErrNoMatch = errors.New("pattern not found")

	// ErrNothingToUndo indicates an empty undo history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoFile indicates a write without a file name.
	ErrNoFile = errors.New("no file name")

	// ErrMarker indicates a marker that cannot be set.
	ErrMarker = errors.New("invalid marker")
)

// Backend is the text an Editor works on. Lines are 1-based.
type Backend interface {
	macro.Control
	address.Resolver

	// Goto moves to line n.
	Goto(n int) bool
	// Delete removes the lines in r and returns how many went away.
	Delete(r address.Range) (int, error)
	// Join merges the lines in r and returns how many went away.
	Join(r address.Range) (int, error)
	// Substitute replaces pattern in r and returns the replacement count.
	Substitute(r address.Range, pattern, replacement string, global bool) (int, error)
	// Insert adds text before line, or after it when after is set, and
	// returns the number of lines added.
	Insert(line int, text string, after bool) (int, error)
	// Write writes the lines in r to name.
	Write(r address.Range, name string, appending bool) error
	// Find moves to the next or previous line matching pattern.
	Find(pattern string, forward bool) (bool, error)
	SetMarker(c rune, line int) bool
	Undo() bool
	Save() error
	IsModified() bool
}

var comments = map[string][2]string{
	".c":    {"/*", "*/"},
	".h":    {"/*", "*/"},
	".css":  {"/*", "*/"},
	".cpp":  {"//", ""},
	".go":   {"//", ""},
	".java": {"//", ""},
	".js":   {"//", ""},
	".rs":   {"//", ""},
	".ts":   {"//", ""},
	".html": {"<!--", "-->"},
	".xml":  {"<!--", "-->"},
	".lua":  {"--", ""},
	".sql":  {"--", ""},
	".py":   {"#", ""},
	".rb":   {"#", ""},
	".sh":   {"#", ""},
	".toml": {"#", ""},
	".yaml": {"#", ""},
	".yml":  {"#", ""},
}

// commentFor returns the comment delimiters for a file name.
func commentFor(name string) (string, string) {
	if c, ok := comments[strings.ToLower(filepath.Ext(name))]; ok {
		return c[0], c[1]
	}
	return "#", ""
}
