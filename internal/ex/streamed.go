package ex

import (
	"strings"

	"github.com/dshills/wex/internal/address"
	"github.com/dshills/wex/internal/stream"
)

// Streamed edits an attached stream. Lines are converted between the
// stream's 0-based numbering and the editor's 1-based numbering. Streams
// keep no undo history.
type Streamed struct {
	s        *stream.Stream
	showMode bool
}

// NewStreamed wraps an attached stream.
func NewStreamed(s *stream.Stream) *Streamed {
	return &Streamed{s: s}
}

// Stream returns the wrapped stream.
func (b *Streamed) Stream() *stream.Stream { return b.s }

func (b *Streamed) CurrentLine() int {
	if b.s.CurrentLine() == stream.LineUnknown {
		return 0
	}
	return b.s.CurrentLine() + 1
}

func (b *Streamed) LineCount() int {
	n := b.s.LineCountRequest()
	if n == stream.LineUnknown {
		return 0
	}
	return n
}

func (b *Streamed) Marker(c rune) int {
	line := b.s.Marker(c)
	if line == stream.LineUnknown {
		return -1
	}
	return line + 1
}

func (b *Streamed) SetMarker(c rune, line int) bool { return b.s.SetMarker(c, line-1) }
func (b *Streamed) Goto(n int) bool               { return n >= 1 && b.s.GotoLine(n-1) }

func (b *Streamed) Delete(r address.Range) (int, error) { return b.s.Erase(r) }
func (b *Streamed) Join(r address.Range) (int, error)   { return b.s.Join(r) }

func (b *Streamed) Substitute(r address.Range, pattern, replacement string, global bool) (int, error) {
	return b.s.Substitute(r, pattern, replacement, global)
}

func (b *Streamed) Insert(line int, text string, after bool) (int, error) {
	return b.s.InsertText(line, text, after)
}

func (b *Streamed) Write(r address.Range, name string, appending bool) error {
	return b.s.Write(r, name, appending)
}

func (b *Streamed) Find(pattern string, forward bool) (bool, error) {
	return b.s.Find(pattern, forward)
}

func (b *Streamed) Save() error      { return b.s.Save() }
func (b *Streamed) IsModified() bool { return b.s.IsModified() }
func (b *Streamed) Undo() bool       { return false }
func (b *Streamed) BeginUndo()       {}
func (b *Streamed) EndUndo()         {}
func (b *Streamed) Filename() string { return b.s.Path() }
func (b *Streamed) SelectedText() string {
	return b.s.Text()
}
func (b *Streamed) ShowMode(show bool) { b.showMode = show }

// Comment returns the comment delimiters for the file type.
func (b *Streamed) Comment() (string, string) {
	return commentFor(b.s.Path())
}

// AddText inserts text as lines after the current line.
func (b *Streamed) AddText(text string) error {
	if text == "" {
		return nil
	}
	_, err := b.s.InsertText(b.CurrentLine(), strings.TrimSuffix(text, "\n"), true)
	return err
}
