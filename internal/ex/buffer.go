package ex

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/wex/internal/address"
	"github.com/dshills/wex/internal/logging"
	"github.com/dshills/wex/internal/stream"
)

// Buffer holds a whole file in memory.
type Buffer struct {
	path    string
	lines   []string
	line    int
	markers map[rune]int

	patterns *stream.Patterns
	find     stream.FindSettings
	display  stream.Display
	logger   *logging.Logger

	history   [][]string
	undoDepth int
	pending   []string

	modified bool
	showMode bool
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithFindSettings selects regex or literal matching.
func WithFindSettings(settings stream.FindSettings) BufferOption {
	return func(b *Buffer) {
		b.find = settings
	}
}

// WithDisplay sets where messages go.
func WithDisplay(d stream.Display) BufferOption {
	return func(b *Buffer) {
		if d != nil {
			b.display = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) BufferOption {
	return func(b *Buffer) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuffer creates a buffer holding text, named path.
func NewBuffer(path, text string, opts ...BufferOption) *Buffer {
	b := &Buffer{
		path:     path,
		markers:  make(map[rune]int),
		patterns: stream.NewPatterns(64),
		find:     stream.FindSettings{Regex: true, MatchCase: true},
		display:  discard{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.lines = splitLines(text)
	if len(b.lines) > 0 {
		b.line = 1
	}
	return b
}

// OpenBuffer loads path into a buffer. A missing file gives an empty one.
func OpenBuffer(path string, opts ...BufferOption) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewBuffer(path, string(data), opts...), nil
}

type discard struct{}

func (discard) ShowWindow(int, []string) {}
func (discard) ShowMessage(string)       {}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Lines returns a copy of the buffer lines.
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Text returns the buffer content with a newline after every line.
func (b *Buffer) Text() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *Buffer) CurrentLine() int { return b.line }
func (b *Buffer) LineCount() int   { return len(b.lines) }
func (b *Buffer) Filename() string { return b.path }
func (b *Buffer) IsModified() bool { return b.modified }
func (b *Buffer) ShowMode(show bool) {
	b.showMode = show
}

// Comment returns the comment delimiters for the file type.
func (b *Buffer) Comment() (string, string) {
	return commentFor(b.path)
}

// SelectedText returns the current line; a line buffer has no selection.
func (b *Buffer) SelectedText() string {
	if b.line == 0 {
		return ""
	}
	return b.lines[b.line-1]
}

// Marker returns the line of marker c, or -1.
func (b *Buffer) Marker(c rune) int {
	if line, ok := b.markers[c]; ok {
		return line
	}
	return -1
}

// SetMarker sets marker c to line.
func (b *Buffer) SetMarker(c rune, line int) bool {
	if line < 1 || line > len(b.lines) {
		return false
	}
	b.markers[c] = line
	return true
}

// Goto moves to line n.
func (b *Buffer) Goto(n int) bool {
	if n < 1 || n > len(b.lines) {
		return false
	}
	b.line = n
	return true
}

// BeginUndo starts an undo group. Groups nest; only the outermost one is
// recorded.
func (b *Buffer) BeginUndo() {
	b.undoDepth++
	if b.undoDepth == 1 {
		b.pending = b.Lines()
	}
}

// EndUndo ends an undo group.
func (b *Buffer) EndUndo() {
	if b.undoDepth == 0 {
		return
	}
	b.undoDepth--
	if b.undoDepth == 0 && b.pending != nil {
		if !equalLines(b.pending, b.lines) {
			b.history = append(b.history, b.pending)
		}
		b.pending = nil
	}
}

// Undo restores the content before the last change or undo group.
func (b *Buffer) Undo() bool {
	if len(b.history) == 0 || b.undoDepth > 0 {
		return false
	}
	b.lines = b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.line = min(max(b.line, 1), len(b.lines))
	b.modified = true
	return true
}

// change records undo state for an edit outside of any group.
func (b *Buffer) change() {
	if b.undoDepth == 0 {
		b.history = append(b.history, b.Lines())
	}
	b.modified = true
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (b *Buffer) clamp(r address.Range) (address.Range, error) {
	if !r.Valid() || r.Begin > len(b.lines) {
		return r, fmt.Errorf("%v: %w", r, address.ErrOutOfRange)
	}
	r.End = min(r.End, len(b.lines))
	return r, nil
}

// Delete removes the lines in r.
func (b *Buffer) Delete(r address.Range) (int, error) {
	r, err := b.clamp(r)
	if err != nil {
		return 0, err
	}
	b.change()

	n := r.Lines()
	b.lines = append(b.lines[:r.Begin-1], b.lines[r.End:]...)
	b.line = min(r.Begin, len(b.lines))

	for c, line := range b.markers {
		switch {
		case line > r.End:
			b.markers[c] = line - n
		case line >= r.Begin:
			delete(b.markers, c)
		}
	}
	b.display.ShowMessage(fmt.Sprintf("%d fewer lines", n))
	return n, nil
}

// Join concatenates the lines in r. A single line is joined with the next.
func (b *Buffer) Join(r address.Range) (int, error) {
	if r.Begin == r.End {
		r.End++
	}
	r, err := b.clamp(r)
	if err != nil {
		return 0, err
	}
	if r.Begin >= r.End {
		return 0, nil
	}
	b.change()

	joined := strings.Join(b.lines[r.Begin-1:r.End], "")
	n := r.End - r.Begin
	b.lines = append(append(b.lines[:r.Begin-1], joined), b.lines[r.End:]...)
	b.line = r.Begin

	for c, line := range b.markers {
		switch {
		case line > r.End:
			b.markers[c] = line - n
		case line > r.Begin:
			b.markers[c] = r.Begin
		}
	}
	b.display.ShowMessage(fmt.Sprintf("%d fewer lines", n))
	return n, nil
}

// Substitute replaces pattern in the lines of r.
func (b *Buffer) Substitute(r address.Range, pattern, replacement string, global bool) (int, error) {
	r, err := b.clamp(r)
	if err != nil {
		return 0, err
	}
	sub, err := b.patterns.Substitution(pattern, replacement, global, b.find)
	if err != nil {
		return 0, err
	}

	before := b.Lines()
	total := 0
	for i := r.Begin - 1; i < r.End; i++ {
		line, n := sub.Apply(b.lines[i])
		if n > 0 {
			b.lines[i] = line
			b.line = i + 1
			total += n
		}
	}
	if total > 0 {
		if b.undoDepth == 0 {
			b.history = append(b.history, before)
		}
		b.modified = true
		b.display.ShowMessage(fmt.Sprintf("%d substitutions", total))
	}
	return total, nil
}

// Insert adds text before line, or after it. Line 0 inserts at the top.
func (b *Buffer) Insert(line int, text string, after bool) (int, error) {
	if line < 0 || line > len(b.lines) {
		return 0, fmt.Errorf("%d: %w", line, address.ErrOutOfRange)
	}
	at := line - 1
	if after || line == 0 {
		at = line
	}
	if at < 0 {
		at = 0
	}

	added := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	b.change()

	lines := make([]string, 0, len(b.lines)+len(added))
	lines = append(lines, b.lines[:at]...)
	lines = append(lines, added...)
	lines = append(lines, b.lines[at:]...)
	b.lines = lines
	b.line = at + len(added)

	for c, m := range b.markers {
		if m > at {
			b.markers[c] = m + len(added)
		}
	}
	return len(added), nil
}

// AddText inserts text at the end of the current line. Newlines in text
// start new lines.
func (b *Buffer) AddText(text string) error {
	if text == "" {
		return nil
	}
	b.change()
	if len(b.lines) == 0 {
		b.lines = []string{""}
		b.line = 1
	}

	parts := strings.Split(text, "\n")
	cur := b.line - 1
	parts[0] = b.lines[cur] + parts[0]

	lines := make([]string, 0, len(b.lines)+len(parts)-1)
	lines = append(lines, b.lines[:cur]...)
	lines = append(lines, parts...)
	lines = append(lines, b.lines[cur+1:]...)
	b.lines = lines
	b.line = cur + len(parts)
	return nil
}

// Find moves to the next line matching pattern, wrapping around the end.
func (b *Buffer) Find(pattern string, forward bool) (bool, error) {
	re, err := b.patterns.Compile(pattern, b.find)
	if err != nil {
		return false, err
	}
	n := len(b.lines)
	for i := 1; i <= n; i++ {
		var line int
		if forward {
			line = (b.line-1+i)%n + 1
		} else {
			line = ((b.line-1-i)%n+n)%n + 1
		}
		if re.MatchString(b.lines[line-1]) {
			b.line = line
			return true, nil
		}
	}
	return false, nil
}

// Write writes the lines in r to name.
func (b *Buffer) Write(r address.Range, name string, appending bool) error {
	r, err := b.clamp(r)
	if err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range b.lines[r.Begin-1 : r.End] {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if name == b.path && r.Begin == 1 && r.End == len(b.lines) {
		b.modified = false
	}
	b.logger.Debug("wrote %d lines to %s", r.Lines(), name)
	return nil
}

// Save writes the buffer to its file.
func (b *Buffer) Save() error {
	if b.path == "" {
		return ErrNoFile
	}
	if err := os.WriteFile(b.path, []byte(b.Text()), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", b.path, err)
	}
	b.modified = false
	return nil
}
