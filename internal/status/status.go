// Package status holds the named status panes and the message area shown
// below the edited text.
package status

import (
	"sort"
	"sync"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the pane width used when none is configured.
const DefaultWidth = 40

// DefaultHistory is the number of messages kept.
const DefaultHistory = 100

// Bar collects pane text, the last message and the visible stream window.
// It is safe for concurrent use.
type Bar struct {
	mu      sync.Mutex
	width   int
	limit   int
	panes   map[string]string
	message string
	history []string
	first   int
	window  []string
	onMsg   func(string)
}

// Option configures a Bar.
type Option func(*Bar)

// WithHistory sets how many messages are kept.
func WithHistory(n int) Option {
	return func(b *Bar) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithMessageHandler calls fn with every message as it is shown.
func WithMessageHandler(fn func(string)) Option {
	return func(b *Bar) {
		b.onMsg = fn
	}
}

// New creates a bar whose panes are truncated to width display cells.
func New(width int, opts ...Option) *Bar {
	if width <= 0 {
		width = DefaultWidth
	}
	b := &Bar{
		width: width,
		limit: DefaultHistory,
		panes: make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Width returns the pane width.
func (b *Bar) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// SetWidth changes the pane width. Text already shown is not re-truncated.
func (b *Bar) SetWidth(width int) {
	if width <= 0 {
		return
	}
	b.mu.Lock()
	b.width = width
	b.mu.Unlock()
}

// ShowPane sets the text of a pane. Empty text clears it.
func (b *Bar) ShowPane(pane, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text == "" {
		delete(b.panes, pane)
		return
	}
	b.panes[pane] = runewidth.Truncate(text, b.width, "…")
}

// Pane returns the text of a pane.
func (b *Bar) Pane(pane string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panes[pane]
}

// Panes returns the names of the panes that have text, sorted.
func (b *Bar) Panes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.panes))
	for name := range b.panes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowMessage shows a one-line message and adds it to the history.
func (b *Bar) ShowMessage(msg string) {
	b.mu.Lock()
	b.message = msg
	b.history = append(b.history, msg)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}
	fn := b.onMsg
	b.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
}

// Message returns the last message.
func (b *Bar) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// History returns the kept messages, oldest first.
func (b *Bar) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

// ClearMessage clears the message area. The history is kept.
func (b *Bar) ClearMessage() {
	b.mu.Lock()
	b.message = ""
	b.mu.Unlock()
}

// ShowWindow stores the visible lines, the first of which is 0-based line
// first.
func (b *Bar) ShowWindow(first int, lines []string) {
	b.mu.Lock()
	b.first = first
	b.window = append(b.window[:0], lines...)
	b.mu.Unlock()
}

// Window returns the last window shown.
func (b *Bar) Window() (int, []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.first, append([]string(nil), b.window...)
}

// Line renders the panes on one line, separated by a space, in name order.
func (b *Bar) Line() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.panes))
	for name := range b.panes {
		names = append(names, name)
	}
	sort.Strings(names)

	line := ""
	for _, name := range names {
		if line != "" {
			line += " "
		}
		line += "[" + b.panes[name] + "]"
	}
	return line
}
