package stream

import (
	"io"

	"github.com/dshills/wex/internal/address"
)

// Action selects what a Line does with lines inside its range.
type Action int

const (
	// ActionErase drops lines in range.
	ActionErase Action = iota
	// ActionJoin removes the terminator of every line in range but the last.
	ActionJoin
	// ActionSubstitute applies a substitution to lines in range.
	ActionSubstitute
	// ActionWrite echoes lines in range and drops the rest.
	ActionWrite
	// ActionInsert writes text next to the first line of the range.
	ActionInsert
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionErase:
		return "erase"
	case ActionJoin:
		return "join"
	case ActionSubstitute:
		return "substitute"
	case ActionWrite:
		return "write"
	case ActionInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Line decides, one physical line at a time, what a full-file pass writes.
// Handle must be called for every line of the file in order.
type Line struct {
	w      io.Writer
	action Action
	begin  int // 0-based, inclusive
	end    int // 0-based, inclusive

	sub *Substitution

	text  []byte
	after bool

	line    int
	actions int
	openEOL bool // last handled line had no terminator
}

// NewLine creates a line processor for erase, join, or write.
func NewLine(w io.Writer, action Action, r address.Range) *Line {
	return &Line{
		w:      w,
		action: action,
		begin:  r.Begin - 1,
		end:    r.End - 1,
	}
}

// NewSubstituteLine creates a line processor applying sub within r.
func NewSubstituteLine(w io.Writer, r address.Range, sub *Substitution) *Line {
	l := NewLine(w, ActionSubstitute, r)
	l.sub = sub
	return l
}

// NewInsertLine creates a line processor that writes text before (or
// after) 1-based line. Text gets a terminating newline if it lacks one.
func NewInsertLine(w io.Writer, line int, text string, after bool) *Line {
	l := NewLine(w, ActionInsert, address.Line(line))
	if len(text) == 0 || text[len(text)-1] != '\n' {
		text += "\n"
	}
	l.text = []byte(text)
	l.after = after
	return l
}

// Handle processes one line, including its terminator if it has one.
func (l *Line) Handle(line []byte) error {
	defer func() { l.line++ }()

	_, eol := splitEOL(line)
	l.openEOL = len(eol) == 0

	if l.line < l.begin || l.line > l.end {
		if l.action == ActionWrite {
			return nil
		}
		return l.write(line)
	}

	switch l.action {
	case ActionErase:
		l.actions++
		return nil

	case ActionJoin:
		if l.line == l.end {
			return l.write(line)
		}
		body, _ := splitEOL(line)
		l.actions++
		return l.write(body)

	case ActionSubstitute:
		out, n := l.sub.apply(line)
		l.actions += n
		return l.write(out)

	case ActionInsert:
		return l.insert(line)

	default:
		return l.write(line)
	}
}

func (l *Line) insert(line []byte) error {
	if !l.after {
		if err := l.write(l.text); err != nil {
			return err
		}
		l.actions++
		return l.write(line)
	}

	if err := l.write(line); err != nil {
		return err
	}
	if _, eol := splitEOL(line); len(eol) == 0 {
		if err := l.write([]byte{'\n'}); err != nil {
			return err
		}
	}
	l.actions++
	return l.write(l.text)
}

// Finish completes the pass. An insert aimed past the last line is
// appended at the end.
func (l *Line) Finish() error {
	if l.action == ActionInsert && l.actions == 0 {
		if l.openEOL {
			if err := l.write([]byte{'\n'}); err != nil {
				return err
			}
		}
		l.actions++
		return l.write(l.text)
	}
	return nil
}

func (l *Line) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := l.w.Write(b)
	return err
}

// Lines returns the number of lines handled so far.
func (l *Line) Lines() int {
	return l.line
}

// Actions returns the number of actions performed: lines erased, joins,
// replacements, or inserts.
func (l *Line) Actions() int {
	return l.actions
}
