// Package address parses ex line addresses and ranges.
//
// Lines are 1-based. A Range is inclusive at both ends.
package address

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Errors returned by address parsing.
var (
	// ErrInvalid indicates the address text could not be parsed.
	ErrInvalid = errors.New("invalid address")

	// ErrUnknownMarker indicates a 'x address names an unset marker.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrOutOfRange indicates an address beyond the last line.
	ErrOutOfRange = errors.New("address out of range")
)

// Range is a 1-based inclusive line range.
type Range struct {
	Begin int
	End   int
}

// Line returns a range covering a single line.
func Line(n int) Range {
	return Range{Begin: n, End: n}
}

// Valid reports whether the range is well formed.
func (r Range) Valid() bool {
	return r.Begin >= 1 && r.End >= r.Begin
}

// Contains reports whether 1-based line n is inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Begin && n <= r.End
}

// Lines returns the number of lines covered.
func (r Range) Lines() int {
	if !r.Valid() {
		return 0
	}
	return r.End - r.Begin + 1
}

// String renders the range in ex syntax.
func (r Range) String() string {
	if r.Begin == r.End {
		return strconv.Itoa(r.Begin)
	}
	return fmt.Sprintf("%d,%d", r.Begin, r.End)
}

// Resolver supplies the context needed to resolve symbolic addresses.
type Resolver interface {
	// CurrentLine returns the 1-based current line.
	CurrentLine() int
	// LineCount returns the number of lines.
	LineCount() int
	// Marker returns the 1-based line of marker c, or -1.
	Marker(c rune) int
}

// Parse reads an optional address range from the start of text.
// It returns the range, whether any address was present, and the
// unconsumed remainder. Without an address the range is the current line.
// Line 0 is accepted on its own so that text can be inserted at the top.
func Parse(text string, res Resolver) (Range, bool, string, error) {
	cur := res.CurrentLine()

	if len(text) > 0 && text[0] == '%' {
		return Range{Begin: 1, End: max(res.LineCount(), 1)}, true, text[1:], nil
	}

	begin, ok, rest, err := parseOne(text, res)
	if err != nil {
		return Range{}, false, text, err
	}
	if !ok {
		return Line(cur), false, text, nil
	}

	end := begin
	if len(rest) > 0 && rest[0] == ',' {
		var endOK bool
		end, endOK, rest, err = parseOne(rest[1:], res)
		if err != nil {
			return Range{}, false, text, err
		}
		if !endOK {
			return Range{}, false, text, fmt.Errorf("%q: %w", text, ErrInvalid)
		}
	}

	r := Range{Begin: begin, End: end}
	if r.Begin > r.End {
		r.Begin, r.End = r.End, r.Begin
	}
	if r.Begin < 0 || (r.Begin == 0 && r.End != 0) {
		return Range{}, false, text, fmt.Errorf("%q: %w", text, ErrOutOfRange)
	}
	return r, true, rest, nil
}

// parseOne reads a single address with optional +n/-n offsets.
func parseOne(text string, res Resolver) (int, bool, string, error) {
	var (
		line  int
		found bool
		i     int
	)

	switch {
	case len(text) == 0:
		return 0, false, text, nil
	case text[0] == '.':
		line, found, i = res.CurrentLine(), true, 1
	case text[0] == '$':
		line, found, i = res.LineCount(), true, 1
	case text[0] == '\'':
		if len(text) < 2 {
			return 0, false, text, fmt.Errorf("%q: %w", text, ErrInvalid)
		}
		line = res.Marker(rune(text[1]))
		if line < 0 {
			return 0, false, text, fmt.Errorf("'%c: %w", text[1], ErrUnknownMarker)
		}
		found, i = true, 2
	case isDigit(text[0]):
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		n, err := strconv.Atoi(text[:i])
		if err != nil {
			return 0, false, text, fmt.Errorf("%q: %w", text, ErrInvalid)
		}
		line, found = n, true
	case text[0] == '+' || text[0] == '-':
		line, found = res.CurrentLine(), true
	default:
		return 0, false, text, nil
	}

	for i < len(text) && (text[i] == '+' || text[i] == '-') {
		sign := 1
		if text[i] == '-' {
			sign = -1
		}
		i++
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		n := 1
		if j > i {
			var err error
			if n, err = strconv.Atoi(text[i:j]); err != nil || n > maxOffset {
				return 0, false, text, fmt.Errorf("%q: %w", text, ErrInvalid)
			}
		}
		line += sign * n
		i = j
	}

	return line, found, text[i:], nil
}

// maxOffset bounds +n and -n so that applying them cannot overflow.
const maxOffset = math.MaxInt32

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
