package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/wex/internal/address"
)

// Erase deletes the lines in r and returns how many were removed.
func (s *Stream) Erase(r address.Range) (int, error) {
	if s.file == nil {
		return 0, ErrNotAttached
	}
	if !r.Valid() {
		return 0, fmt.Errorf("erase %v: %w", r, ErrRange)
	}

	n, err := s.rewrite(r.Begin-1, func(w io.Writer) *Line {
		return NewLine(w, ActionErase, r)
	})
	if err != nil {
		return 0, err
	}

	s.eraseMarkers(r.Begin-1, r.Begin-1+n, n)
	s.display.ShowMessage(fmt.Sprintf("%d fewer lines", n))
	return n, nil
}

// Join merges the lines in r into one and returns how many lines went away.
func (s *Stream) Join(r address.Range) (int, error) {
	if s.file == nil {
		return 0, ErrNotAttached
	}
	if !r.Valid() {
		return 0, fmt.Errorf("join %v: %w", r, ErrRange)
	}
	if r.Begin == r.End {
		r.End++
	}
	if count := s.LineCountRequest(); count != LineUnknown && r.End > count {
		r.End = count
	}
	if r.Begin >= r.End {
		return 0, nil
	}

	n, err := s.rewrite(r.Begin-1, func(w io.Writer) *Line {
		return NewLine(w, ActionJoin, r)
	})
	if err != nil {
		return 0, err
	}

	for c, line := range s.markers {
		switch {
		case line >= r.Begin && line < r.Begin+n:
			s.markers[c] = r.Begin - 1
		case line >= r.Begin+n:
			s.markers[c] = line - n
		}
	}
	s.display.ShowMessage(fmt.Sprintf("%d fewer lines", n))
	return n, nil
}

// Substitute replaces pattern with replacement on every line in r, once
// per line unless global is set. It returns the number of replacements.
// A pattern that does not compile returns a *PatternError.
func (s *Stream) Substitute(r address.Range, pattern, replacement string, global bool) (int, error) {
	if s.file == nil {
		return 0, ErrNotAttached
	}
	if !r.Valid() {
		return 0, fmt.Errorf("substitute %v: %w", r, ErrRange)
	}

	re, err := s.patterns.compile(pattern, s.opts.Find)
	if err != nil {
		return 0, err
	}
	sub := newSubstitution(re, replacement, global, s.opts.Find)

	n, err := s.rewrite(r.Begin-1, func(w io.Writer) *Line {
		return NewSubstituteLine(w, r, sub)
	})
	if err != nil {
		return 0, err
	}
	s.display.ShowMessage(fmt.Sprintf("%d substitutions", n))
	return n, nil
}

// InsertText inserts text before 1-based line, or after it when after is
// set. Line 0 with after set inserts at the top; a line past the end
// appends. It returns the number of lines inserted.
func (s *Stream) InsertText(line int, text string, after bool) (int, error) {
	if s.file == nil {
		return 0, ErrNotAttached
	}
	if line < 0 {
		return 0, fmt.Errorf("insert at %d: %w", line, ErrRange)
	}
	if line == 0 {
		line, after = 1, false
	}

	l := 0
	n, err := s.rewrite(line-1, func(w io.Writer) *Line {
		ins := NewInsertLine(w, line, text, after)
		l = countLines(ins.text)
		return ins
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	at := line - 1
	if after {
		at = line
	}
	for c, m := range s.markers {
		if m >= at {
			s.markers[c] = m + l
		}
	}
	return l, nil
}

// Write writes the lines in r to name, appending when appending is set.
// Writing to the attached path is allowed; the stream itself is unchanged.
func (s *Stream) Write(r address.Range, name string, appending bool) error {
	if s.file == nil {
		return ErrNotAttached
	}
	if !r.Valid() {
		return fmt.Errorf("write %v: %w", r, ErrRange)
	}

	_, err := s.process(func(w io.Writer) *Line {
		return NewLine(w, ActionWrite, r)
	})
	if err != nil {
		return err
	}
	return s.copyTempTo(name, appending)
}

// Save copies the edited content over the original file.
func (s *Stream) Save() error {
	if s.file == nil {
		return ErrNotAttached
	}
	if !s.modified {
		return nil
	}

	if _, err := s.work.Seek(0, io.SeekStart); err != nil {
		return err
	}
	out, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if _, err := io.Copy(out, s.work); err != nil {
		out.Close()
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	s.modified = false
	return s.resync(s.lineNo)
}

// rewrite runs an editing pass, replaces the work file with its output,
// and moves to 0-based line goTo.
func (s *Stream) rewrite(goTo int, build func(io.Writer) *Line) (int, error) {
	n, err := s.process(build)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	if err := s.commitTemp(); err != nil {
		return 0, err
	}
	s.modified = true
	s.logger.Debug("rewrote %s: %d actions", s.path, n)
	return n, s.resync(goTo)
}

// process streams every line of the current file through the processor
// returned by build, writing into the temp file.
func (s *Stream) process(build func(io.Writer) *Line) (int, error) {
	temp, err := s.openTemp(&s.temp, "temp")
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(temp)
	proc := build(bw)

	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	br := bufio.NewReaderSize(io.NewSectionReader(s.file, 0, info.Size()), s.opts.LineBuffer)

	var line []byte
	for {
		line = line[:0]
		var rerr error
		for {
			chunk, err := br.ReadSlice('\n')
			line = append(line, chunk...)
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			rerr = err
			break
		}
		if len(line) > 0 {
			if err := proc.Handle(line); err != nil {
				return 0, err
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return 0, rerr
		}
	}

	if err := proc.Finish(); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return proc.Actions(), nil
}

// commitTemp copies the temp file over the work file and switches the
// stream to reading the work file.
func (s *Stream) commitTemp() error {
	work, err := s.openTemp(&s.work, "work")
	if err != nil {
		return err
	}
	if _, err := s.temp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(work, s.temp); err != nil {
		return fmt.Errorf("copy to work file: %w", err)
	}

	if s.file != work {
		if err := s.file.Close(); err != nil {
			s.logger.Warn("closing %s: %v", s.path, err)
		}
		s.file = work
	}
	return nil
}

func (s *Stream) copyTempTo(name string, appending bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	out, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := s.temp.Seek(0, io.SeekStart); err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(out, s.temp); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	// The original may have been rewritten underneath us.
	if name == s.path && s.file != s.work {
		return s.reopen()
	}
	return nil
}

func (s *Stream) reopen() error {
	line := s.lineNo
	if err := s.file.Close(); err != nil {
		s.logger.Warn("closing %s: %v", s.path, err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.file = f
	return s.resync(line)
}

// openTemp truncates (creating if needed) one of the stream's temp files.
func (s *Stream) openTemp(f **os.File, kind string) (*os.File, error) {
	if *f == nil {
		created, err := os.OpenFile(s.tempPath(kind), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create %s file: %w", kind, err)
		}
		*f = created
		return created, nil
	}
	if err := (*f).Truncate(0); err != nil {
		return nil, err
	}
	if _, err := (*f).Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return *f, nil
}

// resync drops cached positions after the file content changed and moves
// to 0-based line, or the last line when fewer exist.
func (s *Stream) resync(line int) error {
	s.reader.Reset(s.file)
	s.lineNo = LineUnknown
	s.lineCount = LineUnknown
	s.window.reset()
	if err := s.rewind(); err != nil {
		return err
	}
	s.GotoLine(max(line, 0))
	return nil
}

// eraseMarkers drops markers on erased lines [from, to) and shifts the
// ones below up by n.
func (s *Stream) eraseMarkers(from, to, n int) {
	for c, line := range s.markers {
		switch {
		case line >= from && line < to:
			delete(s.markers, c)
		case line >= to:
			s.markers[c] = line - n
		}
	}
}

func countLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}
