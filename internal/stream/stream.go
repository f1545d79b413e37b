// Package stream edits files line by line without loading them into memory.
//
// A Stream reads the attached file through a growable current-line buffer
// and moves backward by scanning fixed-size blocks that end at the current
// line. Range edits (erase, join, substitute, insert) make one full pass
// through a Line processor into a temporary file, which is then copied over
// a private work file; the original is only replaced by Save.
//
// A Stream is not safe for concurrent use.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/wex/internal/logging"
)

// LineUnknown marks a line number or count that has not been determined.
const LineUnknown = -1

// Options configures a Stream.
type Options struct {
	// LineBuffer is the initial capacity of the current-line buffer.
	LineBuffer int
	// BlockSize is the size of the block read when moving backward. It
	// doubles while a single line does not fit.
	BlockSize int
	// ContextLines caps the visible window.
	ContextLines int
	// RewindDistance: jumping back further than this rescans from the
	// start of the file.
	RewindDistance int
	// RegexCache is the number of compiled patterns kept.
	RegexCache int
	// Find selects regex or literal matching.
	Find FindSettings
	// TempDir holds the temp and work files. Defaults to os.TempDir().
	TempDir string
}

// DefaultOptions returns the stream defaults.
func DefaultOptions() Options {
	return Options{
		LineBuffer:     500,
		BlockSize:      1000000,
		ContextLines:   50,
		RewindDistance: 1000,
		RegexCache:     64,
		Find:           FindSettings{Regex: true, MatchCase: true},
	}
}

// Display receives the visible window and messages.
type Display interface {
	// ShowWindow shows lines, the first of which is 0-based line first.
	ShowWindow(first int, lines []string)
	// ShowMessage shows a one-line message.
	ShowMessage(msg string)
}

type nopDisplay struct{}

func (nopDisplay) ShowWindow(int, []string) {}
func (nopDisplay) ShowMessage(string)       {}

// Stream is a cursor over a file plus the machinery to rewrite it.
type Stream struct {
	opts    Options
	display Display
	logger  *logging.Logger

	id   string
	path string

	file   *os.File // original until the first edit, then work
	reader *bufio.Reader

	offset    int64 // byte after the current line
	lineStart int64 // first byte of the current line
	lineNo    int   // 0-based current line
	lineCount int

	current []byte
	scratch []byte
	block   []byte

	markers map[rune]int
	window  window

	temp     *os.File
	work     *os.File
	modified bool

	patterns *patternCache
}

// New creates a detached stream.
func New(opts Options, display Display, logger *logging.Logger) *Stream {
	def := DefaultOptions()
	if opts.LineBuffer <= 0 {
		opts.LineBuffer = def.LineBuffer
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = def.BlockSize
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = def.ContextLines
	}
	if opts.RewindDistance <= 0 {
		opts.RewindDistance = def.RewindDistance
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if display == nil {
		display = nopDisplay{}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Stream{
		opts:      opts,
		display:   display,
		logger:    logger.WithComponent("stream"),
		lineNo:    LineUnknown,
		lineCount: LineUnknown,
		current:   make([]byte, 0, opts.LineBuffer),
		scratch:   make([]byte, 0, opts.LineBuffer),
		markers:   make(map[rune]int),
		window:    window{limit: opts.ContextLines},
		patterns:  newPatternCache(opts.RegexCache),
	}
}

// Attach streams path, discarding any previously attached file together
// with its temporary files.
func (s *Stream) Attach(path string) error {
	if err := s.Close(); err != nil {
		s.logger.Warn("closing previous stream: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}

	s.id = uuid.NewString()
	s.path = path
	s.file = f
	s.reader = bufio.NewReaderSize(f, s.opts.LineBuffer)
	s.lineNo = LineUnknown
	s.lineCount = LineUnknown
	s.markers = make(map[rune]int)
	s.window.reset()
	s.modified = false

	s.logger.Debug("attached %s (%s)", path, s.id)
	s.GotoLine(0)
	return nil
}

// Close detaches the stream and removes its temporary files.
func (s *Stream) Close() error {
	var errs []error
	if s.file != nil && s.file != s.work {
		errs = append(errs, s.file.Close())
	}
	for _, f := range []*os.File{s.temp, s.work} {
		if f == nil {
			continue
		}
		errs = append(errs, f.Close())
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	s.file, s.temp, s.work, s.reader = nil, nil, nil, nil
	s.path = ""
	return errors.Join(errs...)
}

// IsAttached reports whether a file is attached.
func (s *Stream) IsAttached() bool {
	return s.file != nil
}

// Path returns the attached file path.
func (s *Stream) Path() string {
	return s.path
}

// IsModified reports whether edits have not been saved to the original.
func (s *Stream) IsModified() bool {
	return s.modified
}

// CurrentLine returns the 0-based current line, or LineUnknown.
func (s *Stream) CurrentLine() int {
	return s.lineNo
}

// Text returns the current line without its terminator.
func (s *Stream) Text() string {
	return string(s.current)
}

// LineCount returns the number of lines if known, else LineUnknown.
func (s *Stream) LineCount() int {
	return s.lineCount
}

// LineCountRequest counts lines if needed and returns the count. The
// cursor is left where it was.
func (s *Stream) LineCountRequest() int {
	if s.file == nil {
		return LineUnknown
	}
	if s.lineCount != LineUnknown {
		return s.lineCount
	}

	buf := s.blockBuffer(s.opts.BlockSize)
	var (
		pos   int64
		count int
		last  byte
	)
	for {
		n, err := s.file.ReadAt(buf, pos)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			pos += int64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("counting lines: %v", err)
				return LineUnknown
			}
			break
		}
	}
	if pos > 0 && last != '\n' {
		count++
	}
	s.lineCount = count
	return count
}

// GotoLine moves to 0-based line n and refreshes the visible window. It
// returns false when the file has fewer lines; the cursor is then left on
// the last line.
func (s *Stream) GotoLine(n int) bool {
	if s.file == nil {
		return false
	}
	if n < 0 {
		n = 0
	}

	back := s.lineNo - n
	if n == 0 || s.lineNo == LineUnknown ||
		(back > 0 && (n < back || back > s.opts.RewindDistance)) {
		if err := s.rewind(); err != nil {
			s.logger.Error("rewind: %v", err)
			return false
		}
	}

	for s.lineNo < n && s.GetNextLine() {
	}
	for s.lineNo > n && s.GetPreviousLine() {
	}

	s.refreshWindow()
	return s.lineNo == n
}

// GetNextLine moves to the next line.
func (s *Stream) GetNextLine() bool {
	if s.file == nil {
		return false
	}
	if !s.readLine() {
		if s.lineCount == LineUnknown {
			if s.lineStart == s.offset {
				s.lineCount = 0
			} else {
				s.lineCount = s.lineNo + 1
			}
		}
		return false
	}
	s.lineNo++
	return true
}

// GetPreviousLine moves to the previous line.
func (s *Stream) GetPreviousLine() bool {
	if s.file == nil || s.lineNo <= 0 || s.lineStart == 0 {
		return false
	}

	start, err := s.previousLineStart()
	if err != nil {
		s.logger.Error("scanning back from %d: %v", s.lineStart, err)
		return false
	}
	if err := s.seek(start); err != nil {
		s.logger.Error("seek %d: %v", start, err)
		return false
	}
	if !s.readLine() {
		return false
	}
	s.lineNo--
	return true
}

// rewind positions the stream on line 0.
func (s *Stream) rewind() error {
	if err := s.seek(0); err != nil {
		return err
	}
	s.lineStart = 0
	s.current = s.current[:0]
	if !s.readLine() {
		s.lineCount = 0
	}
	s.lineNo = 0
	return nil
}

func (s *Stream) seek(off int64) error {
	if _, err := s.file.Seek(off, io.SeekStart); err != nil {
		return err
	}
	s.reader.Reset(s.file)
	s.offset = off
	return nil
}

// readLine reads the line at offset. The current line is only replaced
// when a line was read.
func (s *Stream) readLine() bool {
	s.scratch = s.scratch[:0]
	var n int64
	for {
		chunk, err := s.reader.ReadSlice('\n')
		s.scratch = append(s.scratch, chunk...)
		n += int64(len(chunk))
		if errors.Is(err, bufio.ErrBufferFull) {
			// Longer than the reader buffer: keep reading the same line.
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			s.logger.Error("reading line: %v", err)
		}
		break
	}
	if n == 0 {
		return false
	}

	s.lineStart = s.offset
	s.offset += n
	body, _ := splitEOL(s.scratch)
	s.scratch = body
	s.current, s.scratch = s.scratch, s.current
	return true
}

// previousLineStart finds where the line before the current one starts by
// scanning a block that ends at the current line's first byte.
func (s *Stream) previousLineStart() (int64, error) {
	end := s.lineStart
	size := int64(s.opts.BlockSize)

	for {
		begin := max(end-size, 0)
		buf := s.blockBuffer(int(end - begin))
		if _, err := s.file.ReadAt(buf, begin); err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}

		// buf ends with the previous line's terminator.
		if i := bytes.LastIndexByte(buf[:len(buf)-1], '\n'); i >= 0 {
			return begin + int64(i) + 1, nil
		}
		if begin == 0 {
			return 0, nil
		}
		size *= 2
	}
}

func (s *Stream) blockBuffer(n int) []byte {
	if cap(s.block) < n {
		s.block = make([]byte, n)
	}
	return s.block[:n]
}

// SetMarker sets marker c to 0-based line.
func (s *Stream) SetMarker(c rune, line int) bool {
	if s.file == nil || !isMarker(c) || line < 0 {
		return false
	}
	s.markers[c] = line
	return true
}

// Marker returns the 0-based line of marker c, or LineUnknown.
func (s *Stream) Marker(c rune) int {
	if line, ok := s.markers[c]; ok {
		return line
	}
	return LineUnknown
}

func isMarker(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '\'' || c == '<' || c == '>'
}

// refreshWindow adds the current line to the visible window.
func (s *Stream) refreshWindow() {
	if s.lineNo == LineUnknown {
		return
	}
	s.window.add(s.lineNo, string(s.current))
	s.display.ShowWindow(s.window.first, s.window.snapshot())
}

// Window returns the 0-based first line and text of the visible window.
func (s *Stream) Window() (int, []string) {
	return s.window.first, s.window.snapshot()
}

func (s *Stream) tempPath(kind string) string {
	return filepath.Join(s.opts.TempDir, fmt.Sprintf("wex-%s.%s", s.id, kind))
}
