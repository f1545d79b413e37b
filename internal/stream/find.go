package stream

// position is a restorable cursor.
type position struct {
	offset    int64
	lineStart int64
	lineNo    int
	current   []byte
}

func (s *Stream) position() position {
	return position{
		offset:    s.offset,
		lineStart: s.lineStart,
		lineNo:    s.lineNo,
		current:   append([]byte(nil), s.current...),
	}
}

func (s *Stream) restore(p position) error {
	if err := s.seek(p.offset); err != nil {
		return err
	}
	s.lineStart = p.lineStart
	s.lineNo = p.lineNo
	s.current = append(s.current[:0], p.current...)
	return nil
}

// Find moves to the next line (or previous, when forward is false) that
// matches text under the stream's find settings. When nothing matches the
// cursor is left exactly where it was and false is returned.
func (s *Stream) Find(text string, forward bool) (bool, error) {
	if s.file == nil {
		return false, ErrNotAttached
	}

	re, err := s.patterns.compile(text, s.opts.Find)
	if err != nil {
		return false, err
	}

	start := s.position()
	step := s.GetNextLine
	if !forward {
		step = s.GetPreviousLine
	}

	for step() {
		if re.Match(s.current) {
			s.refreshWindow()
			return true, nil
		}
	}

	if err := s.restore(start); err != nil {
		return false, err
	}
	return false, nil
}

// SetFindSettings replaces the find settings.
func (s *Stream) SetFindSettings(settings FindSettings) {
	s.opts.Find = settings
}

// FindSettings returns the find settings in use.
func (s *Stream) FindSettings() FindSettings {
	return s.opts.Find
}
