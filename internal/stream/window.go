package stream

// window is the run of consecutive lines handed to the display, capped at
// limit lines by trimming from the top.
type window struct {
	first int
	lines []string
	limit int
}

func (w *window) reset() {
	w.first = 0
	w.lines = w.lines[:0]
}

func (w *window) add(lineNo int, text string) {
	if n := len(w.lines); n > 0 && lineNo >= w.first && lineNo < w.first+n {
		w.lines[lineNo-w.first] = text
		return
	}
	if len(w.lines) == 0 || lineNo != w.first+len(w.lines) {
		w.first = lineNo
		w.lines = w.lines[:0]
	}

	w.lines = append(w.lines, text)
	if over := len(w.lines) - w.limit; over > 0 {
		w.lines = append(w.lines[:0], w.lines[over:]...)
		w.first += over
	}
}

func (w *window) snapshot() []string {
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}
