package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LinePrompter asks questions on w and reads one-line answers from r.
// End of input cancels the question.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewLinePrompter creates a prompter over r and w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

func (p *LinePrompter) ask(question string) (string, bool) {
	fmt.Fprint(p.w, question)
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// Input asks for a variable value. An empty answer keeps value.
func (p *LinePrompter) Input(name, value string) (string, bool) {
	answer, ok := p.ask(fmt.Sprintf("%s [%s]: ", name, value))
	if !ok {
		return "", false
	}
	if answer == "" {
		return value, true
	}
	return answer, true
}

// Name asks for the name of a macro to record.
func (p *LinePrompter) Name() (string, bool) {
	answer, ok := p.ask("record macro: ")
	if !ok || strings.TrimSpace(answer) == "" {
		return "", false
	}
	return strings.TrimSpace(answer), true
}

// Select lists candidates and accepts either a number or a name.
func (p *LinePrompter) Select(candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	for i, c := range candidates {
		fmt.Fprintf(p.w, "%3d %s\n", i+1, c)
	}
	answer, ok := p.ask("macro: ")
	answer = strings.TrimSpace(answer)
	if !ok || answer == "" {
		return "", false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(candidates) {
			return "", false
		}
		return candidates[n-1], true
	}
	return answer, true
}
