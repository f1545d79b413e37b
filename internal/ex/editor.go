package ex

import (
	"fmt"
	"strings"

	"github.com/dshills/wex/internal/address"
	"github.com/dshills/wex/internal/logging"
	"github.com/dshills/wex/internal/macro"
)

// Editor executes ex commands against a backend. It implements macro.Ex,
// so macros play back through it, and it records the commands it runs
// while a macro is being recorded.
type Editor struct {
	backend Backend
	mode    *macro.Mode
	status  macro.StatusBar
	logger  *logging.Logger

	lastFind    string
	lastForward bool
}

// NewEditor creates an editor. mode and status may be nil.
func NewEditor(backend Backend, mode *macro.Mode, status macro.StatusBar, logger *logging.Logger) *Editor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Editor{
		backend:     backend,
		mode:        mode,
		status:      status,
		logger:      logger.WithComponent("ex"),
		lastForward: true,
	}
}

// Backend returns the edited backend.
func (e *Editor) Backend() Backend { return e.backend }

// Control returns the backend as the macro control.
func (e *Editor) Control() macro.Control { return e.backend }

// Command executes one command and reports success. Failures are shown
// on the status bar.
func (e *Editor) Command(command string) bool {
	if err := e.Exec(command); err != nil {
		e.logger.Debug("%q: %v", command, err)
		if e.status != nil {
			e.status.ShowMessage(err.Error())
		}
		return false
	}
	return true
}

// Exec executes one command. A command that runs while recording and
// leaves the recording active is added to the macro.
func (e *Editor) Exec(command string) error {
	command = strings.TrimPrefix(strings.TrimSpace(command), ":")
	if command == "" {
		return nil
	}

	recording := e.recording()
	if err := e.exec(command); err != nil {
		return err
	}
	if recording && e.recording() {
		e.mode.FSM().Store().Record(command, true)
	}
	return nil
}

func (e *Editor) recording() bool {
	return e.mode != nil && e.mode.FSM().State() == macro.StateRecording
}

func (e *Editor) exec(command string) error {
	switch {
	case macro.IsCommand(command):
		return e.macro(command)
	case command == "dd":
		_, err := e.backend.Delete(address.Line(e.backend.CurrentLine()))
		return err
	case command == "u":
		if !e.backend.Undo() {
			return ErrNothingToUndo
		}
		return nil
	case command[0] == '/' || command[0] == '?':
		return e.find(command[1:], command[0] == '/')
	case len(command) == 2 && command[0] == 'm':
		if !e.backend.SetMarker(rune(command[1]), e.backend.CurrentLine()) {
			return fmt.Errorf("%q: %w", command[1:], ErrMarker)
		}
		return nil
	}

	r, present, rest, err := address.Parse(command, e.backend)
	if err != nil {
		return err
	}
	rest = strings.TrimLeft(rest, " ")

	if rest == "" {
		if !e.backend.Goto(r.End) {
			return fmt.Errorf("line %d: %w", r.End, address.ErrOutOfRange)
		}
		return nil
	}

	switch rest[0] {
	case 'd':
		if rest != "d" {
			break
		}
		_, err := e.backend.Delete(r)
		return err
	case 'j':
		if rest != "j" {
			break
		}
		_, err := e.backend.Join(r)
		return err
	case 's':
		return e.substitute(r, rest[1:])
	case 'a', 'i':
		text := strings.TrimPrefix(rest[1:], " ")
		if text == "" {
			return fmt.Errorf("%q: %w", command, ErrIncomplete)
		}
		_, err := e.backend.Insert(r.End, text, rest[0] == 'a')
		return err
	case 'w':
		if !present {
			r = address.Range{Begin: 1, End: max(e.backend.LineCount(), 1)}
		}
		return e.write(r, present, rest[1:])
	}
	return fmt.Errorf("%q: %w", command, ErrUnknownCommand)
}

func (e *Editor) macro(command string) error {
	if e.mode == nil {
		return fmt.Errorf("%q: %w", command, ErrUnknownCommand)
	}
	n, err := e.mode.Transition(command, e, true, 1)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", command, ErrIncomplete)
	}
	return nil
}

func (e *Editor) find(pattern string, forward bool) error {
	if pattern == "" {
		pattern = e.lastFind
	}
	if pattern == "" {
		return fmt.Errorf("no previous pattern: %w", ErrIncomplete)
	}
	e.lastFind, e.lastForward = pattern, forward

	found, err := e.backend.Find(pattern, forward)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%q: %w", pattern, ErrNoMatch)
	}
	return nil
}

// substitute handles the text after s: /pattern/replacement/flags, where
// any character may serve as the delimiter.
func (e *Editor) substitute(r address.Range, text string) error {
	if text == "" {
		return fmt.Errorf("s: %w", ErrIncomplete)
	}
	delim := text[0]
	parts := splitDelimited(text[1:], delim)
	if len(parts) < 2 {
		return fmt.Errorf("s%s: %w", text, ErrIncomplete)
	}

	global := false
	if len(parts) > 2 {
		for _, flag := range parts[2] {
			switch flag {
			case 'g':
				global = true
			default:
				return fmt.Errorf("s flag %q: %w", flag, ErrUnknownCommand)
			}
		}
	}

	n, err := e.backend.Substitute(r, parts[0], parts[1], global)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", parts[0], ErrNoMatch)
	}
	return nil
}

// splitDelimited splits text at unescaped delim characters. An escaped
// delimiter loses its backslash; other escapes are kept.
func splitDelimited(text string, delim byte) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && text[i+1] == delim:
			cur.WriteByte(delim)
			i++
		case c == '\\' && i+1 < len(text):
			cur.WriteByte(c)
			cur.WriteByte(text[i+1])
			i++
		case c == delim:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, cur.String())
}

// write handles w[!] [>>] [file]. Without a range or file it saves.
func (e *Editor) write(r address.Range, present bool, text string) error {
	text = strings.TrimPrefix(text, "!")
	text = strings.TrimSpace(text)

	appending := false
	if strings.HasPrefix(text, ">>") {
		appending = true
		text = strings.TrimSpace(text[2:])
	}

	if text == "" && !present && !appending {
		return e.backend.Save()
	}

	name := text
	if name == "" {
		name = e.backend.Filename()
	}
	if name == "" {
		return ErrNoFile
	}
	return e.backend.Write(r, name, appending)
}
