// Package macro implements recorded ex macros: the macro store with its
// registers, variables and XML persistence, the state machine that
// sequences recording, playback and expansion, and the ex command front
// door that drives it.
package macro

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/wex/internal/logging"
	"github.com/dshills/wex/internal/variable"
)

// Store holds the macros, registers, variables and abbreviations of one
// editing session.
type Store struct {
	mu sync.Mutex

	path      string
	logger    *logging.Logger
	clipboard Clipboard

	macros        map[string][]string
	variables     map[string]*variable.Variable
	nodes         map[string]*variable.Node
	abbreviations map[string]string

	recording   bool
	recName     string
	recAppend   bool
	recCommands []string

	last     string
	modified bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClipboard sets the clipboard behind the * and " registers.
func WithClipboard(c Clipboard) StoreOption {
	return func(s *Store) {
		s.clipboard = c
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates an empty store. It uses the system clipboard unless
// WithClipboard is given.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger:    logging.Nop(),
		clipboard: SystemClipboard{},
	}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) reset() {
	s.macros = make(map[string][]string)
	s.variables = make(map[string]*variable.Variable)
	s.nodes = make(map[string]*variable.Node)
	s.abbreviations = make(map[string]string)
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// IsModified returns true if the store changed since it was loaded or saved.
func (s *Store) IsModified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// Get returns a copy of the commands of a macro or register.
func (s *Store) Get(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	commands := s.macros[name]
	if len(commands) == 0 {
		return nil
	}
	result := make([]string, len(commands))
	copy(result, commands)
	return result
}

// IsRecorded returns true if name holds at least one command.
func (s *Store) IsRecorded(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.macros[name]) > 0
}

// IsRecordedMacro returns true if name is a recorded macro rather than a
// register.
func (s *Store) IsRecordedMacro(name string) bool {
	return !IsRegisterName(name) && s.IsRecorded(name)
}

// MacroNames returns the names of all recorded macros and registers, sorted.
func (s *Store) MacroNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.macros))
	for name, commands := range s.macros {
		if len(commands) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// VariableNames returns the names of all known variables, sorted.
func (s *Store) VariableNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns macro and variable names, sorted and without duplicates.
func (s *Store) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, list := range [][]string{s.MacroNames(), s.VariableNames()} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// FindVariable looks up a variable without creating it.
func (s *Store) FindVariable(name string) (*variable.Variable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variables[name]
	return v, ok
}

// Variable returns the named variable, creating an INPUT-SAVE variable on
// first reference.
func (s *Store) Variable(name string) *variable.Variable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variables[name]; ok {
		return v
	}
	v := variable.New(name, variable.KindInputSave)
	s.variables[name] = v
	s.logger.Debug("created variable %s", name)
	return v
}

// AddVariable adds or replaces a variable.
func (s *Store) AddVariable(v *variable.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[v.Name()] = v
	node := v.Node()
	s.nodes[v.Name()] = &node
	s.modified = true
}

// UpdateVariable copies the variable's current value into its persisted
// node and writes the store file so a prompted value survives a crash.
func (s *Store) UpdateVariable(v *variable.Variable) {
	s.mu.Lock()
	node, ok := s.nodes[v.Name()]
	if !ok {
		node = &variable.Node{}
		s.nodes[v.Name()] = node
	}
	v.Save(node)
	s.modified = true
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return
	}
	if err := s.Save(); err != nil {
		s.logger.Warn("persisting variable %s: %v", v.Name(), err)
	}
}

// StartRecording begins recording into name. An uppercase register name
// appends to its lowercase register.
func (s *Store) StartRecording(name string) error {
	if name == "" {
		return fmt.Errorf("empty macro name: %w", ErrInvalidRegister)
	}

	appending := false
	if IsRegisterName(name) {
		r := registerRune(name)
		if !IsValidRegister(r) {
			return fmt.Errorf("%q: %w", name, ErrInvalidRegister)
		}
		appending = IsAppendRegister(r)
		name = string(NormalizeRegister(r))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = true
	s.recName = name
	s.recAppend = appending
	s.recCommands = nil
	s.logger.Debug("recording %s", name)
	return nil
}

// Record adds text to the recording. With newCommand unset the text is
// appended to the last recorded command instead.
func (s *Store) Record(text string, newCommand bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return false
	}
	if newCommand || len(s.recCommands) == 0 {
		s.recCommands = append(s.recCommands, text)
	} else {
		s.recCommands[len(s.recCommands)-1] += text
	}
	return true
}

// StopRecording ends the recording. The macro is kept only if at least one
// command was recorded; it returns the macro name and whether it was kept.
func (s *Store) StopRecording() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return "", false
	}

	name := s.recName
	commands := s.recCommands
	s.recording = false
	s.recName = ""
	s.recCommands = nil

	if len(commands) == 0 {
		s.logger.Debug("discarded empty macro %s", name)
		return name, false
	}

	if s.recAppend {
		s.macros[name] = append(s.macros[name], commands...)
	} else {
		s.macros[name] = commands
	}
	s.modified = true
	s.logger.Info("recorded %s (%d commands)", name, len(commands))
	return name, true
}

// IsRecording returns true while a recording is in progress.
func (s *Store) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// RecordingName returns the macro being recorded, or "".
func (s *Store) RecordingName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return ""
	}
	return s.recName
}

// SetRegister writes text into a register. Lowercase names overwrite,
// uppercase names append, * and " write the clipboard, and _ discards.
func (s *Store) SetRegister(name rune, text string) error {
	switch {
	case name == RegisterBlackHole:
		return nil
	case IsClipboardRegister(name):
		return s.clipboard.WriteAll(text)
	case !IsValidRegister(name):
		return fmt.Errorf("%q: %w", name, ErrInvalidRegister)
	}

	key := string(NormalizeRegister(name))

	s.mu.Lock()
	defer s.mu.Unlock()

	if IsAppendRegister(name) {
		s.macros[key] = append(s.macros[key], text)
	} else if text == "" {
		delete(s.macros, key)
	} else {
		s.macros[key] = []string{text}
	}
	s.modified = true
	return nil
}

// Register returns the content of a register.
func (s *Store) Register(name rune) string {
	switch {
	case name == RegisterBlackHole:
		return ""
	case IsClipboardRegister(name):
		text, err := s.clipboard.ReadAll()
		if err != nil {
			s.logger.Warn("reading clipboard: %v", err)
			return ""
		}
		return text
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.macros[string(NormalizeRegister(name))], "")
}

// Registers returns the names of all non-empty registers, sorted.
func (s *Store) Registers() []rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []rune
	for name, commands := range s.macros {
		if IsRegisterName(name) && len(commands) > 0 {
			result = append(result, registerRune(name))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Abbreviations returns a copy of the abbreviation table.
func (s *Store) Abbreviations() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]string, len(s.abbreviations))
	for k, v := range s.abbreviations {
		result[k] = v
	}
	return result
}

// SetAbbreviation adds an abbreviation, or removes it when text is empty.
func (s *Store) SetAbbreviation(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.abbreviations, name)
	} else {
		s.abbreviations[name] = text
	}
	s.modified = true
}

// SetLast sets the macro repeated by @@.
func (s *Store) SetLast(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = name
}

// Last returns the macro repeated by @@.
func (s *Store) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
