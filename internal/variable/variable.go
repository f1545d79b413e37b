// Package variable implements named macro variables and their expansion.
//
// A variable's kind decides where its value comes from: a built-in
// computation, the environment, a fixed value, user input, a template file,
// or a Lua chunk.
package variable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Errors returned by expansion.
var (
	// ErrCancelled indicates the user dismissed an input prompt.
	ErrCancelled = errors.New("input cancelled")

	// ErrUnknownBuiltin indicates a BUILTIN variable with no computation.
	ErrUnknownBuiltin = errors.New("unknown builtin variable")

	// ErrUnknownKind indicates an unrecognized type attribute.
	ErrUnknownKind = errors.New("unknown variable type")

	// ErrLua indicates a LUA variable failed to evaluate.
	ErrLua = errors.New("lua evaluation failed")

	// ErrNoTemplate indicates a TEMPLATE variable without an expander.
	ErrNoTemplate = errors.New("template expansion unavailable")
)

// Kind selects how a variable is expanded.
type Kind int

const (
	KindBuiltin Kind = iota
	KindEnvironment
	KindFixed
	KindInput
	KindInputOnce
	KindInputSave
	KindTemplate
	KindLua
)

var kindNames = map[Kind]string{
	KindBuiltin:     "BUILTIN",
	KindEnvironment: "ENVIRONMENT",
	KindFixed:       "FIXED",
	KindInput:       "INPUT",
	KindInputOnce:   "INPUT-ONCE",
	KindInputSave:   "INPUT-SAVE",
	KindTemplate:    "TEMPLATE",
	KindLua:         "LUA",
}

// String returns the XML type attribute for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseKind parses a type attribute. An empty string means INPUT-SAVE,
// the kind given to variables created on first use.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindInputSave, nil
	}
	norm := strings.ToUpper(strings.ReplaceAll(s, "_", "-"))
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Env is what expansion needs from the editing session.
type Env interface {
	// Filename returns the full path of the edited file.
	Filename() string
	// Line returns the 1-based current line.
	Line() int
	// Comment returns the comment delimiters of the edited file's language.
	Comment() (begin, end string)
	// Prompt asks the user for a value for v, offering its current value.
	// It returns false when the user cancels.
	Prompt(v *Variable) (string, bool)
	// Template expands a TEMPLATE variable.
	Template(v *Variable) (string, error)
}

// now is replaced in tests.
var now = time.Now

// Variable is one named expansion recipe with its cached value.
type Variable struct {
	name        string
	kind        Kind
	value       string
	prefix      string
	askForInput bool
	modified    bool
}

// New creates a variable.
func New(name string, kind Kind) *Variable {
	return &Variable{name: name, kind: kind}
}

func (v *Variable) Name() string   { return v.name }
func (v *Variable) Kind() Kind     { return v.kind }
func (v *Variable) Value() string  { return v.value }
func (v *Variable) Prefix() string { return v.prefix }

// SetValue replaces the cached value, marking the variable modified when
// it changes.
func (v *Variable) SetValue(value string) {
	if v.value != value {
		v.value = value
		v.modified = true
	}
}

// SetPrefix sets text prepended to every expansion.
func (v *Variable) SetPrefix(prefix string) {
	v.prefix = prefix
}

// IsModified reports whether the value changed since load.
func (v *Variable) IsModified() bool { return v.modified }

// ClearModified marks the value as saved.
func (v *Variable) ClearModified() { v.modified = false }

// SetAskForInput forces the next expansion of an input kind to prompt.
func (v *Variable) SetAskForInput(ask bool) { v.askForInput = ask }

// AskForInput reports whether the next expansion will prompt.
func (v *Variable) AskForInput() bool { return v.askForInput }

// IsTemplate reports whether the variable names a template file.
func (v *Variable) IsTemplate() bool { return v.kind == KindTemplate }

// IsInput reports whether the variable may prompt.
func (v *Variable) IsInput() bool {
	return v.kind == KindInput || v.kind == KindInputOnce || v.kind == KindInputSave
}

// IsPersistent reports whether the value belongs in the macro store file.
func (v *Variable) IsPersistent() bool {
	return v.kind != KindInput
}

// Expand produces the variable's text. With skipInput set, input kinds
// return their cached value instead of prompting.
func (v *Variable) Expand(env Env, skipInput bool) (string, error) {
	text, err := v.expand(env, skipInput)
	v.askForInput = false
	if err != nil {
		return "", fmt.Errorf("variable %s: %w", v.name, err)
	}
	return v.prefix + text, nil
}

func (v *Variable) expand(env Env, skipInput bool) (string, error) {
	switch v.kind {
	case KindBuiltin:
		return v.builtin(env)

	case KindEnvironment:
		return os.Getenv(v.name), nil

	case KindFixed:
		return v.value, nil

	case KindInput, KindInputSave:
		if skipInput {
			return v.value, nil
		}
		return v.prompt(env)

	case KindInputOnce:
		if skipInput || (v.value != "" && !v.askForInput) {
			return v.value, nil
		}
		return v.prompt(env)

	case KindTemplate:
		if env == nil {
			return "", ErrNoTemplate
		}
		return env.Template(v)

	case KindLua:
		return evalLua(v.value, env)

	default:
		return "", fmt.Errorf("%d: %w", v.kind, ErrUnknownKind)
	}
}

func (v *Variable) prompt(env Env) (string, error) {
	if env == nil {
		return v.value, nil
	}
	value, ok := env.Prompt(v)
	if !ok {
		return "", ErrCancelled
	}
	v.SetValue(value)
	return value, nil
}

func (v *Variable) builtin(env Env) (string, error) {
	t := now()

	switch v.name {
	case "date":
		return t.Format("2006-01-02"), nil
	case "datetime":
		return t.Format("2006-01-02 15:04:05"), nil
	case "time":
		return t.Format("15:04:05"), nil
	case "year":
		return t.Format("2006"), nil
	case "nl":
		return "\n", nil
	}

	if env == nil {
		return "", fmt.Errorf("%s: %w", v.name, ErrUnknownBuiltin)
	}

	file := env.Filename()
	switch v.name {
	case "filename":
		base := filepath.Base(file)
		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	case "fullname":
		return filepath.Base(file), nil
	case "fullpath":
		return file, nil
	case "path":
		return filepath.Dir(file), nil
	case "cb":
		begin, _ := env.Comment()
		return begin, nil
	case "ce":
		_, end := env.Comment()
		return end, nil
	case "cl":
		begin, end := env.Comment()
		if end != "" {
			return begin + end, nil
		}
		return begin, nil
	}
	return "", fmt.Errorf("%s: %w", v.name, ErrUnknownBuiltin)
}
