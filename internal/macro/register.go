package macro

import (
	"unicode"

	"github.com/atotto/clipboard"
)

// Special register names.
const (
	// RegisterBlackHole discards everything written to it.
	RegisterBlackHole = '_'
	// RegisterClipboard is the system clipboard.
	RegisterClipboard = '*'
	// RegisterUnnamed also maps to the system clipboard.
	RegisterUnnamed = '"'
)

// Clipboard is the system clipboard behind the * and " registers.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// MemoryClipboard is a process-local clipboard for headless sessions.
type MemoryClipboard struct {
	text string
}

func (c *MemoryClipboard) ReadAll() (string, error) { return c.text, nil }

func (c *MemoryClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

// IsRegisterName returns true if name is a single character, the naming
// rule that separates registers from named macros.
func IsRegisterName(name string) bool {
	return len([]rune(name)) == 1
}

// IsClipboardRegister returns true for * and ".
func IsClipboardRegister(r rune) bool {
	return r == RegisterClipboard || r == RegisterUnnamed
}

// IsAppendRegister returns true if r is an uppercase letter (A-Z).
// Uppercase registers append to the corresponding lowercase register.
func IsAppendRegister(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// NormalizeRegister converts an append register to its lowercase target.
func NormalizeRegister(r rune) rune {
	if IsAppendRegister(r) {
		return unicode.ToLower(r)
	}
	return r
}

// IsValidRegister returns true if r can hold recorded commands.
func IsValidRegister(r rune) bool {
	r = NormalizeRegister(r)
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func registerRune(name string) rune {
	r := []rune(name)
	if len(r) != 1 {
		return 0
	}
	return r[0]
}
