package macro

import "errors"

// Macro errors.
var (
	// ErrUnknownMacro indicates playback of a name that was never recorded.
	ErrUnknownMacro = errors.New("unknown macro")

	// ErrNoEx indicates an operation that needs an ex context ran without one.
	ErrNoEx = errors.New("no ex context")

	// ErrUnterminated indicates an @name reference without a closing @.
	ErrUnterminated = errors.New("unterminated variable reference")

	// ErrRecursive indicates a variable that expands to itself.
	ErrRecursive = errors.New("recursive variable reference")

	// ErrNotTemplate indicates template expansion of a non-template variable.
	ErrNotTemplate = errors.New("variable is not a template")

	// ErrTemplateOpen indicates the template file could not be read.
	ErrTemplateOpen = errors.New("cannot open template")

	// ErrRejected indicates the current state does not accept the trigger.
	ErrRejected = errors.New("transition rejected")

	// ErrDuplicate indicates a name that occurs twice in the macros file.
	ErrDuplicate = errors.New("duplicate name")

	// ErrAborted indicates a command failed during playback.
	ErrAborted = errors.New("macro aborted")

	// ErrInvalidRegister indicates a register name that cannot be written.
	ErrInvalidRegister = errors.New("invalid register")
)
