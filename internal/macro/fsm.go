package macro

import (
	"errors"
	"fmt"

	"github.com/dshills/wex/internal/logging"
	"github.com/dshills/wex/internal/variable"
)

// State is the global macro operation in progress.
type State int

const (
	// StateIdle means no macro operation is running.
	StateIdle State = iota
	// StateRecording collects successful commands into the recording buffer.
	StateRecording
	// StatePlayingback replays a recorded macro.
	StatePlayingback
	// StatePlayingbackWhileRecording replays a macro inside a recording.
	StatePlayingbackWhileRecording
	// StateExpandingTemplate expands a template file.
	StateExpandingTemplate
	// StateExpandingVariable expands a single variable at the caret.
	StateExpandingVariable
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePlayingback:
		return "playingback"
	case StatePlayingbackWhileRecording:
		return "playingback while recording"
	case StateExpandingTemplate:
		return "expanding template"
	case StateExpandingVariable:
		return "expanding variable"
	default:
		return "unknown"
	}
}

// Mode returns the text shown in the mode pane.
func (s State) Mode() string {
	switch s {
	case StateRecording:
		return "recording"
	case StatePlayingback:
		return "playback"
	case StatePlayingbackWhileRecording:
		return "recording playback"
	case StateExpandingTemplate:
		return "template"
	case StateExpandingVariable:
		return "variable"
	default:
		return ""
	}
}

// Trigger is an event fed to the FSM.
type Trigger int

const (
	// TriggerRecord starts a recording, or stops the one in progress.
	TriggerRecord Trigger = iota
	// TriggerPlayback plays a macro or register.
	TriggerPlayback
	// TriggerExpandTemplate expands a template variable.
	TriggerExpandTemplate
	// TriggerExpandVariable expands a variable and inserts the result.
	TriggerExpandVariable
	// TriggerDone returns from a playback or expansion state.
	TriggerDone
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerRecord:
		return "record"
	case TriggerPlayback:
		return "playback"
	case TriggerExpandTemplate:
		return "expand template"
	case TriggerExpandVariable:
		return "expand variable"
	case TriggerDone:
		return "done"
	default:
		return "unknown"
	}
}

// Status pane names.
const (
	PaneMacro = "macro"
	PaneMode  = "mode"
)

//go:generate mockgen -destination=./mock_macro/mock_macro.go . Ex,Control,StatusBar,Prompter

// Control is the text control an ex session edits.
type Control interface {
	// BeginUndo and EndUndo bracket changes that undo as one step.
	BeginUndo()
	EndUndo()
	// CurrentLine returns the 1-based caret line.
	CurrentLine() int
	// AddText inserts text at the caret.
	AddText(text string) error
	Filename() string
	Comment() (begin, end string)
	SelectedText() string
	// ShowMode toggles the macro activity indicator.
	ShowMode(show bool)
}

// Ex executes ex commands.
type Ex interface {
	Command(command string) bool
	Control() Control
}

// StatusBar shows named panes and messages.
type StatusBar interface {
	ShowPane(pane, text string)
	ShowMessage(text string)
}

// Prompter asks the user for input.
type Prompter interface {
	// Input asks for a variable value, offering the current one.
	Input(name, value string) (string, bool)
	// Name asks for the name of a macro to record.
	Name() (string, bool)
	// Select offers a list of macro and variable names.
	Select(candidates []string) (string, bool)
}

type transitionKey struct {
	from    State
	trigger Trigger
}

type transition struct {
	guard  func(*FSM) bool
	action func(*FSM) error
	next   State
}

var transitions = map[transitionKey]transition{
	{StateIdle, TriggerRecord}:         {nil, (*FSM).startRecording, StateRecording},
	{StateIdle, TriggerPlayback}:       {(*FSM).canPlayback, (*FSM).playback, StatePlayingback},
	{StateIdle, TriggerExpandTemplate}: {(*FSM).isTemplate, (*FSM).expandTemplate, StateExpandingTemplate},
	{StateIdle, TriggerExpandVariable}: {nil, (*FSM).expandVariable, StateExpandingVariable},

	{StateRecording, TriggerRecord}:   {nil, (*FSM).stopRecording, StateIdle},
	{StateRecording, TriggerPlayback}: {(*FSM).canPlaybackWhileRecording, (*FSM).playback, StatePlayingbackWhileRecording},

	{StatePlayingback, TriggerPlayback}: {(*FSM).canPlayback, (*FSM).playback, StatePlayingback},
	{StatePlayingback, TriggerDone}:     {nil, nil, StateIdle},

	{StatePlayingbackWhileRecording, TriggerPlayback}: {(*FSM).canPlaybackWhileRecording, (*FSM).playback, StatePlayingbackWhileRecording},
	{StatePlayingbackWhileRecording, TriggerDone}:     {nil, nil, StateRecording},

	{StateExpandingTemplate, TriggerDone}: {nil, nil, StateIdle},
	{StateExpandingVariable, TriggerDone}: {nil, nil, StateIdle},
}

// Options configures an FSM.
type Options struct {
	Store    *Store
	Status   StatusBar
	Prompter Prompter
	Logger   *logging.Logger
	// ConfigDir is where template files are found.
	ConfigDir string
	// SkipInput makes input variables use their cached value.
	SkipInput bool
}

// FSM sequences recording, playback and expansion. It runs on the caller's
// goroutine; playback executes every command before Execute returns.
type FSM struct {
	store     *Store
	status    StatusBar
	prompter  Prompter
	logger    *logging.Logger
	configDir string
	skipInput bool

	state State
	depth int
	err   error

	// Arguments of the trigger being fired.
	macro    string
	ex       Ex
	count    int
	variable *variable.Variable
	expanded string

	// Current shows the name in the macro pane.
	current string
	// playing holds the macros being played back, outermost first.
	playing []string
	// expanding holds the variables being expanded, outermost first.
	expanding []string
}

// NewFSM creates an idle FSM.
func NewFSM(opts Options) *FSM {
	f := &FSM{
		store:     opts.Store,
		status:    opts.Status,
		prompter:  opts.Prompter,
		logger:    opts.Logger,
		configDir: opts.ConfigDir,
		skipInput: opts.SkipInput,
	}
	if f.store == nil {
		f.store = NewStore()
	}
	if f.logger == nil {
		f.logger = logging.Nop()
	}
	return f
}

// State returns the current state.
func (f *FSM) State() State { return f.state }

// Err returns the error of the last failed action.
func (f *FSM) Err() error { return f.err }

// Current returns the macro or variable last recorded, played or expanded.
func (f *FSM) Current() string { return f.current }

// Store returns the macro store.
func (f *FSM) Store() *Store { return f.store }

// SetSkipInput sets whether input variables prompt.
func (f *FSM) SetSkipInput(skip bool) { f.skipInput = skip }

// Execute fires trigger for macro and returns false if the transition was
// rejected or its action failed. Playback and variable expansion finish
// before Execute returns: the outermost call fires Done to get back to a
// stable state. A template expansion stays in StateExpandingTemplate, where
// recording and playback are rejected, until the caller fires
// TriggerDone. Use Expand to expand a template in one call.
func (f *FSM) Execute(trigger Trigger, macro string, ex Ex, repeat int) bool {
	f.depth++
	defer func() { f.depth-- }()

	f.macro = macro
	f.ex = ex
	f.count = repeat
	f.err = nil

	if trigger == TriggerExpandTemplate {
		f.variable = f.store.Variable(macro)
	}

	ok := f.fire(trigger)

	if ok && trigger == TriggerExpandTemplate && ex != nil && ex.Control() != nil {
		if err := ex.Control().AddText(f.expanded); err != nil {
			f.fail(fmt.Errorf("template %s: %w", macro, err))
		}
	}

	if f.depth == 1 {
		switch f.state {
		case StatePlayingback, StatePlayingbackWhileRecording, StateExpandingVariable:
			f.fire(TriggerDone)
		}
	}

	f.updateStatus(ex)
	return ok && f.err == nil
}

// Expand expands a template variable into expanded.
func (f *FSM) Expand(ex Ex, v *variable.Variable, expanded *string) bool {
	f.ex = ex
	f.variable = v
	f.err = nil
	f.count = 1

	ok := f.fire(TriggerExpandTemplate)
	if ok {
		*expanded = f.expanded
	}
	done := f.fire(TriggerDone)

	f.updateStatus(ex)
	return ok && done
}

// fire runs one transition. A rejected trigger or failed guard leaves the
// state unchanged, as does a failed action.
func (f *FSM) fire(trigger Trigger) bool {
	t, ok := transitions[transitionKey{f.state, trigger}]
	if !ok {
		f.logger.Debug("%s: %s rejected", f.state, trigger)
		return false
	}

	if t.guard != nil && !t.guard(f) {
		f.logger.Debug("%s: %s guard failed for %q", f.state, trigger, f.macro)
		return false
	}

	from := f.state
	f.state = t.next

	if t.action != nil {
		if err := t.action(f); err != nil {
			f.state = from
			f.fail(err)
			return false
		}
	}
	return true
}

func (f *FSM) fail(err error) {
	f.err = err
	f.logger.Info("%v", err)
	if f.status != nil && !errors.Is(err, ErrAborted) {
		f.status.ShowMessage(err.Error())
	}
}

func (f *FSM) updateStatus(ex Ex) {
	if f.status != nil {
		f.status.ShowPane(PaneMacro, f.current)
		f.status.ShowPane(PaneMode, f.state.Mode())
	}
	if ex != nil && ex.Control() != nil {
		ex.Control().ShowMode(f.state != StateIdle)
	}
}

func (f *FSM) canPlayback() bool {
	if f.count <= 0 {
		return false
	}
	for _, name := range f.playing {
		if name == f.macro {
			return false
		}
	}
	return true
}

func (f *FSM) canPlaybackWhileRecording() bool {
	return f.macro != f.store.RecordingName() && f.canPlayback()
}

func (f *FSM) isTemplate() bool {
	return f.variable != nil && f.variable.IsTemplate() && f.variable.Value() != ""
}

func (f *FSM) startRecording() error {
	if err := f.store.StartRecording(f.macro); err != nil {
		return err
	}
	f.current = f.store.RecordingName()
	return nil
}

func (f *FSM) stopRecording() error {
	name, kept := f.store.StopRecording()
	if kept {
		f.store.SetLast(name)
		f.current = name
	} else {
		f.current = ""
	}
	return nil
}

func (f *FSM) playback() error {
	name, ex, count := f.macro, f.ex, f.count

	if ex == nil {
		return fmt.Errorf("playback %s: %w", name, ErrNoEx)
	}
	commands := f.store.Get(name)
	if len(commands) == 0 {
		return fmt.Errorf("%s: %w", name, ErrUnknownMacro)
	}

	if ctl := ex.Control(); ctl != nil {
		ctl.BeginUndo()
		defer ctl.EndUndo()
	}

	f.playing = append(f.playing, name)
	defer func() { f.playing = f.playing[:len(f.playing)-1] }()

	f.logger.Debug("playback %s x%d", name, count)

	for i := 0; i < count; i++ {
		for _, command := range commands {
			if !ex.Command(command) {
				if f.status != nil {
					f.status.ShowMessage(fmt.Sprintf("Macro aborted at '%s'", command))
				}
				return fmt.Errorf("%s at '%s': %w", name, command, ErrAborted)
			}
		}
	}

	f.store.SetLast(name)
	f.current = name
	return nil
}

func (f *FSM) expandVariable() error {
	if f.ex == nil || f.ex.Control() == nil {
		return fmt.Errorf("variable %s: %w", f.macro, ErrNoEx)
	}

	v := f.store.Variable(f.macro)
	text, err := f.expandOne(f.ex.Control(), v)
	if err != nil {
		return err
	}

	if err := f.ex.Control().AddText(text); err != nil {
		return fmt.Errorf("variable %s: %w", v.Name(), err)
	}
	f.store.SetLast(v.Name())
	f.current = v.Name()
	return nil
}

func (f *FSM) expandTemplate() error {
	if f.variable == nil {
		return ErrNotTemplate
	}

	var ctl Control
	if f.ex != nil {
		ctl = f.ex.Control()
	}

	text, err := f.template(ctl, f.variable)
	if err != nil {
		return err
	}

	f.store.UpdateVariable(f.variable)
	f.expanded = text
	f.store.SetLast(f.variable.Name())
	f.current = f.variable.Name()
	return nil
}

// expandOne expands a single variable and persists its new value.
func (f *FSM) expandOne(ctl Control, v *variable.Variable) (string, error) {
	for _, name := range f.expanding {
		if name == v.Name() {
			return "", fmt.Errorf("%s: %w", v.Name(), ErrRecursive)
		}
	}
	f.expanding = append(f.expanding, v.Name())
	defer func() { f.expanding = f.expanding[:len(f.expanding)-1] }()

	text, err := v.Expand(&expandEnv{fsm: f, ctl: ctl}, f.skipInput)
	if err != nil {
		return "", err
	}
	f.store.UpdateVariable(v)
	return text, nil
}

// expandEnv gives variables access to the control and to template
// expansion.
type expandEnv struct {
	fsm *FSM
	ctl Control
}

func (e *expandEnv) Filename() string {
	if e.ctl == nil {
		return ""
	}
	return e.ctl.Filename()
}

func (e *expandEnv) Line() int {
	if e.ctl == nil {
		return 0
	}
	return e.ctl.CurrentLine()
}

func (e *expandEnv) Comment() (string, string) {
	if e.ctl == nil {
		return "", ""
	}
	return e.ctl.Comment()
}

func (e *expandEnv) Prompt(v *variable.Variable) (string, bool) {
	if e.fsm.prompter == nil {
		return v.Value(), true
	}
	return e.fsm.prompter.Input(v.Name(), v.Value())
}

// Template is reached from a nested TEMPLATE variable; the variable itself
// is already on the expansion stack.
func (e *expandEnv) Template(v *variable.Variable) (string, error) {
	return e.fsm.templateFile(e.ctl, v)
}
