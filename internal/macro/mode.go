package macro

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	algo.Init("default")
}

// Mode turns the q and @ ex commands into FSM triggers.
type Mode struct {
	fsm      *FSM
	prompter Prompter
	slab     *util.Slab
}

// NewMode creates the front door for fsm. prompter may be nil, in which
// case commands that need a dialog are not consumed.
func NewMode(fsm *FSM, prompter Prompter) *Mode {
	return &Mode{
		fsm:      fsm,
		prompter: prompter,
		slab:     util.MakeSlab(100*1024, 2048),
	}
}

// FSM returns the state machine driven by the mode.
func (m *Mode) FSM() *FSM { return m.fsm }

// IsCommand returns true if command is handled by Transition.
func IsCommand(command string) bool {
	return strings.HasPrefix(command, "q") || strings.HasPrefix(command, "@")
}

// Transition handles a q or @ command. It returns the number of characters
// consumed: 0 when the command is not a macro command, needs more input,
// or failed, in which case the error says why. With complete set the
// command is final and names may be asked for.
func (m *Mode) Transition(command string, ex Ex, complete bool, repeat int) (int, error) {
	if command == "" {
		return 0, nil
	}
	if repeat <= 0 {
		repeat = 1
	}

	switch command[0] {
	case 'q':
		return m.record(command, ex, complete)
	case '@':
		return m.playback(command, ex, complete, repeat)
	}
	return 0, nil
}

func (m *Mode) record(command string, ex Ex, complete bool) (int, error) {
	name := command[1:]

	switch {
	case name == "" && m.fsm.State() == StateRecording:
		// q stops the recording.
	case name == "":
		if !complete || m.prompter == nil {
			return 0, nil
		}
		entered, ok := m.prompter.Name()
		if !ok || entered == "" {
			return 0, nil
		}
		name = entered
	case IsRegisterName(name):
		r := registerRune(name)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return 0, nil
		}
	case !complete:
		return 0, nil
	case !isMacroName(name):
		return 0, fmt.Errorf("%q: %w", name, ErrInvalidRegister)
	}

	return m.execute(TriggerRecord, name, ex, 1, len(command))
}

func (m *Mode) playback(command string, ex Ex, complete bool, repeat int) (int, error) {
	rest := command[1:]
	store := m.fsm.Store()

	switch {
	case rest == "":
		return m.selectTarget("", command, ex, complete, repeat)

	case rest == "@":
		last := store.Last()
		if last == "" {
			return m.selectTarget("", command, ex, complete, repeat)
		}
		return m.dispatch(last, ex, repeat, len(command))

	case rest[0] == '\'':
		if len(rest) < 2 {
			return 0, nil
		}
		target := strings.TrimSpace(store.Register(registerRune(rest[1:2])))
		if target == "" {
			return 0, fmt.Errorf("register %s: %w", rest[1:2], ErrUnknownMacro)
		}
		return m.dispatch(target, ex, repeat, len(command))
	}

	// Leading digits are a count when a name follows.
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(rest) {
		n, err := strconv.Atoi(rest[:digits])
		if err == nil && n > 0 {
			repeat = n
		}
		rest = rest[digits:]
	}

	// A trailing @ ends a name explicitly.
	if len(rest) > 1 && strings.HasSuffix(rest, "@") {
		return m.dispatch(strings.TrimSuffix(rest, "@"), ex, repeat, len(command))
	}

	if store.IsRecorded(rest) {
		longer := false
		for _, name := range m.Candidates(rest, true) {
			if name != rest {
				longer = true
				break
			}
		}
		if complete || !longer {
			return m.dispatch(rest, ex, repeat, len(command))
		}
		return 0, nil
	}

	candidates := m.Candidates(rest, true)
	switch {
	case len(candidates) == 1:
		return m.dispatch(candidates[0], ex, repeat, len(command))
	case !complete:
		return 0, nil
	case len(candidates) > 1:
		return m.selectTarget(rest, command, ex, complete, repeat)
	case IsRegisterName(rest):
		return m.execute(TriggerPlayback, rest, ex, repeat, len(command))
	}
	return m.execute(TriggerExpandVariable, rest, ex, 1, len(command))
}

// selectTarget asks the user to pick a macro or variable, ranked by query.
func (m *Mode) selectTarget(query, command string, ex Ex, complete bool, repeat int) (int, error) {
	if !complete || m.prompter == nil {
		return 0, nil
	}
	candidates := m.Candidates(query, false)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%q: %w", query, ErrUnknownMacro)
	}
	name, ok := m.prompter.Select(candidates)
	if !ok || name == "" {
		return 0, nil
	}
	return m.dispatch(name, ex, repeat, len(command))
}

// dispatch plays back a recorded macro or register and expands anything
// else as a variable.
func (m *Mode) dispatch(name string, ex Ex, repeat, consumed int) (int, error) {
	if m.fsm.Store().IsRecorded(name) || IsRegisterName(name) {
		return m.execute(TriggerPlayback, name, ex, repeat, consumed)
	}
	return m.execute(TriggerExpandVariable, name, ex, 1, consumed)
}

func (m *Mode) execute(trigger Trigger, name string, ex Ex, repeat, consumed int) (int, error) {
	if m.fsm.Execute(trigger, name, ex, repeat) {
		return consumed, nil
	}
	if err := m.fsm.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%s %q in %s: %w", trigger, name, m.fsm.State(), ErrRejected)
}

// Candidates returns the macro and variable names matching query. With
// prefix set only names starting with query match, in sorted order;
// otherwise names are ranked by fuzzy score.
func (m *Mode) Candidates(query string, prefix bool) []string {
	names := m.fsm.Store().Names()
	if query == "" {
		return names
	}

	pattern := []rune(query)
	if !prefix {
		// Case-insensitive matching expects a lowercase pattern.
		pattern = []rune(strings.ToLower(query))
	}
	type scored struct {
		name  string
		score int
	}
	var matches []scored

	for _, name := range names {
		chars := util.ToChars([]byte(name))
		var result algo.Result
		if prefix {
			result, _ = algo.PrefixMatch(true, false, true, &chars, pattern, false, m.slab)
		} else {
			result, _ = algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, m.slab)
		}
		if result.Start >= 0 {
			matches = append(matches, scored{name, result.Score})
		}
	}

	if !prefix {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].score > matches[j].score
		})
	}

	result := make([]string, len(matches))
	for i, s := range matches {
		result[i] = s.name
	}
	return result
}

func isMacroName(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return name != ""
}
