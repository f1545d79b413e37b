package macro_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/dshills/wex/internal/macro"
	mock_macro "github.com/dshills/wex/internal/macro/mock_macro"
	"github.com/dshills/wex/internal/variable"
)

type fixture struct {
	ctrl   *gomock.Controller
	store  *macro.Store
	fsm    *macro.FSM
	ex     *mock_macro.MockEx
	ctl    *mock_macro.MockControl
	status *mock_macro.MockStatusBar
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		ctrl:   ctrl,
		store:  macro.NewStore(macro.WithClipboard(&macro.MemoryClipboard{})),
		ex:     mock_macro.NewMockEx(ctrl),
		ctl:    mock_macro.NewMockControl(ctrl),
		status: mock_macro.NewMockStatusBar(ctrl),
		dir:    t.TempDir(),
	}
	f.fsm = macro.NewFSM(macro.Options{
		Store:     f.store,
		Status:    f.status,
		ConfigDir: f.dir,
	})

	f.ex.EXPECT().Control().Return(f.ctl).AnyTimes()
	f.ctl.EXPECT().ShowMode(gomock.Any()).AnyTimes()
	f.status.EXPECT().ShowPane(gomock.Any(), gomock.Any()).AnyTimes()
	return f
}

func (f *fixture) record(t *testing.T, name string, commands ...string) {
	t.Helper()
	if !f.fsm.Execute(macro.TriggerRecord, name, f.ex, 1) {
		t.Fatalf("start recording %s: %v", name, f.fsm.Err())
	}
	for _, c := range commands {
		f.store.Record(c, true)
	}
	if !f.fsm.Execute(macro.TriggerRecord, "", f.ex, 1) {
		t.Fatalf("stop recording %s: %v", name, f.fsm.Err())
	}
}

func (f *fixture) template(t *testing.T, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, file), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) variable(name string, kind variable.Kind, value string) *variable.Variable {
	v := variable.New(name, kind)
	v.SetValue(value)
	f.store.AddVariable(v)
	return v
}

func TestFSM_RecordToggles(t *testing.T) {
	f := newFixture(t)

	if !f.fsm.Execute(macro.TriggerRecord, "a", f.ex, 1) {
		t.Fatal("record rejected")
	}
	if f.fsm.State() != macro.StateRecording {
		t.Fatalf("state = %v", f.fsm.State())
	}
	f.store.Record("1", true)

	if !f.fsm.Execute(macro.TriggerRecord, "", f.ex, 1) {
		t.Fatal("stop rejected")
	}
	if f.fsm.State() != macro.StateIdle {
		t.Fatalf("state = %v", f.fsm.State())
	}
	if !f.store.IsRecorded("a") || f.store.Last() != "a" || f.fsm.Current() != "a" {
		t.Errorf("recorded %v last %q current %q", f.store.IsRecorded("a"), f.store.Last(), f.fsm.Current())
	}
}

func TestFSM_EmptyRecordingDiscarded(t *testing.T) {
	f := newFixture(t)
	f.record(t, "e")
	if f.store.IsRecorded("e") {
		t.Error("empty macro kept")
	}
}

func TestFSM_PlaybackCountGuard(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "1")

	for _, count := range []int{0, -1} {
		if f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, count) {
			t.Errorf("playback x%d accepted", count)
		}
		if f.fsm.State() != macro.StateIdle {
			t.Errorf("state = %v", f.fsm.State())
		}
	}
}

func TestFSM_PlaybackUnknown(t *testing.T) {
	f := newFixture(t)
	f.status.EXPECT().ShowMessage(gomock.Any())

	if f.fsm.Execute(macro.TriggerPlayback, "z", f.ex, 1) {
		t.Fatal("unknown macro played")
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
	if !errors.Is(f.fsm.Err(), macro.ErrUnknownMacro) {
		t.Errorf("Err() = %v", f.fsm.Err())
	}
}

func TestFSM_PlaybackRunsCommandsInOneUndo(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "1", "dd")

	gomock.InOrder(
		f.ctl.EXPECT().BeginUndo(),
		f.ex.EXPECT().Command("1").Return(true),
		f.ex.EXPECT().Command("dd").Return(true),
		f.ex.EXPECT().Command("1").Return(true),
		f.ex.EXPECT().Command("dd").Return(true),
		f.ctl.EXPECT().EndUndo(),
	)

	if !f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, 2) {
		t.Fatalf("playback failed: %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_PlaybackAborts(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "1", "bad", "dd")

	f.ctl.EXPECT().BeginUndo()
	f.ctl.EXPECT().EndUndo()
	f.ex.EXPECT().Command("1").Return(true)
	f.ex.EXPECT().Command("bad").Return(false)
	f.status.EXPECT().ShowMessage("Macro aborted at 'bad'")

	if f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, 1) {
		t.Fatal("aborted playback succeeded")
	}
	if !errors.Is(f.fsm.Err(), macro.ErrAborted) {
		t.Errorf("Err() = %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_PlaybackWithoutEx(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "1")
	f.status.EXPECT().ShowMessage(gomock.Any())

	if f.fsm.Execute(macro.TriggerPlayback, "a", nil, 1) {
		t.Fatal("playback without ex succeeded")
	}
	if !errors.Is(f.fsm.Err(), macro.ErrNoEx) {
		t.Errorf("Err() = %v", f.fsm.Err())
	}
}

func TestFSM_PlaybackWhileRecording(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "1")

	f.fsm.Execute(macro.TriggerRecord, "b", f.ex, 1)

	f.ctl.EXPECT().BeginUndo()
	f.ctl.EXPECT().EndUndo()
	f.ex.EXPECT().Command("1").Return(true)

	if !f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, 1) {
		t.Fatalf("playback while recording failed: %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateRecording {
		t.Errorf("state = %v, want recording", f.fsm.State())
	}

	if f.fsm.Execute(macro.TriggerPlayback, "b", f.ex, 1) {
		t.Error("playback of the macro being recorded accepted")
	}
	if f.fsm.State() != macro.StateRecording {
		t.Errorf("state = %v, want recording", f.fsm.State())
	}
}

func TestFSM_NestedPlayback(t *testing.T) {
	f := newFixture(t)
	f.record(t, "b", "2")
	f.record(t, "a", "@b", "1")
	mode := macro.NewMode(f.fsm, nil)

	f.ctl.EXPECT().BeginUndo().Times(2)
	f.ctl.EXPECT().EndUndo().Times(2)
	f.ex.EXPECT().Command("@b").DoAndReturn(func(cmd string) bool {
		if f.fsm.State() != macro.StatePlayingback {
			t.Errorf("nested state = %v", f.fsm.State())
		}
		n, err := mode.Transition(cmd, f.ex, true, 1)
		return n > 0 && err == nil
	})
	f.ex.EXPECT().Command("2").Return(true)
	f.ex.EXPECT().Command("1").Return(true)

	if !f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, 1) {
		t.Fatalf("nested playback failed: %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_RecursivePlaybackStops(t *testing.T) {
	f := newFixture(t)
	f.record(t, "a", "@b")
	f.record(t, "b", "@a")
	mode := macro.NewMode(f.fsm, nil)

	f.ctl.EXPECT().BeginUndo().Times(2)
	f.ctl.EXPECT().EndUndo().Times(2)
	f.status.EXPECT().ShowMessage(gomock.Any()).AnyTimes()
	f.ex.EXPECT().Command(gomock.Any()).DoAndReturn(func(cmd string) bool {
		n, err := mode.Transition(cmd, f.ex, true, 1)
		return n > 0 && err == nil
	}).Times(2)

	if f.fsm.Execute(macro.TriggerPlayback, "a", f.ex, 1) {
		t.Fatal("cyclic playback succeeded")
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_RejectedTransitions(t *testing.T) {
	f := newFixture(t)

	if f.fsm.Execute(macro.TriggerDone, "", f.ex, 1) {
		t.Error("done accepted while idle")
	}

	f.fsm.Execute(macro.TriggerRecord, "a", f.ex, 1)
	if f.fsm.Execute(macro.TriggerExpandVariable, "x", f.ex, 1) {
		t.Error("variable expansion accepted while recording")
	}
	if f.fsm.State() != macro.StateRecording {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_ExpandVariable(t *testing.T) {
	f := newFixture(t)
	f.variable("author", variable.KindFixed, "Jane")

	f.ctl.EXPECT().AddText("Jane")

	if !f.fsm.Execute(macro.TriggerExpandVariable, "author", f.ex, 1) {
		t.Fatalf("expand failed: %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateIdle || f.fsm.Current() != "author" {
		t.Errorf("state %v current %q", f.fsm.State(), f.fsm.Current())
	}
}

func TestFSM_ExpandVariableInsertFails(t *testing.T) {
	f := newFixture(t)
	f.variable("author", variable.KindFixed, "Jane")
	insertErr := errors.New("disk full")

	f.ctl.EXPECT().AddText("Jane").Return(insertErr)
	f.status.EXPECT().ShowMessage(gomock.Any())

	if f.fsm.Execute(macro.TriggerExpandVariable, "author", f.ex, 1) {
		t.Fatal("expand succeeded after failed insert")
	}
	if !errors.Is(f.fsm.Err(), insertErr) {
		t.Errorf("Err = %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateIdle || f.store.Last() != "" {
		t.Errorf("state %v last %q", f.fsm.State(), f.store.Last())
	}
}

func TestFSM_ExpandVariableSetsLast(t *testing.T) {
	f := newFixture(t)
	f.variable("author", variable.KindFixed, "Jane")

	f.ctl.EXPECT().AddText("Jane")

	if !f.fsm.Execute(macro.TriggerExpandVariable, "author", f.ex, 1) {
		t.Fatalf("expand failed: %v", f.fsm.Err())
	}
	if f.store.Last() != "author" {
		t.Errorf("last = %q", f.store.Last())
	}
}

func TestFSM_ExpandVariablePrompts(t *testing.T) {
	f := newFixture(t)
	prompter := mock_macro.NewMockPrompter(f.ctrl)
	fsm := macro.NewFSM(macro.Options{Store: f.store, Status: f.status, Prompter: prompter})

	prompter.EXPECT().Input("who", "").Return("me", true)
	f.ctl.EXPECT().AddText("me")

	if !fsm.Execute(macro.TriggerExpandVariable, "who", f.ex, 1) {
		t.Fatalf("expand failed: %v", fsm.Err())
	}
	v, ok := f.store.FindVariable("who")
	if !ok || v.Value() != "me" || !f.store.IsModified() {
		t.Errorf("variable = %v, modified %v", v, f.store.IsModified())
	}
}

func TestFSM_ExpandTemplate(t *testing.T) {
	f := newFixture(t)
	f.template(t, "header.txt", "// @title@ by @author@ @@ @author@\n")
	f.variable("title", variable.KindFixed, "wex")
	f.variable("author", variable.KindFixed, "Jane")
	v := f.variable("header", variable.KindTemplate, "header.txt")

	var out string
	if !f.fsm.Expand(f.ex, v, &out) {
		t.Fatalf("expand failed: %v", f.fsm.Err())
	}
	if out != "// wex by Jane @ Jane\n" {
		t.Errorf("expanded = %q", out)
	}
	if f.fsm.State() != macro.StateIdle || f.fsm.Current() != "header" {
		t.Errorf("state %v current %q", f.fsm.State(), f.fsm.Current())
	}
	if f.store.Last() != "header" {
		t.Errorf("last = %q", f.store.Last())
	}
}

func TestFSM_ExecuteTemplateWaitsForDone(t *testing.T) {
	f := newFixture(t)
	f.template(t, "sig.txt", "-- @author@\n")
	f.variable("author", variable.KindFixed, "Jane")
	f.variable("sig", variable.KindTemplate, "sig.txt")

	f.ctl.EXPECT().AddText("-- Jane\n")

	if !f.fsm.Execute(macro.TriggerExpandTemplate, "sig", f.ex, 1) {
		t.Fatalf("expand failed: %v", f.fsm.Err())
	}
	if f.fsm.State() != macro.StateExpandingTemplate {
		t.Fatalf("state = %v", f.fsm.State())
	}
	if f.fsm.Execute(macro.TriggerRecord, "a", f.ex, 1) {
		t.Error("record accepted during template expansion")
	}
	if !f.fsm.Execute(macro.TriggerDone, "", f.ex, 1) || f.fsm.State() != macro.StateIdle {
		t.Errorf("Done left state %v", f.fsm.State())
	}
}

func TestFSM_ExpandNestedTemplate(t *testing.T) {
	f := newFixture(t)
	f.template(t, "outer.txt", "[@inner@]")
	f.template(t, "inner.txt", "<@name@>")
	f.variable("name", variable.KindFixed, "x")
	f.variable("inner", variable.KindTemplate, "inner.txt")
	outer := f.variable("outer", variable.KindTemplate, "outer.txt")

	var out string
	if !f.fsm.Expand(f.ex, outer, &out) {
		t.Fatalf("expand failed: %v", f.fsm.Err())
	}
	if out != "[<x>]" {
		t.Errorf("expanded = %q", out)
	}
}

func TestFSM_ExpandTemplateErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		vars  map[string]string
		want  error
	}{
		{
			name:  "self reference",
			files: map[string]string{"a.txt": "x @a@ y"},
			vars:  map[string]string{"a": "a.txt"},
			want:  macro.ErrRecursive,
		},
		{
			name:  "indirect cycle",
			files: map[string]string{"a.txt": "@b@", "b.txt": "@a@"},
			vars:  map[string]string{"a": "a.txt", "b": "b.txt"},
			want:  macro.ErrRecursive,
		},
		{
			name:  "unterminated",
			files: map[string]string{"a.txt": "hello @name"},
			vars:  map[string]string{"a": "a.txt"},
			want:  macro.ErrUnterminated,
		},
		{
			name: "missing file",
			vars: map[string]string{"a": "missing.txt"},
			want: macro.ErrTemplateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.status.EXPECT().ShowMessage(gomock.Any())
			for name, content := range tt.files {
				f.template(t, name, content)
			}
			for name, file := range tt.vars {
				f.variable(name, variable.KindTemplate, file)
			}
			a, _ := f.store.FindVariable("a")

			out := "unchanged"
			if f.fsm.Expand(f.ex, a, &out) {
				t.Fatal("expansion succeeded")
			}
			if !errors.Is(f.fsm.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", f.fsm.Err(), tt.want)
			}
			if out != "unchanged" {
				t.Errorf("partial output %q", out)
			}
			if f.fsm.State() != macro.StateIdle {
				t.Errorf("state = %v", f.fsm.State())
			}
		})
	}
}

func TestFSM_ExpandNotTemplate(t *testing.T) {
	f := newFixture(t)
	v := f.variable("plain", variable.KindFixed, "text")

	var out string
	if f.fsm.Expand(f.ex, v, &out) {
		t.Error("non-template expanded")
	}
	if f.fsm.State() != macro.StateIdle {
		t.Errorf("state = %v", f.fsm.State())
	}
}

func TestFSM_RepeatedReferenceAllowed(t *testing.T) {
	f := newFixture(t)
	f.template(t, "t.txt", "@x@@x@")
	f.variable("x", variable.KindFixed, "1")
	v := f.variable("t", variable.KindTemplate, "t.txt")

	var out string
	if !f.fsm.Expand(f.ex, v, &out) || out != "11" {
		t.Errorf("expanded = %q, %v", out, f.fsm.Err())
	}
}
