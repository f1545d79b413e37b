package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dshills/wex/internal/config"
	"github.com/dshills/wex/internal/ex"
	"github.com/dshills/wex/internal/macro"
	"github.com/dshills/wex/internal/watcher"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ConfigDir = t.TempDir()
	cfg.WatchMacros = false
	cfg.Log.Level = "error"
	return cfg
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Clipboard == nil {
		opts.Clipboard = &macro.MemoryClipboard{}
	}
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSession_MacrosOutliveSession(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, t.TempDir(), "text.txt", "one\ntwo\nthree\n")

	s := newSession(t, Options{Config: cfg, File: file})
	if err := s.Run([]string{"qa", "1", "dd", "q"}); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}
	if _, err := os.Stat(cfg.MacrosPath()); err != nil {
		t.Fatalf("macros not saved: %v", err)
	}

	s2 := newSession(t, Options{Config: cfg, File: file})
	if got := s2.Store().Get("a"); !reflect.DeepEqual(got, []string{"1", "dd"}) {
		t.Fatalf("loaded %q", got)
	}
	if err := s2.Exec("@a"); err != nil {
		t.Fatalf("Exec(@a) = %v", err)
	}
	if got := s2.Buffer().Lines(); !reflect.DeepEqual(got, []string{"two", "three"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestSession_Save(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, t.TempDir(), "text.txt", "a\nb\n")

	s := newSession(t, Options{Config: cfg, File: file})
	if err := s.Save(); err != nil {
		t.Fatalf("Save unmodified = %v", err)
	}
	if err := s.Run([]string{"%s/a/A/"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(file)
	if string(data) != "A\nb\n" {
		t.Errorf("file = %q", data)
	}
}

func TestSession_Stream(t *testing.T) {
	cfg := testConfig(t)
	file := writeFile(t, t.TempDir(), "big.txt", "x1\nx2\nx3\n")

	s := newSession(t, Options{Config: cfg, File: file, Stream: true})
	if s.Stream() == nil || s.Buffer() != nil {
		t.Fatal("not in stream mode")
	}
	if err := s.Run([]string{"2", "dd", "%s/x/y/"}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(file)
	if string(data) != "x1\nx2\nx3\n" {
		t.Errorf("original changed before save: %q", data)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(file)
	if string(data) != "y1\ny3\n" {
		t.Errorf("saved %q", data)
	}
}

func TestSession_StreamNeedsFile(t *testing.T) {
	_, err := New(Options{Config: testConfig(t), Stream: true, LogOutput: &bytes.Buffer{}})
	if !errors.Is(err, ErrNoFile) || !errors.Is(err, ErrInitialization) {
		t.Errorf("New = %v", err)
	}
}

func TestSession_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Status.Width = 0
	_, err := New(Options{Config: cfg, LogOutput: &bytes.Buffer{}})
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("New = %v", err)
	}
}

func TestSession_InvalidMacrosFile(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.ConfigDir, cfg.MacrosFile, "<macros>")
	_, err := New(Options{Config: cfg, LogOutput: &bytes.Buffer{}})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "load" {
		t.Errorf("New = %v", err)
	}
}

func TestSession_RunCollectsErrors(t *testing.T) {
	s := newSession(t, Options{Config: testConfig(t)})

	err := s.Run([]string{"0a first", "bogus", "/missing", "1a second"})
	var list *ErrorList
	if !errors.As(err, &list) || list.Len() != 2 {
		t.Fatalf("Run = %v", err)
	}
	if !errors.Is(err, ex.ErrUnknownCommand) || !errors.Is(err, ex.ErrNoMatch) {
		t.Errorf("Run = %v", list.Errors())
	}
	if got := s.Buffer().Lines(); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestSession_Closed(t *testing.T) {
	s := newSession(t, Options{Config: testConfig(t)})
	s.Close()
	if err := s.Exec("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Exec after Close = %v", err)
	}
	if err := s.Run([]string{"1"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Run after Close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestSession_StatusPanes(t *testing.T) {
	s := newSession(t, Options{Config: testConfig(t)})
	if err := s.Exec("qm"); err != nil {
		t.Fatal(err)
	}
	if got := s.Status().Pane(macro.PaneMode); got != "recording" {
		t.Errorf("mode pane = %q", got)
	}
	if got := s.Status().Pane(macro.PaneMacro); got != "m" {
		t.Errorf("macro pane = %q", got)
	}
}

const externalMacros = `<?xml version="1.0" encoding="UTF-8"?>
<macros>
  <macro name="z"><command>dd</command></macro>
</macros>
`

func TestSession_ReloadOnChange(t *testing.T) {
	cfg := testConfig(t)
	s := newSession(t, Options{Config: cfg})

	writeFile(t, cfg.ConfigDir, cfg.MacrosFile, externalMacros)
	s.macrosChanged(watcher.Event{Path: cfg.MacrosPath(), Op: watcher.OpWrite})

	if !s.Store().IsRecorded("z") {
		t.Error("macro z not reloaded")
	}
}

func TestSession_ReloadKeepsUnsavedChanges(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "warn"
	var log bytes.Buffer
	s := newSession(t, Options{Config: cfg, LogOutput: &log})
	if err := s.Run([]string{"qa", "0a x", "q"}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, cfg.ConfigDir, cfg.MacrosFile, externalMacros)
	s.macrosChanged(watcher.Event{Path: cfg.MacrosPath(), Op: watcher.OpWrite})

	if s.Store().IsRecorded("z") || !s.Store().IsRecorded("a") {
		t.Errorf("store replaced: %q", s.Store().MacroNames())
	}
	if !strings.Contains(log.String(), "keeping unsaved macros") {
		t.Errorf("log = %q", log.String())
	}
}

func TestSession_WatchesMacrosFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchMacros = true
	s := newSession(t, Options{Config: cfg})

	writeFile(t, cfg.ConfigDir, cfg.MacrosFile, externalMacros)

	deadline := time.Now().Add(5 * time.Second)
	for !s.Store().IsRecorded("z") {
		if time.Now().After(deadline) {
			t.Fatal("macros file change not picked up")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
