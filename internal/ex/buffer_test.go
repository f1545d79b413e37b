package ex

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dshills/wex/internal/address"
	"github.com/dshills/wex/internal/stream"
)

func TestOpenBuffer(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenBuffer(filepath.Join(dir, "missing.txt"))
	if err != nil {
		t.Fatalf("OpenBuffer(missing) = %v", err)
	}
	if b.LineCount() != 0 || b.CurrentLine() != 0 {
		t.Errorf("empty buffer: %d lines, line %d", b.LineCount(), b.CurrentLine())
	}

	path := filepath.Join(dir, "crlf.txt")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err = OpenBuffer(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("lines = %q", got)
	}
	if b.CurrentLine() != 1 {
		t.Errorf("current line = %d", b.CurrentLine())
	}
}

func TestBuffer_UndoGroups(t *testing.T) {
	b := NewBuffer("", "1\n2\n3\n")

	b.BeginUndo()
	b.BeginUndo()
	b.Delete(address.Line(1))
	b.EndUndo()
	b.Delete(address.Line(1))
	if b.Undo() {
		t.Fatal("undo inside an open group")
	}
	b.EndUndo()

	if !b.Undo() {
		t.Fatal("nothing to undo")
	}
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("lines = %q", got)
	}
	if b.Undo() {
		t.Error("second undo succeeded")
	}
}

func TestBuffer_EmptyGroupIsNotRecorded(t *testing.T) {
	b := NewBuffer("", "1\n")
	b.BeginUndo()
	b.EndUndo()
	b.EndUndo()
	if b.Undo() {
		t.Error("undo of an empty group")
	}
}

func TestBuffer_Markers(t *testing.T) {
	b := NewBuffer("", "a\nb\nc\nd\n")
	if b.Marker('x') != -1 {
		t.Error("unset marker")
	}
	if b.SetMarker('x', 9) {
		t.Error("marker past the end")
	}
	b.SetMarker('a', 2)
	b.SetMarker('d', 4)

	b.Delete(address.Line(2))
	if b.Marker('a') != -1 {
		t.Errorf("deleted marker at %d", b.Marker('a'))
	}
	if b.Marker('d') != 3 {
		t.Errorf("marker d = %d", b.Marker('d'))
	}

	b.Insert(0, "x\ny", true)
	if b.Marker('d') != 5 {
		t.Errorf("marker d after insert = %d", b.Marker('d'))
	}
}

func TestBuffer_AddText(t *testing.T) {
	b := NewBuffer("", "")
	b.AddText("one")
	b.AddText(" two\nthree")
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"one two", "three"}) {
		t.Errorf("lines = %q", got)
	}
	if b.CurrentLine() != 2 || !b.IsModified() {
		t.Errorf("line %d, modified %v", b.CurrentLine(), b.IsModified())
	}
}

func TestBuffer_FindWraps(t *testing.T) {
	b := NewBuffer("", "foo\nbar\nfoo\n")
	b.Goto(3)

	found, err := b.Find("foo", true)
	if err != nil || !found || b.CurrentLine() != 1 {
		t.Errorf("forward: found %v, err %v, line %d", found, err, b.CurrentLine())
	}
	found, _ = b.Find("foo", false)
	if !found || b.CurrentLine() != 3 {
		t.Errorf("backward: found %v, line %d", found, b.CurrentLine())
	}
}

func TestBuffer_LiteralFind(t *testing.T) {
	b := NewBuffer("", "a.c\nabc\n", WithFindSettings(stream.FindSettings{MatchCase: false}))
	b.Goto(2)

	found, _ := b.Find("A.C", true)
	if !found || b.CurrentLine() != 1 {
		t.Errorf("found %v, line %d", found, b.CurrentLine())
	}
	n, err := b.Substitute(address.Range{Begin: 1, End: 2}, ".", "-", true)
	if err != nil || n != 1 {
		t.Errorf("Substitute = %d, %v", n, err)
	}
}

func TestBuffer_OutOfRange(t *testing.T) {
	b := NewBuffer("", "a\n")
	if _, err := b.Delete(address.Range{Begin: 2, End: 3}); !errors.Is(err, address.ErrOutOfRange) {
		t.Errorf("Delete = %v", err)
	}
	if _, err := b.Insert(5, "x", true); !errors.Is(err, address.ErrOutOfRange) {
		t.Errorf("Insert = %v", err)
	}
	if b.Goto(0) {
		t.Error("Goto(0) succeeded")
	}
}

func TestBuffer_SaveWithoutPath(t *testing.T) {
	if err := NewBuffer("", "a\n").Save(); !errors.Is(err, ErrNoFile) {
		t.Errorf("Save = %v", err)
	}
}
