package editor

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/okra-editor/okra/internal/buffer"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func typeKeys(e *Editor, s string) {
	for _, r := range s {
		e.HandleKey(runeKey(r))
	}
}

func TestRuneKeyInserts(t *testing.T) {
	e := newTestEditor(t)
	typeKeys(e, "hi")
	assertContent(t, e, "hi")
}

func TestEnterAndBackspaceKeys(t *testing.T) {
	e := newTestEditor(t)
	typeKeys(e, "ab")
	e.HandleKey(key(tcell.KeyEnter))
	typeKeys(e, "cd")
	assertContent(t, e, "ab", "cd")

	e.HandleKey(key(tcell.KeyBackspace2))
	assertContent(t, e, "ab", "c")
}

func TestQuitNeedsConfirmationWhenModified(t *testing.T) {
	e := newTestEditor(t, "dirty")

	if e.HandleKey(key(tcell.KeyCtrlQ)) {
		t.Fatal("first ctrl+q with unsaved changes must not quit")
	}
	if e.Feedback() == "" {
		t.Fatal("expected a warning on the feedback line")
	}
	if !e.HandleKey(key(tcell.KeyCtrlQ)) {
		t.Fatal("second ctrl+q must quit")
	}
}

func TestQuitArmingResetsOnOtherKey(t *testing.T) {
	e := newTestEditor(t, "dirty")

	e.HandleKey(key(tcell.KeyCtrlQ))
	typeKeys(e, "x")
	if e.HandleKey(key(tcell.KeyCtrlQ)) {
		t.Fatal("arming must reset after another key")
	}
}

func TestQuitCleanDocument(t *testing.T) {
	e := newTestEditor(t)
	if !e.HandleKey(key(tcell.KeyCtrlQ)) {
		t.Fatal("clean editor should quit on first ctrl+q")
	}
}

func TestCloseNeedsConfirmationWhenModified(t *testing.T) {
	e := newTestEditor(t, "first")
	e.Blank()
	typeKeys(e, "second")

	if e.HandleKey(key(tcell.KeyCtrlW)) {
		t.Fatal("first ctrl+w with unsaved changes must not close")
	}
	if e.Feedback() == "" {
		t.Fatal("expected a warning on the feedback line")
	}
	if e.HandleKey(key(tcell.KeyCtrlW)) {
		t.Fatal("editor still holds a document, must not quit")
	}
	if e.DocCount() != 1 {
		t.Fatalf("doc count = %d, want 1", e.DocCount())
	}
	assertContent(t, e, "first")
}

func TestCloseArmingResetsOnOtherKey(t *testing.T) {
	e := newTestEditor(t, "first")
	e.Blank()
	typeKeys(e, "second")

	e.HandleKey(key(tcell.KeyCtrlW))
	e.HandleKey(key(tcell.KeyRight))
	if e.HandleKey(key(tcell.KeyCtrlW)) {
		t.Fatal("arming must reset after an unrelated key")
	}
	if e.DocCount() != 2 {
		t.Fatalf("doc count = %d, want 2", e.DocCount())
	}
}

func TestCloseLastCleanDocumentQuits(t *testing.T) {
	e := newTestEditor(t)
	if !e.HandleKey(key(tcell.KeyCtrlW)) {
		t.Fatal("closing the only clean document must quit")
	}
}

func TestUndoRedoKeys(t *testing.T) {
	e := newTestEditor(t, "one two")

	e.HandleKey(key(tcell.KeyCtrlZ))
	assertContent(t, e, "one ")
	e.HandleKey(key(tcell.KeyCtrlY))
	assertContent(t, e, "one two")
}

func TestCtrlKDeletesLine(t *testing.T) {
	e := newTestEditor(t, "one", "two")
	e.doc().MoveTo(buffer.At(0, 0))

	e.HandleKey(key(tcell.KeyCtrlK))
	assertContent(t, e, "two")
}

func TestPromptCollectsInput(t *testing.T) {
	e := newTestEditor(t)
	var got string
	e.startPrompt("test: ", func(s string) { got = s })

	typeKeys(e, "abc")
	e.HandleKey(key(tcell.KeyBackspace2))
	typeKeys(e, "d")
	e.HandleKey(key(tcell.KeyEnter))

	if got != "abd" {
		t.Errorf("prompt input = %q, want %q", got, "abd")
	}
	if e.mode != ModeEdit {
		t.Errorf("mode = %v after accept, want edit", e.mode)
	}
}

func TestPromptCursorEditing(t *testing.T) {
	e := newTestEditor(t)
	var got string
	e.startPrompt("test: ", func(s string) { got = s })

	typeKeys(e, "ac")
	e.HandleKey(key(tcell.KeyLeft))
	typeKeys(e, "b")
	e.HandleKey(key(tcell.KeyEnter))

	if got != "abc" {
		t.Errorf("prompt input = %q, want %q", got, "abc")
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	e := newTestEditor(t)
	called := false
	e.startPrompt("test: ", func(string) { called = true })

	typeKeys(e, "abc")
	e.HandleKey(key(tcell.KeyEsc))

	if called {
		t.Error("escape must not invoke the accept callback")
	}
	if e.mode != ModeEdit {
		t.Errorf("mode = %v after escape, want edit", e.mode)
	}
}

func TestFindFlow(t *testing.T) {
	e := newTestEditor(t, "one fish", "two fish")
	e.doc().MoveTo(buffer.At(0, 0))

	e.HandleKey(key(tcell.KeyCtrlF))
	typeKeys(e, "fish")
	e.HandleKey(key(tcell.KeyEnter))

	if e.mode != ModeSearch {
		t.Fatalf("mode = %v, want search", e.mode)
	}
	if cur := e.doc().Cursor(); cur != buffer.At(4, 0) {
		t.Errorf("cursor = %v, want {4 0}", cur)
	}

	e.HandleKey(key(tcell.KeyRight))
	if cur := e.doc().Cursor(); cur != buffer.At(4, 1) {
		t.Errorf("cursor = %v, want {4 1}", cur)
	}
	e.HandleKey(key(tcell.KeyLeft))
	if cur := e.doc().Cursor(); cur != buffer.At(4, 0) {
		t.Errorf("cursor = %v, want {4 0}", cur)
	}

	e.HandleKey(key(tcell.KeyEsc))
	if e.mode != ModeEdit {
		t.Errorf("mode = %v after esc, want edit", e.mode)
	}
}

func TestReplaceFlow(t *testing.T) {
	e := newTestEditor(t, "a a a")
	e.doc().MoveTo(buffer.At(0, 0))

	e.HandleKey(key(tcell.KeyCtrlR))
	typeKeys(e, "a")
	e.HandleKey(key(tcell.KeyEnter))
	typeKeys(e, "b")
	e.HandleKey(key(tcell.KeyEnter))

	if e.mode != ModeReplace {
		t.Fatalf("mode = %v, want replace", e.mode)
	}

	// The prompt lands on the match after the cursor; replace it, then
	// all remaining ones.
	e.HandleKey(key(tcell.KeyEnter))
	assertContent(t, e, "a b a")

	e.HandleKey(key(tcell.KeyTab))
	assertContent(t, e, "b b b")
	if e.mode != ModeEdit {
		t.Errorf("mode = %v after replace-all, want edit", e.mode)
	}
	assertMirrorSynced(t, e)
}

func TestAltArrowsCycleDocuments(t *testing.T) {
	e := newTestEditor(t, "first")
	e.Blank()
	typeKeys(e, "second")

	e.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModAlt))
	assertContent(t, e, "first")
	e.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModAlt))
	assertContent(t, e, "second")
}

func TestCtrlArrowsMoveByWord(t *testing.T) {
	e := newTestEditor(t, "one two three")
	e.doc().MoveTo(buffer.At(0, 0))

	e.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModCtrl))
	if cur := e.doc().Cursor(); cur != buffer.At(4, 0) {
		t.Errorf("cursor = %v, want {4 0}", cur)
	}
	e.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModCtrl))
	if cur := e.doc().Cursor(); cur != buffer.At(0, 0) {
		t.Errorf("cursor = %v, want {0 0}", cur)
	}
}

func TestHomeEndKeys(t *testing.T) {
	e := newTestEditor(t, "hello")

	e.HandleKey(key(tcell.KeyHome))
	if cur := e.doc().Cursor(); cur != buffer.At(0, 0) {
		t.Errorf("cursor = %v, want {0 0}", cur)
	}
	e.HandleKey(key(tcell.KeyEnd))
	if cur := e.doc().Cursor(); cur != buffer.At(5, 0) {
		t.Errorf("cursor = %v, want {5 0}", cur)
	}
}
