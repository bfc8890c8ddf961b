package document

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/event"
)

func typeText(t *testing.T, d *Document, text string) {
	t.Helper()
	for _, r := range text {
		require.NoError(t, d.Exe(event.Event{Kind: event.Insert, At: d.Cursor(), Text: string(r)}))
	}
}

func TestUndoOnFreshDocument(t *testing.T) {
	d := newTestDocument("")
	assert.False(t, d.Undo())
	assert.False(t, d.Redo())
}

func TestCommitCollapsesBurstIntoOneUndoUnit(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "hello")
	d.Commit()

	require.True(t, d.Undo())
	assert.Equal(t, []string{""}, lines(d))
	assert.False(t, d.Undo())
}

func TestCommitWithoutDirtyIsNoOp(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "a")
	d.Commit()
	d.Commit()

	require.True(t, d.Undo())
	assert.Equal(t, []string{""}, lines(d))
	assert.False(t, d.Undo(), "double commit must not create a second entry")
}

func TestUndoSealsPendingEdits(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "one")
	d.Commit()
	typeText(t, d, " two")

	// No commit for " two": undo seals it first, so the restore target
	// is the state after "one".
	require.True(t, d.Undo())
	assert.Equal(t, []string{"one"}, lines(d))

	require.True(t, d.Undo())
	assert.Equal(t, []string{""}, lines(d))
}

func TestUndoRestoresCursor(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "hello")
	d.Commit()
	typeText(t, d, " world")
	d.Commit()

	require.True(t, d.Undo())
	assert.Equal(t, []string{"hello"}, lines(d))
	assert.Equal(t, buffer.At(5, 0), d.Cursor())
}

func TestRedo(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "hello")
	d.Commit()

	require.True(t, d.Undo())
	require.True(t, d.Redo())
	assert.Equal(t, []string{"hello"}, lines(d))
	assert.False(t, d.Redo())
}

func TestNewEditClearsRedo(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "hello")
	d.Commit()
	require.True(t, d.Undo())

	typeText(t, d, "x")
	assert.False(t, d.Redo(), "mutation after undo must clear redo history")
}

func TestUndoRedoCycleIsStable(t *testing.T) {
	d := newTestDocument("")
	typeText(t, d, "a")
	d.Commit()
	typeText(t, d, "b")
	d.Commit()
	typeText(t, d, "c")
	d.Commit()

	require.True(t, d.Undo())
	require.True(t, d.Undo())
	assert.Equal(t, []string{"a"}, lines(d))

	require.True(t, d.Redo())
	require.True(t, d.Redo())
	assert.Equal(t, []string{"abc"}, lines(d))
}

func TestAtFileTracksUndoDepth(t *testing.T) {
	d := newTestDocument("hello")
	assert.True(t, d.AtFile())
	assert.False(t, d.Modified())

	typeText(t, d, "x")
	assert.True(t, d.Modified())

	d.Commit()
	assert.False(t, d.AtFile())
	assert.True(t, d.Modified())

	// Undoing back to the saved depth makes the document clean again.
	require.True(t, d.Undo())
	assert.True(t, d.AtFile())
	assert.False(t, d.Modified())

	// Redoing away from it makes it modified again.
	require.True(t, d.Redo())
	assert.False(t, d.AtFile())
}

func TestMarkUnsaved(t *testing.T) {
	d := newTestDocument("")
	d.MarkUnsaved()
	assert.False(t, d.AtFile())
	assert.True(t, d.Modified())
}

func TestSnapshotSharesLineStorage(t *testing.T) {
	d := newTestDocument("alpha", "beta")
	s := d.TakeSnapshot()

	typeText(t, d, "x")
	assert.Equal(t, "alpha", s.lines[0], "snapshot must be isolated from later edits")

	d.ApplySnapshot(s)
	assert.Equal(t, []string{"alpha", "beta"}, lines(d))
}

func TestUndoAfterWindowedOpenKeepsWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := ""
	for i := 0; i < 200; i++ {
		content += fmt.Sprintf("line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := Open(buffer.Size{W: 80, H: 5}, path)
	require.NoError(t, err)
	require.False(t, d.Complete())

	require.NoError(t, d.Exe(event.Event{Kind: event.Insert, At: buffer.At(0, 0), Text: "!"}))
	d.Commit()

	// The floor snapshot was taken while only the visible window was
	// resident; undoing to it must yield the full file, not the window.
	require.True(t, d.Undo())
	assert.Equal(t, 200, d.LineCount())
	assert.True(t, d.AtFile())

	require.NoError(t, d.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFloorFollowsLoadsBeforeFirstEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := ""
	for i := 0; i < 50; i++ {
		content += fmt.Sprintf("row %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := Open(buffer.Size{W: 80, H: 5}, path)
	require.NoError(t, err)

	// Searching materializes the file before anything is dirty.
	_, found := d.NextMatch("row 49", 1)
	require.True(t, found)
	require.True(t, d.Complete())

	require.NoError(t, d.Exe(event.Event{Kind: event.Insert, At: buffer.At(0, 0), Text: "x"}))
	d.Commit()
	require.True(t, d.Undo())
	assert.Equal(t, 50, d.LineCount())
	got, _ := d.Line(49)
	assert.Equal(t, "row 49", got)
}
