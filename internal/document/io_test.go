package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/event"
)

func TestSaveWithoutPath(t *testing.T) {
	d := New(buffer.Size{W: 80, H: 24})
	assert.ErrorIs(t, d.Save(), ErrNoFileName)
}

func TestSaveAsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nworld\n"), 0o644))

	d, err := Open(buffer.Size{W: 80, H: 24}, path)
	require.NoError(t, err)

	require.NoError(t, d.Exe(event.Event{Kind: event.Insert, At: buffer.At(5, 0), Text: "!"}))
	d.Commit()
	assert.True(t, d.Modified())

	require.NoError(t, d.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello!\nworld\n", string(data))
	assert.True(t, d.AtFile())
	assert.False(t, d.Modified())
}

func TestSaveAsRebindsPath(t *testing.T) {
	dir := t.TempDir()
	d := New(buffer.Size{W: 80, H: 24})
	require.NoError(t, d.Exe(event.Event{Kind: event.Insert, At: buffer.At(0, 0), Text: "content"}))
	d.Commit()

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, d.SaveAs(path))
	assert.Equal(t, path, d.Path())
	assert.False(t, d.Modified())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestSaveReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	d, err := Open(buffer.Size{W: 80, H: 24}, path)
	require.NoError(t, err)
	d.SetReadOnly(true)

	assert.ErrorIs(t, d.Save(), ErrReadOnlyFile)
}

func TestSaveMaterializesUnloadedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := ""
	for i := 0; i < 200; i++ {
		content += "line\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := Open(buffer.Size{W: 80, H: 5}, path)
	require.NoError(t, err)
	assert.False(t, d.Complete())

	require.NoError(t, d.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(buffer.Size{W: 80, H: 24}, filepath.Join(t.TempDir(), "absent"))
	assert.True(t, os.IsNotExist(err))
}
