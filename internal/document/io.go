package document

import (
	"os"

	"github.com/okra-editor/okra/internal/logger"
)

// Save writes the buffer back to the document's path and advances the
// on-disk marker. Storage failures propagate unchanged; the document
// never retries disk operations itself.
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoFileName
	}
	return d.SaveAs(d.path)
}

// SaveAs writes the buffer to path, binds the document to it, and
// advances the on-disk marker.
func (d *Document) SaveAs(path string) error {
	if d.readOnly {
		return ErrReadOnlyFile
	}
	if err := d.LoadAll(); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(d.buf.String()), 0o644); err != nil {
		return err
	}
	d.path = path
	d.undo.Saved()
	logger.Info("saved", "path", path, "lines", d.buf.LineCount())
	return nil
}
