package document

import "github.com/okra-editor/okra/internal/buffer"

// Snapshot is an immutable capture of buffer content and cursor, the
// unit of undo and redo. The line slice is copied but the strings
// inside are shared with neighbouring snapshots, so a commit is cheap
// despite being a logical full copy.
type Snapshot struct {
	lines  []string
	cursor buffer.Loc
}

// UndoMgmt is the undo/redo state machine. The undo stack is seeded
// with the snapshot taken at document creation and that floor entry is
// never popped. onDisk is a depth marker into the undo stack, not a
// content hash: save-state equality is defined purely by stack depth.
type UndoMgmt struct {
	dirty  bool
	undo   []Snapshot
	redo   []Snapshot
	onDisk int
}

func (u *UndoMgmt) seed(s Snapshot) {
	u.undo = append(u.undo, s)
}

// SetDirty registers that a low-level mutation happened. Any redo
// history becomes unreachable: there is no branching redo.
func (u *UndoMgmt) SetDirty() {
	u.redo = u.redo[:0]
	u.dirty = true
}

// Dirty reports whether the buffer mutated since the last commit.
func (u *UndoMgmt) Dirty() bool {
	return u.dirty
}

// Commit seals pending dirty edits into one undo-addressable snapshot.
// Calling it with nothing dirty is a no-op, which is what collapses a
// burst of low-level events into a single undo unit.
func (u *UndoMgmt) Commit(current Snapshot) {
	if u.dirty {
		u.dirty = false
		u.undo = append(u.undo, current)
	}
}

// Undo returns the snapshot to restore, committing any pending dirty
// state first so in-progress edits are never silently lost. The floor
// entry is never popped: with fewer than two entries there is nothing
// to undo.
func (u *UndoMgmt) Undo(current Snapshot) (Snapshot, bool) {
	u.Commit(current)
	if len(u.undo) < 2 {
		return Snapshot{}, false
	}
	top := u.undo[len(u.undo)-1]
	u.undo = u.undo[:len(u.undo)-1]
	u.redo = append(u.redo, top)
	return u.undo[len(u.undo)-1], true
}

// Redo returns the snapshot to restore, or nothing if no edit has
// been undone.
func (u *UndoMgmt) Redo() (Snapshot, bool) {
	if len(u.redo) == 0 {
		return Snapshot{}, false
	}
	top := u.redo[len(u.redo)-1]
	u.redo = u.redo[:len(u.redo)-1]
	u.undo = append(u.undo, top)
	return top, true
}

// refreshFloor replaces the floor entry's content with lines. The
// floor of a windowed file holds only the initially resident window
// and has to track residency growth until the file is complete.
func (u *UndoMgmt) refreshFloor(lines []string) {
	if len(u.undo) > 0 {
		u.undo[0].lines = lines
	}
}

// Saved marks the current undo depth as the state on disk.
func (u *UndoMgmt) Saved() {
	u.onDisk = len(u.undo)
}

// AtFile reports whether the document state matches what is on disk.
func (u *UndoMgmt) AtFile() bool {
	return len(u.undo) == u.onDisk
}

// markUnsaved makes AtFile false at every depth until the next save,
// used for documents created for a file that does not exist yet.
func (u *UndoMgmt) markUnsaved() {
	u.onDisk = -1
}

// TakeSnapshot captures the current buffer content and cursor.
func (d *Document) TakeSnapshot() Snapshot {
	return Snapshot{
		lines:  d.buf.Lines(),
		cursor: d.cursor,
	}
}

// ApplySnapshot restores a previously captured state: text, cursor,
// and the sticky column derived from the cursor.
func (d *Document) ApplySnapshot(s Snapshot) {
	d.buf.SetLines(s.lines)
	d.cursor = d.clamp(s.cursor)
	d.charPtr = d.cursor.X
}

// Commit seals pending edits into one undo unit. When to call it is
// caller policy: after whitespace, line breaks, destructive edits, or
// inactivity.
func (d *Document) Commit() {
	d.undo.Commit(d.TakeSnapshot())
}

// Undo restores the previous committed snapshot. It reports false
// when only the floor entry remains.
func (d *Document) Undo() bool {
	s, ok := d.undo.Undo(d.TakeSnapshot())
	if !ok {
		return false
	}
	d.ApplySnapshot(s)
	return true
}

// Redo restores the next snapshot, if any edit has been undone.
func (d *Document) Redo() bool {
	s, ok := d.undo.Redo()
	if !ok {
		return false
	}
	d.ApplySnapshot(s)
	return true
}

// AtFile reports whether the committed state matches the disk.
func (d *Document) AtFile() bool {
	return d.undo.AtFile()
}

// Modified reports whether there is anything unsaved: either pending
// uncommitted edits or committed depth away from the on-disk marker.
func (d *Document) Modified() bool {
	return d.undo.Dirty() || !d.undo.AtFile()
}

// MarkUnsaved flags a document whose path has never been written.
func (d *Document) MarkUnsaved() {
	d.undo.markUnsaved()
}
