// Package document ties the text buffer and its undo state together
// behind a single mutation entry point. Every edit, from any caller,
// goes through Exe so the undo history can never drift from the text.
package document

import (
	"errors"
	"unicode/utf8"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/event"
	"github.com/okra-editor/okra/internal/logger"
)

var (
	ErrNoFileName   = errors.New("no file name")
	ErrReadOnlyFile = errors.New("file is read only")
	ErrStaleMatch   = errors.New("match is stale")
)

// Status reports where a movement operation ran into a document edge.
// Callers interpret it, typically by wrapping to the adjacent line.
type Status int

const (
	StatusNone Status = iota
	StatusStartOfFile
	StatusEndOfFile
	StatusStartOfLine
	StatusEndOfLine
)

// Document owns one open file: its buffer, cursor, undo state, and
// viewport size. The size only bounds how many lines Open keeps
// resident up front.
type Document struct {
	buf      *buffer.Buffer
	cursor   buffer.Loc
	charPtr  int // desired column, may exceed the current line length
	size     buffer.Size
	undo     UndoMgmt
	path     string
	readOnly bool

	// floorPartial marks that the floor snapshot was taken over a
	// partially loaded buffer and must follow residency growth.
	floorPartial bool
}

// New creates a blank document holding a single empty line.
func New(size buffer.Size) *Document {
	d := &Document{
		buf:  buffer.NewEmpty(),
		size: size,
	}
	d.undo.seed(d.TakeSnapshot())
	d.undo.Saved()
	return d
}

// Open reads path into a document, keeping only the viewport-visible
// line range resident. A not-found error can be detected with
// errors.Is(err, fs.ErrNotExist) so callers can offer "create new".
func Open(size buffer.Size, path string) (*Document, error) {
	buf, err := buffer.Open(path)
	if err != nil {
		return nil, err
	}
	if err := buf.LoadTo(size.H + 1); err != nil {
		buf.Close()
		return nil, err
	}
	d := &Document{
		buf:  buf,
		size: size,
		path: path,
	}
	d.undo.seed(d.TakeSnapshot())
	d.undo.Saved()
	d.floorPartial = !buf.Complete()
	return d, nil
}

func (d *Document) Path() string          { return d.path }
func (d *Document) SetPath(path string)   { d.path = path }
func (d *Document) ReadOnly() bool        { return d.readOnly }
func (d *Document) SetReadOnly(ro bool)   { d.readOnly = ro }
func (d *Document) Size() buffer.Size     { return d.size }
func (d *Document) SetSize(s buffer.Size) { d.size = s }
func (d *Document) Cursor() buffer.Loc    { return d.cursor }
func (d *Document) LineCount() int        { return d.buf.LineCount() }
func (d *Document) Complete() bool        { return d.buf.Complete() }

// Line returns the resident line at y.
func (d *Document) Line(y int) (string, bool) {
	return d.buf.Line(y)
}

// LoadTo guarantees lines [0,n) are resident. Residency grows
// monotonically and is never discarded.
func (d *Document) LoadTo(n int) error {
	err := d.buf.LoadTo(n)
	d.syncFloor()
	return err
}

// LoadAll materializes the whole backing file.
func (d *Document) LoadAll() error {
	err := d.buf.LoadAll()
	d.syncFloor()
	return err
}

// syncFloor re-seats the floor snapshot over the current residency.
// Only the floor can lag behind the file: every later snapshot is
// taken after Exe has materialized the whole buffer. Without this an
// undo back to the floor would truncate the document to the lines
// that were resident when it was opened.
func (d *Document) syncFloor() {
	if !d.floorPartial {
		return
	}
	d.undo.refreshFloor(d.buf.Lines())
	if d.buf.Complete() {
		d.floorPartial = false
	}
}

// OutOfRange fails when the coordinate does not address a character
// position inside the buffer.
func (d *Document) OutOfRange(x, y int) error {
	return d.buf.OutOfRange(x, y)
}

// Exe is the sole mutation entry point. It applies the event to the
// buffer, then moves the cursor to the event's outcome and marks the
// undo state dirty. An event is either fully applied and recorded or
// not applied at all.
func (d *Document) Exe(ev event.Event) error {
	if d.readOnly {
		return ErrReadOnlyFile
	}
	// Snapshot-based undo needs a stable line index space, so the
	// first mutation materializes any unread remainder of the file.
	if !d.buf.Complete() {
		if err := d.LoadAll(); err != nil {
			return err
		}
		logger.Debug("document fully loaded before first mutation", "path", d.path)
	}
	if err := d.apply(ev); err != nil {
		return err
	}
	d.undo.SetDirty()
	return nil
}

func (d *Document) apply(ev event.Event) error {
	switch ev.Kind {
	case event.Insert:
		if err := d.buf.Insert(ev.At, ev.Text); err != nil {
			return err
		}
		d.moveTo(buffer.Loc{X: ev.At.X + utf8.RuneCountInString(ev.Text), Y: ev.At.Y})
	case event.Delete:
		if err := d.buf.Delete(ev.At, ev.Text); err != nil {
			return err
		}
		d.moveTo(ev.At)
	case event.InsertLine:
		if err := d.buf.InsertLine(ev.At.Y, ev.Text); err != nil {
			return err
		}
		d.moveTo(buffer.Loc{X: 0, Y: ev.At.Y})
	case event.DeleteLine:
		if _, err := d.buf.DeleteLine(ev.At.Y); err != nil {
			return err
		}
		y := ev.At.Y
		if y >= d.buf.LineCount() {
			y = d.buf.LineCount() - 1
		}
		d.moveTo(buffer.Loc{X: 0, Y: y})
	case event.SplitDown:
		if err := d.buf.SplitDown(ev.At); err != nil {
			return err
		}
		d.moveTo(buffer.Loc{X: 0, Y: ev.At.Y + 1})
	case event.SpliceUp:
		at := d.spliceAnchor(ev.At)
		if err := d.buf.SpliceUp(at); err != nil {
			return err
		}
		d.moveTo(at)
	}
	return nil
}

// spliceAnchor normalizes a SpliceUp location to the join point: the
// end of the upper line. A loc at column 0 of line y refers to the
// break above that line.
func (d *Document) spliceAnchor(at buffer.Loc) buffer.Loc {
	if at.X == 0 && at.Y > 0 {
		if line, ok := d.buf.Line(at.Y - 1); ok {
			return buffer.Loc{X: utf8.RuneCountInString(line), Y: at.Y - 1}
		}
	}
	return at
}

// lineWidth is the rune length of line y, or zero when absent.
func (d *Document) lineWidth(y int) int {
	line, ok := d.buf.Line(y)
	if !ok {
		return 0
	}
	return utf8.RuneCountInString(line)
}

// moveTo places the cursor and reconciles the sticky column. Use for
// horizontal movement and edit outcomes, where the desired column is
// the actual one.
func (d *Document) moveTo(loc buffer.Loc) {
	d.cursor = d.clamp(loc)
	d.charPtr = d.cursor.X
}

// MoveTo moves the cursor to loc, clamped into the buffer.
func (d *Document) MoveTo(loc buffer.Loc) {
	d.moveTo(loc)
}

func (d *Document) clamp(loc buffer.Loc) buffer.Loc {
	if loc.Y < 0 {
		loc.Y = 0
	}
	if loc.Y >= d.buf.LineCount() {
		loc.Y = d.buf.LineCount() - 1
	}
	if loc.X < 0 {
		loc.X = 0
	}
	if w := d.lineWidth(loc.Y); loc.X > w {
		loc.X = w
	}
	return loc
}

// MoveUp moves one line up, remembering the desired column so moving
// through shorter lines keeps the original target.
func (d *Document) MoveUp() Status {
	if d.cursor.Y == 0 {
		return StatusStartOfFile
	}
	d.cursor.Y--
	d.cursor.X = min(d.charPtr, d.lineWidth(d.cursor.Y))
	return StatusNone
}

// MoveDown moves one line down, loading it if the file has more.
func (d *Document) MoveDown() Status {
	if err := d.LoadTo(d.cursor.Y + 2); err != nil {
		logger.Warn("load failed during move", "err", err)
	}
	if d.cursor.Y+1 >= d.buf.LineCount() {
		return StatusEndOfFile
	}
	d.cursor.Y++
	d.cursor.X = min(d.charPtr, d.lineWidth(d.cursor.Y))
	return StatusNone
}

// MoveLeft moves one character left. At the start of a line it
// reports StatusStartOfLine for the caller to wrap.
func (d *Document) MoveLeft() Status {
	if d.cursor.X == 0 {
		return StatusStartOfLine
	}
	d.cursor.X--
	d.charPtr = d.cursor.X
	return StatusNone
}

// MoveRight moves one character right. At the end of a line it
// reports StatusEndOfLine for the caller to wrap.
func (d *Document) MoveRight() Status {
	if d.cursor.X >= d.lineWidth(d.cursor.Y) {
		return StatusEndOfLine
	}
	d.cursor.X++
	d.charPtr = d.cursor.X
	return StatusNone
}

// MoveLineStart and MoveLineEnd jump within the current line.
func (d *Document) MoveLineStart() {
	d.moveTo(buffer.Loc{X: 0, Y: d.cursor.Y})
}

func (d *Document) MoveLineEnd() {
	d.moveTo(buffer.Loc{X: d.lineWidth(d.cursor.Y), Y: d.cursor.Y})
}

// MovePrevWord moves to the previous word boundary on the line.
func (d *Document) MovePrevWord() {
	line, _ := d.buf.Line(d.cursor.Y)
	runes := []rune(line)
	x := d.cursor.X
	for x > 0 && isSpace(runes[x-1]) {
		x--
	}
	for x > 0 && !isSpace(runes[x-1]) {
		x--
	}
	d.moveTo(buffer.Loc{X: x, Y: d.cursor.Y})
}

// MoveNextWord moves to the next word boundary on the line.
func (d *Document) MoveNextWord() {
	line, _ := d.buf.Line(d.cursor.Y)
	runes := []rune(line)
	x := d.cursor.X
	for x < len(runes) && !isSpace(runes[x]) {
		x++
	}
	for x < len(runes) && isSpace(runes[x]) {
		x++
	}
	d.moveTo(buffer.Loc{X: x, Y: d.cursor.Y})
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
