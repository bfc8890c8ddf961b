// Package editor orchestrates open documents, their highlighters, and
// the terminal UI. Each document is paired with one highlighter; a
// single active index selects the pair every operation works on.
package editor

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/config"
	"github.com/okra-editor/okra/internal/document"
	"github.com/okra-editor/okra/internal/event"
	"github.com/okra-editor/okra/internal/highlight"
	"github.com/okra-editor/okra/internal/logger"
)

// Mode selects how key input is interpreted.
type Mode int

const (
	ModeEdit Mode = iota
	ModePrompt
	ModeSearch
	ModeReplace
)

// pane is one open document with its highlighter and scroll offset.
type pane struct {
	doc    *document.Document
	hl     highlight.Highlighter
	scroll int
}

type Editor struct {
	cfg        config.Config
	panes      []*pane
	ptr        int
	size       buffer.Size
	mode       Mode
	feedback   string
	lastActive time.Time
	quitArmed  bool
	closeArmed bool

	prompt promptState

	// Search / replace navigation state
	searchTarget  string
	replaceTarget string
	replaceInto   string

	theme styleSet
}

// New builds an editor with no documents open. Size is the full
// terminal size; two rows are reserved for status and feedback.
func New(cfg config.Config, size buffer.Size) *Editor {
	return &Editor{
		cfg:        cfg,
		size:       size,
		lastActive: time.Now(),
		theme:      newStyleSet(cfg.Theme),
	}
}

func (e *Editor) docSize() buffer.Size {
	h := e.size.H - 2
	if h < 0 {
		h = 0
	}
	return buffer.Size{W: e.size.W, H: h}
}

// Blank opens a new empty document and moves to it.
func (e *Editor) Blank() {
	doc := document.New(e.docSize())
	doc.SetReadOnly(e.cfg.Document.ReadOnly)
	hl := highlight.NewPlain()
	hl.Run(docLines(doc))
	e.panes = append(e.panes, &pane{doc: doc, hl: hl})
	e.ptr = len(e.panes) - 1
}

// Open reads a file into a new document and moves to it. The
// viewport-visible line range plus margin is loaded; the rest stays on
// disk until navigation or search needs it.
func (e *Editor) Open(path string) error {
	doc, err := document.Open(e.docSize(), path)
	if err != nil {
		return err
	}
	doc.SetReadOnly(e.cfg.Document.ReadOnly)
	hl := highlight.ForPath(path)
	hl.Run(docLines(doc))
	e.panes = append(e.panes, &pane{doc: doc, hl: hl})
	e.ptr = len(e.panes) - 1
	logger.Info("opened", "path", path, "lines", doc.LineCount())
	return nil
}

// OpenOrNew opens path, or creates an empty document bound to it when
// the file does not exist yet. Other I/O failures propagate.
func (e *Editor) OpenOrNew(path string) error {
	err := e.Open(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	e.Blank()
	doc := e.doc()
	doc.SetPath(path)
	doc.MarkUnsaved()
	p := e.pane()
	p.hl = highlight.ForPath(path)
	p.hl.Run(docLines(doc))
	logger.Info("new file", "path", path)
	return nil
}

func (e *Editor) pane() *pane {
	return e.panes[e.ptr]
}

func (e *Editor) doc() *document.Document {
	return e.panes[e.ptr].doc
}

func (e *Editor) hl() highlight.Highlighter {
	return e.panes[e.ptr].hl
}

// DocCount reports how many documents are open.
func (e *Editor) DocCount() int {
	return len(e.panes)
}

// NextDoc and PrevDoc cycle the active document.
func (e *Editor) NextDoc() {
	if len(e.panes) > 0 {
		e.ptr = (e.ptr + 1) % len(e.panes)
	}
}

func (e *Editor) PrevDoc() {
	if len(e.panes) > 0 {
		e.ptr = (e.ptr - 1 + len(e.panes)) % len(e.panes)
	}
}

// CloseCurrent closes the active document. It reports true when the
// last document was closed and the editor has nothing left to show.
func (e *Editor) CloseCurrent() bool {
	path := e.doc().Path()
	e.panes = append(e.panes[:e.ptr], e.panes[e.ptr+1:]...)
	if e.ptr >= len(e.panes) && e.ptr > 0 {
		e.ptr--
	}
	logger.Info("closed", "path", path)
	return len(e.panes) == 0
}

// Resize updates the terminal size and grows residency so the whole
// viewport stays backed by loaded lines.
func (e *Editor) Resize(w, h int) {
	e.size = buffer.Size{W: w, H: h}
	for _, p := range e.panes {
		p.doc.SetSize(e.docSize())
		if err := p.doc.LoadTo(p.scroll + e.docSize().H + 1); err != nil {
			logger.Warn("load on resize failed", "err", err)
		}
	}
}

// exe routes one event through the document and translates the outcome
// into the matching highlighter call, keyed by the affected line. The
// first mutation on a partially loaded file materializes it, so the
// mirror has to catch up on the freshly loaded tail first.
func (e *Editor) exe(ev event.Event) error {
	d := e.doc()
	if !d.Complete() {
		if err := d.LoadAll(); err != nil {
			return err
		}
		e.syncResidency()
	}
	if err := d.Exe(ev); err != nil {
		return err
	}
	e.syncHighlight(ev)
	return nil
}

// syncResidency appends lines the buffer loaded since the last call,
// keeping the highlighter's mirror as wide as the resident content.
func (e *Editor) syncResidency() {
	d, hl := e.doc(), e.hl()
	for y := hl.LineCount(); y < d.LineCount(); y++ {
		line, _ := d.Line(y)
		hl.Append(line)
	}
}

func (e *Editor) syncHighlight(ev event.Event) {
	d, hl := e.doc(), e.hl()
	switch ev.Kind {
	case event.Insert, event.Delete:
		if line, ok := d.Line(ev.At.Y); ok {
			hl.Edit(ev.At.Y, line)
		}
	case event.InsertLine:
		hl.InsertLine(ev.At.Y, ev.Text)
	case event.DeleteLine:
		hl.RemoveLine(ev.At.Y)
	case event.SplitDown:
		lower, _ := d.Line(ev.At.Y + 1)
		upper, _ := d.Line(ev.At.Y)
		hl.InsertLine(ev.At.Y+1, lower)
		hl.Edit(ev.At.Y, upper)
	case event.SpliceUp:
		y := ev.At.Y
		if ev.At.X == 0 && y > 0 {
			y--
		}
		hl.RemoveLine(y + 1)
		if line, ok := d.Line(y); ok {
			hl.Edit(y, line)
		}
	}
}

// resyncHighlight reconciles the highlighter after a snapshot restore.
// Matching line counts get per-line edits; a count change falls back
// to re-running the highlighter over the restored content.
func (e *Editor) resyncHighlight() {
	d, hl := e.doc(), e.hl()
	if d.LineCount() != hl.LineCount() {
		hl.Run(docLines(d))
		return
	}
	for y := 0; y < d.LineCount(); y++ {
		line, _ := d.Line(y)
		if mirrored, ok := hl.Line(y); !ok || mirrored != line {
			hl.Edit(y, line)
		}
	}
}

// Character inserts one character at the cursor. Whitespace seals the
// pending edits into an undo unit, so one undo removes the last word.
func (e *Editor) Character(ch rune) error {
	if ch == '\t' {
		return e.InsertTab()
	}
	d := e.doc()
	if err := e.exe(event.Event{Kind: event.Insert, At: d.Cursor(), Text: string(ch)}); err != nil {
		return err
	}
	if ch == ' ' {
		d.Commit()
	}
	return nil
}

// InsertTab inserts spaces up to the configured tab width.
func (e *Editor) InsertTab() error {
	d := e.doc()
	pad := strings.Repeat(" ", e.cfg.Document.TabWidth)
	if err := e.exe(event.Event{Kind: event.Insert, At: d.Cursor(), Text: pad}); err != nil {
		return err
	}
	d.Commit()
	return nil
}

// Enter splits the current line at the cursor.
func (e *Editor) Enter() error {
	d := e.doc()
	if err := e.exe(event.Event{Kind: event.SplitDown, At: d.Cursor()}); err != nil {
		return err
	}
	d.Commit()
	return nil
}

// Backspace deletes the character before the cursor, or splices the
// line onto the one above at the start of a line.
func (e *Editor) Backspace() error {
	d := e.doc()
	loc := d.Cursor()
	if loc.X == 0 {
		if loc.Y == 0 {
			return nil
		}
		above, _ := d.Line(loc.Y - 1)
		anchor := buffer.Loc{X: utf8.RuneCountInString(above), Y: loc.Y - 1}
		if err := e.exe(event.Event{Kind: event.SpliceUp, At: anchor}); err != nil {
			return err
		}
		d.Commit()
		return nil
	}
	line, _ := d.Line(loc.Y)
	runes := []rune(line)
	ch := string(runes[loc.X-1])
	return e.exe(event.Event{Kind: event.Delete, At: buffer.Loc{X: loc.X - 1, Y: loc.Y}, Text: ch})
}

// DeleteForward removes the character under the cursor, splicing the
// next line up at the end of a line.
func (e *Editor) DeleteForward() error {
	d := e.doc()
	loc := d.Cursor()
	line, _ := d.Line(loc.Y)
	runes := []rune(line)
	if loc.X >= len(runes) {
		if loc.Y+1 >= d.LineCount() {
			return nil
		}
		// On an empty line the join point sits at column 0, which a
		// splice would read as the break above. Removing the line
		// joins with the line below just the same.
		if len(runes) == 0 && loc.Y > 0 {
			if err := e.exe(event.Event{Kind: event.DeleteLine, At: buffer.At(0, loc.Y)}); err != nil {
				return err
			}
			d.Commit()
			return nil
		}
		anchor := buffer.At(len(runes), loc.Y)
		if err := e.exe(event.Event{Kind: event.SpliceUp, At: anchor}); err != nil {
			return err
		}
		d.Commit()
		return nil
	}
	ch := string(runes[loc.X])
	return e.exe(event.Event{Kind: event.Delete, At: loc, Text: ch})
}

// DeleteLine removes the whole current line as one undo unit.
func (e *Editor) DeleteLine() error {
	d := e.doc()
	loc := d.Cursor()
	line, _ := d.Line(loc.Y)
	d.Commit()
	if d.LineCount() == 1 {
		// The buffer never drops below one line; clearing the only
		// line expresses the same outcome.
		if line == "" {
			return nil
		}
		if err := e.exe(event.Event{Kind: event.Delete, At: buffer.Loc{X: 0, Y: 0}, Text: line}); err != nil {
			return err
		}
	} else {
		if err := e.exe(event.Event{Kind: event.DeleteLine, At: buffer.Loc{X: 0, Y: loc.Y}, Text: line}); err != nil {
			return err
		}
	}
	d.Commit()
	return nil
}

// Undo restores the previous committed state and resyncs the
// highlighter to it.
func (e *Editor) Undo() {
	if !e.doc().Undo() {
		e.setFeedback("nothing to undo")
		return
	}
	e.resyncHighlight()
}

// Redo restores the next state, if any edit was undone.
func (e *Editor) Redo() {
	if !e.doc().Redo() {
		e.setFeedback("nothing to redo")
		return
	}
	e.resyncHighlight()
}

// CommitIfInactive seals pending edits once the user has paused for
// the configured undo period. Driven by the app's tick events; key
// handling records activity separately.
func (e *Editor) CommitIfInactive(now time.Time) {
	if len(e.panes) == 0 {
		return
	}
	period := time.Duration(e.cfg.Document.UndoPeriod) * time.Second
	if now.Sub(e.lastActive) > period {
		e.doc().Commit()
	}
}

// Save writes the active document, sealing pending edits first so the
// saved state is undo-addressable.
func (e *Editor) Save() error {
	d := e.doc()
	d.Commit()
	if err := d.Save(); err != nil {
		return err
	}
	e.setFeedback("saved " + d.Path())
	return nil
}

// SaveAs writes the active document to path and rebinds it.
func (e *Editor) SaveAs(path string) error {
	d := e.doc()
	d.Commit()
	if err := d.SaveAs(path); err != nil {
		return err
	}
	// The highlighter follows the file type of the new name.
	p := e.pane()
	p.hl = highlight.ForPath(path)
	p.hl.Run(docLines(d))
	e.setFeedback("saved " + path)
	return nil
}

// SearchNext jumps to the next occurrence of target after the cursor,
// wrapping at the end of the document.
func (e *Editor) SearchNext(target string) bool {
	d := e.doc()
	m, ok := d.NextMatch(target, 1)
	e.syncResidency()
	if !ok {
		e.setFeedback("not found: " + target)
		return false
	}
	d.MoveTo(m.Loc)
	return true
}

// SearchPrev jumps to the previous occurrence of target.
func (e *Editor) SearchPrev(target string) bool {
	d := e.doc()
	m, ok := d.PrevMatch(target)
	e.syncResidency()
	if !ok {
		e.setFeedback("not found: " + target)
		return false
	}
	d.MoveTo(m.Loc)
	return true
}

// ReplaceCurrent replaces the match under the cursor, re-validating it
// against the buffer first.
func (e *Editor) ReplaceCurrent(target, into string) error {
	d := e.doc()
	loc := d.Cursor()
	d.Commit()
	if err := d.Replace(loc, target, into); err != nil {
		return err
	}
	d.MoveTo(loc)
	d.Commit()
	if line, ok := d.Line(loc.Y); ok {
		e.hl().Edit(loc.Y, line)
	}
	return nil
}

// ReplaceAll replaces every occurrence in the document as one undo
// unit, then refeeds the touched lines to the highlighter.
func (e *Editor) ReplaceAll(target, into string) error {
	d := e.doc()
	n, touched, err := d.ReplaceAll(target, into)
	e.syncResidency()
	for _, y := range touched {
		if line, ok := d.Line(y); ok {
			e.hl().Edit(y, line)
		}
	}
	if err != nil {
		return err
	}
	e.setFeedback(fmt.Sprintf("replaced %d occurrences", n))
	return nil
}

// Movement with edge wrapping: the document reports the edge, the
// editor decides to wrap to the adjacent line.

func (e *Editor) MoveUp() {
	e.doc().MoveUp()
}

func (e *Editor) MoveDown() {
	e.doc().MoveDown()
}

func (e *Editor) MoveLeft() {
	d := e.doc()
	if d.MoveLeft() == document.StatusStartOfLine && d.Cursor().Y > 0 {
		d.MoveUp()
		d.MoveLineEnd()
	}
}

func (e *Editor) MoveRight() {
	d := e.doc()
	if d.MoveRight() == document.StatusEndOfLine && d.Cursor().Y+1 < d.LineCount() {
		d.MoveDown()
		d.MoveLineStart()
	}
}

func (e *Editor) PageUp() {
	d := e.doc()
	for i := 0; i < e.docSize().H; i++ {
		if d.MoveUp() == document.StatusStartOfFile {
			break
		}
	}
}

func (e *Editor) PageDown() {
	d := e.doc()
	for i := 0; i < e.docSize().H; i++ {
		if d.MoveDown() == document.StatusEndOfFile {
			break
		}
	}
}

// EachDoc visits every open document with its scroll offset, in open
// order. Used to persist per-file state on exit.
func (e *Editor) EachDoc(fn func(path string, cursor buffer.Loc, scroll int)) {
	for _, p := range e.panes {
		fn(p.doc.Path(), p.doc.Cursor(), p.scroll)
	}
}

// RestorePosition moves the active document's cursor and scroll back to
// a remembered position, clamped to the current content.
func (e *Editor) RestorePosition(cursor buffer.Loc, scroll int) {
	p := e.pane()
	if err := p.doc.LoadTo(cursor.Y + e.docSize().H + 1); err != nil {
		logger.Warn("load on restore failed", "err", err)
	}
	p.doc.MoveTo(cursor)
	if scroll < 0 {
		scroll = 0
	}
	if scroll >= p.doc.LineCount() {
		scroll = p.doc.LineCount() - 1
	}
	p.scroll = scroll
}

func (e *Editor) setFeedback(msg string) {
	e.feedback = msg
}

// Feedback returns the transient message line content.
func (e *Editor) Feedback() string {
	return e.feedback
}

func docLines(d *document.Document) []string {
	lines := make([]string, d.LineCount())
	for y := range lines {
		lines[y], _ = d.Line(y)
	}
	return lines
}
