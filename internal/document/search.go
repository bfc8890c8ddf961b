package document

import (
	"strings"
	"unicode/utf8"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/event"
)

// Match is one occurrence of a search target.
type Match struct {
	Loc  buffer.Loc
	Text string
}

// NextMatch scans forward from the cursor for target, starting inc
// characters past the cursor column, wrapping at the end of the
// document. An empty or absent target yields no match. The scan loads
// any lines it needs, so a wrapping search materializes the file.
func (d *Document) NextMatch(target string, inc int) (Match, bool) {
	if target == "" {
		return Match{}, false
	}
	if err := d.LoadAll(); err != nil {
		return Match{}, false
	}
	count := d.buf.LineCount()
	startX := d.cursor.X + inc
	for i := 0; i <= count; i++ {
		y := (d.cursor.Y + i) % count
		line, ok := d.buf.Line(y)
		if !ok {
			continue
		}
		fromX := 0
		if i == 0 {
			fromX = startX
		}
		if x, ok := indexFrom(line, target, fromX); ok {
			return Match{Loc: buffer.Loc{X: x, Y: y}, Text: target}, true
		}
	}
	return Match{}, false
}

// PrevMatch scans backward from the cursor (exclusive), wrapping at
// the start of the document.
func (d *Document) PrevMatch(target string) (Match, bool) {
	if target == "" {
		return Match{}, false
	}
	if err := d.LoadAll(); err != nil {
		return Match{}, false
	}
	count := d.buf.LineCount()
	for i := 0; i <= count; i++ {
		y := ((d.cursor.Y-i)%count + count) % count
		line, ok := d.buf.Line(y)
		if !ok {
			continue
		}
		before := utf8.RuneCountInString(line)
		if i == 0 {
			before = d.cursor.X
		}
		if x, ok := lastIndexBefore(line, target, before); ok {
			return Match{Loc: buffer.Loc{X: x, Y: y}, Text: target}, true
		}
	}
	return Match{}, false
}

// indexFrom finds the first occurrence of target in line at or after
// rune column fromX, in rune columns.
func indexFrom(line, target string, fromX int) (int, bool) {
	runes := []rune(line)
	if fromX > len(runes) {
		return 0, false
	}
	tail := string(runes[fromX:])
	idx := strings.Index(tail, target)
	if idx < 0 {
		return 0, false
	}
	return fromX + utf8.RuneCountInString(tail[:idx]), true
}

// lastIndexBefore finds the last occurrence of target starting
// strictly before rune column beforeX.
func lastIndexBefore(line, target string, beforeX int) (int, bool) {
	runes := []rune(line)
	if beforeX > len(runes) {
		beforeX = len(runes)
	}
	best, found := 0, false
	for x := 0; x < beforeX; x++ {
		if strings.HasPrefix(string(runes[x:]), target) {
			best, found = x, true
		}
	}
	return best, found
}

// Replace swaps old for new at loc, re-validating first that old still
// matches the buffer there. A stale match fails the operation without
// mutating buffer, cursor, or undo state.
func (d *Document) Replace(loc buffer.Loc, old, into string) error {
	if d.readOnly {
		return ErrReadOnlyFile
	}
	line, ok := d.buf.Line(loc.Y)
	if !ok {
		return ErrStaleMatch
	}
	runes := []rune(line)
	n := utf8.RuneCountInString(old)
	if loc.X < 0 || loc.X+n > len(runes) || string(runes[loc.X:loc.X+n]) != old {
		return ErrStaleMatch
	}
	if err := d.Exe(event.Event{Kind: event.Delete, At: loc, Text: old}); err != nil {
		return err
	}
	if err := d.Exe(event.Event{Kind: event.Insert, At: loc, Text: into}); err != nil {
		return err
	}
	return nil
}

// ReplaceAll replaces every occurrence of target from the top of the
// document down, re-deriving each next match against the already
// mutated buffer so adjacent and growing replacements stay correct.
// The batch is wrapped in a single commit boundary and undoes
// atomically. It returns the number of replacements and the lines
// touched, for highlight resync.
func (d *Document) ReplaceAll(target, into string) (int, []int, error) {
	if target == "" {
		return 0, nil, nil
	}
	if d.readOnly {
		return 0, nil, ErrReadOnlyFile
	}
	if err := d.LoadAll(); err != nil {
		return 0, nil, err
	}
	d.Commit()
	replaced := 0
	var touched []int
	intoLen := utf8.RuneCountInString(into)
	pos := buffer.Loc{X: 0, Y: 0}
	for pos.Y < d.buf.LineCount() {
		line, _ := d.buf.Line(pos.Y)
		x, ok := indexFrom(line, target, pos.X)
		if !ok {
			pos.Y++
			pos.X = 0
			continue
		}
		loc := buffer.Loc{X: x, Y: pos.Y}
		if err := d.Replace(loc, target, into); err != nil {
			return replaced, touched, err
		}
		replaced++
		if len(touched) == 0 || touched[len(touched)-1] != pos.Y {
			touched = append(touched, pos.Y)
		}
		// Resume after the inserted text so the replacement itself is
		// never re-matched.
		pos.X = x + intoLen
	}
	d.Commit()
	return replaced, touched, nil
}
