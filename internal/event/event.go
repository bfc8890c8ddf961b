// Package event defines the six primitive mutation events every edit
// is composed of. Each event carries enough information to be applied
// and reversed exactly, which is what undo and redo are built on.
package event

import "github.com/okra-editor/okra/internal/buffer"

type Kind int

const (
	Insert Kind = iota
	Delete
	InsertLine
	DeleteLine
	SplitDown
	SpliceUp
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case InsertLine:
		return "insert_line"
	case DeleteLine:
		return "delete_line"
	case SplitDown:
		return "split_down"
	case SpliceUp:
		return "splice_up"
	}
	return "unknown"
}

// Event is one primitive, reversible mutation. Text never contains a
// newline: line breaks are expressed with SplitDown and SpliceUp, and
// whole lines with InsertLine and DeleteLine. For the line-level kinds
// At.Y is the line index and At.X is zero.
type Event struct {
	Kind Kind
	At   buffer.Loc
	Text string
}

// Reverse returns the opposite event, for purposes of undoing.
// Reverse is an involution: e.Reverse().Reverse() == e, and applying
// e then e.Reverse() leaves buffer and cursor untouched.
func (e Event) Reverse() Event {
	switch e.Kind {
	case Insert:
		return Event{Kind: Delete, At: e.At, Text: e.Text}
	case Delete:
		return Event{Kind: Insert, At: e.At, Text: e.Text}
	case InsertLine:
		return Event{Kind: DeleteLine, At: e.At, Text: e.Text}
	case DeleteLine:
		return Event{Kind: InsertLine, At: e.At, Text: e.Text}
	case SplitDown:
		return Event{Kind: SpliceUp, At: e.At}
	case SpliceUp:
		return Event{Kind: SplitDown, At: e.At}
	}
	return e
}

// Loc is the anchor location of the event for cursor bookkeeping.
func (e Event) Loc() buffer.Loc {
	switch e.Kind {
	case InsertLine, DeleteLine:
		return buffer.Loc{X: 0, Y: e.At.Y}
	default:
		return e.At
	}
}
