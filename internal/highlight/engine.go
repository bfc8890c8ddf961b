package highlight

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
)

func goLanguage() *sitter.Language   { return golang.GetLanguage() }
func tomlLanguage() *sitter.Language { return toml.GetLanguage() }
func bashLanguage() *sitter.Language { return bash.GetLanguage() }

// Engine is a tree-sitter backed Highlighter. It mirrors the document
// lines and converts every line-keyed call into a tree edit followed
// by an incremental reparse, so the cost of a keystroke stays
// proportional to the damage, not the document.
type Engine struct {
	parser *sitter.Parser
	query  *sitter.Query
	tree   *sitter.Tree
	lines  []string
	src    []byte
}

func newEngine(lang *sitter.Language, querySrc string) Highlighter {
	q, err := sitter.NewQuery([]byte(querySrc), lang)
	if err != nil {
		// A broken query downgrades to no tokens rather than failing
		// the editor.
		return NewPlain()
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Engine{parser: p, query: q}
}

func (e *Engine) Run(lines []string) {
	e.lines = append(e.lines[:0:0], lines...)
	e.src = []byte(strings.Join(e.lines, "\n"))
	e.tree, _ = e.parser.ParseCtx(context.Background(), nil, e.src)
}

func (e *Engine) Append(line string) {
	if len(e.lines) == 0 {
		e.Run([]string{line})
		return
	}
	last := len(e.lines) - 1
	start := len(e.src)
	edit := sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(start),
		NewEndIndex: uint32(start + 1 + len(line)),
		StartPoint:  sitter.Point{Row: uint32(last), Column: uint32(len(e.lines[last]))},
		OldEndPoint: sitter.Point{Row: uint32(last), Column: uint32(len(e.lines[last]))},
		NewEndPoint: sitter.Point{Row: uint32(last + 1), Column: uint32(len(line))},
	}
	e.lines = append(e.lines, line)
	e.reparse(edit)
}

func (e *Engine) Edit(y int, line string) {
	if y < 0 || y >= len(e.lines) {
		return
	}
	start := e.byteOffset(y)
	old := e.lines[y]
	edit := sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(start + len(old)),
		NewEndIndex: uint32(start + len(line)),
		StartPoint:  sitter.Point{Row: uint32(y), Column: 0},
		OldEndPoint: sitter.Point{Row: uint32(y), Column: uint32(len(old))},
		NewEndPoint: sitter.Point{Row: uint32(y), Column: uint32(len(line))},
	}
	e.lines[y] = line
	e.reparse(edit)
}

func (e *Engine) InsertLine(y int, line string) {
	if y < 0 || y > len(e.lines) {
		return
	}
	if y == len(e.lines) {
		e.Append(line)
		return
	}
	start := e.byteOffset(y)
	edit := sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(start),
		NewEndIndex: uint32(start + len(line) + 1),
		StartPoint:  sitter.Point{Row: uint32(y), Column: 0},
		OldEndPoint: sitter.Point{Row: uint32(y), Column: 0},
		NewEndPoint: sitter.Point{Row: uint32(y + 1), Column: 0},
	}
	e.lines = append(e.lines, "")
	copy(e.lines[y+1:], e.lines[y:])
	e.lines[y] = line
	e.reparse(edit)
}

func (e *Engine) RemoveLine(y int) {
	if y < 0 || y >= len(e.lines) {
		return
	}
	old := e.lines[y]
	var edit sitter.EditInput
	if y == len(e.lines)-1 && y > 0 {
		// Last line: the preceding newline goes with it.
		start := e.byteOffset(y) - 1
		prev := e.lines[y-1]
		edit = sitter.EditInput{
			StartIndex:  uint32(start),
			OldEndIndex: uint32(start + 1 + len(old)),
			NewEndIndex: uint32(start),
			StartPoint:  sitter.Point{Row: uint32(y - 1), Column: uint32(len(prev))},
			OldEndPoint: sitter.Point{Row: uint32(y), Column: uint32(len(old))},
			NewEndPoint: sitter.Point{Row: uint32(y - 1), Column: uint32(len(prev))},
		}
	} else {
		start := e.byteOffset(y)
		oldEnd := start + len(old)
		endPoint := sitter.Point{Row: uint32(y), Column: uint32(len(old))}
		if y < len(e.lines)-1 {
			oldEnd++
			endPoint = sitter.Point{Row: uint32(y + 1), Column: 0}
		}
		edit = sitter.EditInput{
			StartIndex:  uint32(start),
			OldEndIndex: uint32(oldEnd),
			NewEndIndex: uint32(start),
			StartPoint:  sitter.Point{Row: uint32(y), Column: 0},
			OldEndPoint: endPoint,
			NewEndPoint: sitter.Point{Row: uint32(y), Column: 0},
		}
	}
	e.lines = append(e.lines[:y], e.lines[y+1:]...)
	e.reparse(edit)
}

func (e *Engine) reparse(edit sitter.EditInput) {
	e.src = []byte(strings.Join(e.lines, "\n"))
	if e.tree != nil {
		e.tree.Edit(edit)
	}
	tree, _ := e.parser.ParseCtx(context.Background(), e.tree, e.src)
	e.tree = tree
}

// TokensFor runs the highlight query over line y only and returns the
// captured spans in rune columns, ordered left to right.
func (e *Engine) TokensFor(y int) []Token {
	if e.tree == nil || e.query == nil || y < 0 || y >= len(e.lines) {
		return nil
	}
	line := e.lines[y]
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(y), Column: 0},
		sitter.Point{Row: uint32(y + 1), Column: 0},
	)
	cursor.Exec(e.query, e.tree.RootNode())

	var out []Token
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, e.src)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := e.query.CaptureNameForId(capture.Index)
			node := capture.Node
			start := node.StartPoint()
			end := node.EndPoint()
			if int(end.Row) < y || int(start.Row) > y {
				continue
			}
			startByte := 0
			endByte := math.MaxInt32
			if int(start.Row) == y {
				startByte = int(start.Column)
			}
			if int(end.Row) == y {
				endByte = int(end.Column)
			}
			out = append(out, Token{
				StartCol: runeCol(line, startByte),
				EndCol:   runeCol(line, endByte),
				Kind:     kind,
			})
		}
	}
	sortTokens(out)
	return out
}

func (e *Engine) LineCount() int {
	return len(e.lines)
}

func (e *Engine) Line(y int) (string, bool) {
	if y < 0 || y >= len(e.lines) {
		return "", false
	}
	return e.lines[y], true
}

func (e *Engine) byteOffset(y int) int {
	n := 0
	for i := 0; i < y; i++ {
		n += len(e.lines[i]) + 1
	}
	return n
}

// runeCol converts a byte column within line into a rune column.
func runeCol(line string, byteCol int) int {
	if byteCol >= len(line) {
		return utf8.RuneCountInString(line)
	}
	return utf8.RuneCountInString(line[:byteCol])
}
