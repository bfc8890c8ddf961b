// Package highlight provides the incremental tokenizer the editor
// keeps in sync with the buffer. The editor translates every mutation
// outcome into line-keyed calls; a full re-tokenize never happens on
// the edit path.
package highlight

import (
	"path/filepath"
	"sort"
)

// Token is one highlighted span on a line, in rune columns.
type Token struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Highlighter is the contract between the editor and a tokenizer.
// After any sequence of calls the highlighter's mirrored line count
// and content equal the buffer's; callers emit the calls in an order
// consistent with index shifts (an inserted line is announced before
// edits to lines below it).
type Highlighter interface {
	// Run resets the highlighter to the given document content.
	Run(lines []string)
	// Append adds a line at the end of the document.
	Append(line string)
	// Edit replaces the content of line y.
	Edit(y int, line string)
	// InsertLine inserts a new line at index y.
	InsertLine(y int, line string)
	// RemoveLine removes line y.
	RemoveLine(y int)
	// TokensFor returns the ordered spans on line y.
	TokensFor(y int) []Token
	// LineCount reports how many lines the highlighter mirrors.
	LineCount() int
	// Line returns the mirrored content of line y.
	Line(y int) (string, bool)
}

// ForPath picks a highlighter for a file by extension. Unknown types
// get a plain highlighter that mirrors lines and yields no tokens.
func ForPath(path string) Highlighter {
	switch filepath.Ext(path) {
	case ".go":
		return newEngine(goLanguage(), goHighlightQuery)
	case ".toml":
		return newEngine(tomlLanguage(), tomlHighlightQuery)
	case ".sh", ".bash":
		return newEngine(bashLanguage(), bashHighlightQuery)
	default:
		return NewPlain()
	}
}

// Plain is the no-token highlighter. It still mirrors document lines
// so the sync contract can be observed uniformly.
type Plain struct {
	lines []string
}

func NewPlain() *Plain {
	return &Plain{}
}

func (p *Plain) Run(lines []string) {
	p.lines = append(p.lines[:0:0], lines...)
}

func (p *Plain) Append(line string) {
	p.lines = append(p.lines, line)
}

func (p *Plain) Edit(y int, line string) {
	if y >= 0 && y < len(p.lines) {
		p.lines[y] = line
	}
}

func (p *Plain) InsertLine(y int, line string) {
	if y < 0 || y > len(p.lines) {
		return
	}
	p.lines = append(p.lines, "")
	copy(p.lines[y+1:], p.lines[y:])
	p.lines[y] = line
}

func (p *Plain) RemoveLine(y int) {
	if y < 0 || y >= len(p.lines) {
		return
	}
	p.lines = append(p.lines[:y], p.lines[y+1:]...)
}

func (p *Plain) TokensFor(int) []Token { return nil }

func (p *Plain) LineCount() int { return len(p.lines) }

func (p *Plain) Line(y int) (string, bool) {
	if y < 0 || y >= len(p.lines) {
		return "", false
	}
	return p.lines[y], true
}

func sortTokens(toks []Token) {
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].StartCol != toks[j].StartCol {
			return toks[i].StartCol < toks[j].StartCol
		}
		return toks[i].EndCol > toks[j].EndCol
	})
}
