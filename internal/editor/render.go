package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/okra-editor/okra/internal/config"
	"github.com/okra-editor/okra/internal/logger"
)

type styleSet struct {
	main        tcell.Style
	status      tcell.Style
	lineNumber  tcell.Style
	searchMatch tcell.Style
	syntax      map[string]tcell.Style
}

func newStyleSet(t config.Theme) styleSet {
	fg := parseColor(t.Foreground, tcell.ColorWhite)
	bg := parseColor(t.Background, tcell.ColorBlack)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	statusFg := parseColor(t.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(t.StatuslineBackground, tcell.ColorGray)
	syntax := map[string]tcell.Style{
		"keyword":     main.Foreground(parseColor(t.SyntaxKeyword, fg)),
		"string":      main.Foreground(parseColor(t.SyntaxString, fg)),
		"comment":     main.Foreground(parseColor(t.SyntaxComment, fg)),
		"type":        main.Foreground(parseColor(t.SyntaxType, fg)),
		"function":    main.Foreground(parseColor(t.SyntaxFunction, fg)),
		"number":      main.Foreground(parseColor(t.SyntaxNumber, fg)),
		"constant":    main.Foreground(parseColor(t.SyntaxConstant, fg)),
		"operator":    main.Foreground(parseColor(t.SyntaxOperator, fg)),
		"punctuation": main.Foreground(parseColor(t.SyntaxPunctuation, fg)),
		"variable":    main.Foreground(parseColor(t.SyntaxVariable, fg)),
		"field":       main.Foreground(parseColor(t.SyntaxField, fg)),
	}
	return styleSet{
		main:        main,
		status:      tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		lineNumber:  main.Foreground(parseColor(t.LineNumberForeground, tcell.ColorGray)),
		searchMatch: tcell.StyleDefault.Foreground(parseColor(t.SearchMatchForeground, tcell.ColorBlack)).Background(parseColor(t.SearchMatchBackground, tcell.ColorYellow)),
		syntax:      syntax,
	}
}

func parseColor(s string, fallback tcell.Color) tcell.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	c := tcell.GetColor(s)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

// Render draws the active document along with the status and
// feedback/prompt lines.
func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	e.size.W, e.size.H = w, h
	s.Fill(' ', e.theme.main)
	if len(e.panes) == 0 {
		s.Show()
		return
	}
	viewHeight := h - 2
	if viewHeight < 0 {
		viewHeight = 0
	}
	p := e.pane()
	d := p.doc
	e.ensureCursorVisible(viewHeight)
	if err := d.LoadTo(p.scroll + viewHeight + 1); err != nil {
		logger.Warn("load for render failed", "err", err)
	}
	e.syncResidency()

	gutter := 0
	if e.cfg.Document.LineNumbers {
		gutter = numberWidth(d.LineCount()) + 1
	}

	for row := 0; row < viewHeight; row++ {
		y := p.scroll + row
		line, ok := d.Line(y)
		if !ok {
			break
		}
		if gutter > 0 {
			num := fmt.Sprintf("%*d ", gutter-1, y+1)
			for i, r := range num {
				s.SetContent(i, row, r, nil, e.theme.lineNumber)
			}
		}
		e.renderLine(s, row, gutter, y, line, w)
	}

	e.renderStatus(s, w, h-2)
	e.renderBottom(s, w, h-1)

	if e.mode == ModePrompt {
		x := runewidth.StringWidth(e.prompt.label) + runewidth.StringWidth(string(e.prompt.input[:e.prompt.cursor]))
		s.ShowCursor(x, h-1)
	} else {
		cur := d.Cursor()
		if cur.Y >= p.scroll && cur.Y < p.scroll+viewHeight {
			line, _ := d.Line(cur.Y)
			s.ShowCursor(gutter+e.visualCol(line, cur.X), cur.Y-p.scroll)
		} else {
			s.HideCursor()
		}
	}
	s.Show()
}

func (e *Editor) renderLine(s tcell.Screen, row, gutter, y int, line string, w int) {
	tokens := e.hl().TokensFor(y)
	matches := matchSpans(line, e.activeTarget())
	x := gutter
	for col, r := range []rune(line) {
		if x >= w {
			break
		}
		style := e.theme.main
		for _, tok := range tokens {
			if col >= tok.StartCol && col < tok.EndCol {
				if st, ok := e.theme.syntax[tok.Kind]; ok {
					style = st
					break
				}
			}
		}
		for _, span := range matches {
			if col >= span[0] && col < span[1] {
				style = e.theme.searchMatch
				break
			}
		}
		s.SetContent(x, row, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

// activeTarget is the string being searched for while search or
// replace navigation is live, or empty outside those modes.
func (e *Editor) activeTarget() string {
	switch e.mode {
	case ModeSearch:
		return e.searchTarget
	case ModeReplace:
		return e.replaceTarget
	}
	return ""
}

// matchSpans lists the rune column ranges of target within line.
func matchSpans(line, target string) [][2]int {
	if target == "" {
		return nil
	}
	var spans [][2]int
	width := utf8.RuneCountInString(target)
	from := 0
	for {
		idx := strings.Index(line[from:], target)
		if idx < 0 {
			return spans
		}
		start := utf8.RuneCountInString(line[:from+idx])
		spans = append(spans, [2]int{start, start + width})
		from += idx + len(target)
	}
}

func (e *Editor) renderStatus(s tcell.Screen, w, row int) {
	if row < 0 {
		return
	}
	d := e.doc()
	name := d.Path()
	if name == "" {
		name = "[no name]"
	}
	star := ""
	if d.Modified() {
		star = " *"
	}
	ro := ""
	if d.ReadOnly() {
		ro = " [ro]"
	}
	cur := d.Cursor()
	left := fmt.Sprintf(" %s%s%s", name, star, ro)
	right := fmt.Sprintf("doc %d/%d  %d:%d ", e.ptr+1, len(e.panes), cur.Y+1, cur.X+1)
	pad := w - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 0 {
		pad = 0
	}
	text := left + strings.Repeat(" ", pad) + right
	drawText(s, 0, row, w, text, e.theme.status)
}

func (e *Editor) renderBottom(s tcell.Screen, w, row int) {
	if row < 0 {
		return
	}
	text := e.feedback
	if e.mode == ModePrompt {
		text = e.prompt.label + string(e.prompt.input)
	}
	drawText(s, 0, row, w, text, e.theme.main)
}

func drawText(s tcell.Screen, x, y, w int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

// ensureCursorVisible scrolls the viewport so the cursor stays inside
// it.
func (e *Editor) ensureCursorVisible(viewHeight int) {
	p := e.pane()
	cur := p.doc.Cursor()
	if viewHeight <= 0 {
		return
	}
	if cur.Y < p.scroll {
		p.scroll = cur.Y
	}
	if cur.Y >= p.scroll+viewHeight {
		p.scroll = cur.Y - viewHeight + 1
	}
}

// visualCol maps a rune column to a screen column, accounting for
// double-width characters.
func (e *Editor) visualCol(line string, col int) int {
	x := 0
	for i, r := range []rune(line) {
		if i >= col {
			break
		}
		x += runewidth.RuneWidth(r)
	}
	return x
}

func numberWidth(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}
