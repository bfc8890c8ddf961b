package editor

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/okra-editor/okra/internal/document"
	"github.com/okra-editor/okra/internal/logger"
)

// promptState is the one-line modal input at the bottom of the screen.
type promptState struct {
	label  string
	input  []rune
	cursor int
	accept func(string)
}

func (e *Editor) startPrompt(label string, accept func(string)) {
	e.mode = ModePrompt
	e.prompt = promptState{label: label, accept: accept}
}

func (e *Editor) stopPrompt() {
	e.mode = ModeEdit
	e.prompt = promptState{}
}

// HandleKey processes one key event. It returns true when the editor
// should quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	e.lastActive = time.Now()
	if e.feedback != "" && e.mode == ModeEdit {
		e.feedback = ""
	}
	switch e.mode {
	case ModePrompt:
		e.handlePromptKey(ev)
		return false
	case ModeSearch:
		e.handleSearchKey(ev)
		return false
	case ModeReplace:
		e.handleReplaceKey(ev)
		return false
	}
	return e.handleEditKey(ev)
}

func (e *Editor) handleEditKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyCtrlQ {
		e.quitArmed = false
	}
	if ev.Key() != tcell.KeyCtrlW {
		e.closeArmed = false
	}
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		if e.anyModified() && !e.quitArmed {
			e.quitArmed = true
			e.setFeedback("unsaved changes, ctrl+q again to quit")
			return false
		}
		return true
	case tcell.KeyCtrlW:
		if e.doc().Modified() && !e.closeArmed {
			e.closeArmed = true
			e.setFeedback("unsaved changes, ctrl+w again to close")
			return false
		}
		e.closeArmed = false
		return e.CloseCurrent()
	case tcell.KeyCtrlS:
		e.saveCommand()
	case tcell.KeyCtrlO:
		e.startPrompt("open: ", func(path string) {
			if path == "" {
				return
			}
			if err := e.OpenOrNew(path); err != nil {
				e.report(err)
			}
		})
	case tcell.KeyCtrlN:
		e.Blank()
	case tcell.KeyCtrlF:
		e.startPrompt("find: ", func(target string) {
			if target == "" {
				return
			}
			e.searchTarget = target
			if e.SearchNext(target) {
				e.mode = ModeSearch
				e.setFeedback("find: left/right to step, esc to stop")
			}
		})
	case tcell.KeyCtrlR:
		e.startReplacePrompt()
	case tcell.KeyCtrlZ:
		e.Undo()
	case tcell.KeyCtrlY:
		e.Redo()
	case tcell.KeyCtrlK:
		e.report(e.DeleteLine())
	case tcell.KeyUp:
		e.MoveUp()
	case tcell.KeyDown:
		e.MoveDown()
	case tcell.KeyLeft:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			e.PrevDoc()
		} else if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.doc().MovePrevWord()
		} else {
			e.MoveLeft()
		}
	case tcell.KeyRight:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			e.NextDoc()
		} else if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.doc().MoveNextWord()
		} else {
			e.MoveRight()
		}
	case tcell.KeyHome:
		e.doc().MoveLineStart()
	case tcell.KeyEnd:
		e.doc().MoveLineEnd()
	case tcell.KeyPgUp:
		e.PageUp()
	case tcell.KeyPgDn:
		e.PageDown()
	case tcell.KeyEnter:
		e.report(e.Enter())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.report(e.Backspace())
	case tcell.KeyDelete:
		e.report(e.DeleteForward())
	case tcell.KeyTab:
		e.report(e.InsertTab())
	case tcell.KeyRune:
		e.report(e.Character(ev.Rune()))
	}
	return false
}

func (e *Editor) saveCommand() {
	err := e.Save()
	if err == nil {
		return
	}
	if errors.Is(err, document.ErrNoFileName) {
		e.startPrompt("save as: ", func(path string) {
			if path == "" {
				return
			}
			e.report(e.SaveAs(path))
		})
		return
	}
	e.report(err)
}

func (e *Editor) startReplacePrompt() {
	e.startPrompt("replace: ", func(target string) {
		if target == "" {
			return
		}
		e.startPrompt("with: ", func(into string) {
			e.replaceTarget = target
			e.replaceInto = into
			if e.SearchNext(target) || e.SearchPrev(target) {
				e.mode = ModeReplace
				e.setFeedback("replace: enter=one, tab=all, arrows=step, esc=stop")
			}
		})
	})
}

func (e *Editor) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		e.stopPrompt()
	case tcell.KeyEnter:
		accept := e.prompt.accept
		input := string(e.prompt.input)
		e.stopPrompt()
		if accept != nil {
			accept(input)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.prompt.cursor > 0 {
			e.prompt.input = append(e.prompt.input[:e.prompt.cursor-1], e.prompt.input[e.prompt.cursor:]...)
			e.prompt.cursor--
		}
	case tcell.KeyLeft:
		if e.prompt.cursor > 0 {
			e.prompt.cursor--
		}
	case tcell.KeyRight:
		if e.prompt.cursor < len(e.prompt.input) {
			e.prompt.cursor++
		}
	case tcell.KeyRune:
		e.prompt.input = append(e.prompt.input[:e.prompt.cursor], append([]rune{ev.Rune()}, e.prompt.input[e.prompt.cursor:]...)...)
		e.prompt.cursor++
	}
}

func (e *Editor) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyEnter:
		e.mode = ModeEdit
		e.feedback = ""
	case tcell.KeyLeft:
		e.SearchPrev(e.searchTarget)
	case tcell.KeyRight:
		e.SearchNext(e.searchTarget)
	}
}

func (e *Editor) handleReplaceKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		e.mode = ModeEdit
		e.feedback = ""
	case tcell.KeyLeft:
		e.SearchPrev(e.replaceTarget)
	case tcell.KeyRight:
		e.SearchNext(e.replaceTarget)
	case tcell.KeyEnter:
		if err := e.ReplaceCurrent(e.replaceTarget, e.replaceInto); err != nil {
			e.report(err)
		} else {
			e.SearchNext(e.replaceTarget)
		}
	case tcell.KeyTab:
		e.report(e.ReplaceAll(e.replaceTarget, e.replaceInto))
		e.mode = ModeEdit
	}
}

func (e *Editor) anyModified() bool {
	for _, p := range e.panes {
		if p.doc.Modified() {
			return true
		}
	}
	return false
}

// report surfaces an operation error on the feedback line. Nil is
// ignored so call sites stay one-liners.
func (e *Editor) report(err error) {
	if err == nil {
		return
	}
	logger.Warn("operation failed", "err", err)
	e.setFeedback(err.Error())
}
