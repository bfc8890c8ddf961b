// Package app is the top-level runtime: it owns the terminal screen,
// the event loop, and session persistence around the editor.
package app

import (
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/okra-editor/okra/internal/buffer"
	"github.com/okra-editor/okra/internal/config"
	"github.com/okra-editor/okra/internal/editor"
	"github.com/okra-editor/okra/internal/logger"
	"github.com/okra-editor/okra/internal/session"
)

// App is the top-level runtime for okra.
type App struct {
	args     []string
	readOnly bool
}

func New(args []string, readOnly bool) *App {
	return &App{args: args, readOnly: readOnly}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.readOnly {
		cfg.Document.ReadOnly = true
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	sm, err := session.NewManager()
	if err != nil {
		logger.Warn("session unavailable", "err", err)
		sm = nil
	}

	w, h := s.Size()
	ed := editor.New(cfg, buffer.Size{W: w, H: h})
	if len(a.args) == 0 {
		ed.Blank()
	}
	for _, path := range a.args {
		if err := ed.OpenOrNew(path); err != nil {
			return err
		}
		if sm != nil {
			if st, ok := sm.Get(path); ok {
				ed.RestorePosition(buffer.Loc{X: st.CursorX, Y: st.CursorY}, st.Scroll)
			}
		}
	}

	stopTick := make(chan struct{})
	defer close(stopTick)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stopTick:
				return
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				a.saveSession(sm, ed)
				return nil
			}
		case *tcell.EventResize:
			w, h := ev.Size()
			ed.Resize(w, h)
			s.Sync()
		case *tcell.EventInterrupt:
			ed.CommitIfInactive(time.Now())
		}
		ed.Render(s)
	}
}

func (a *App) saveSession(sm *session.Manager, ed *editor.Editor) {
	if sm == nil {
		return
	}
	ed.EachDoc(func(path string, cursor buffer.Loc, scroll int) {
		if path == "" {
			return
		}
		sm.Set(path, session.FileState{CursorX: cursor.X, CursorY: cursor.Y, Scroll: scroll})
	})
	if err := sm.Save(); err != nil {
		logger.Warn("session save failed", "err", err)
	}
}
