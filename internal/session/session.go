// Package session remembers cursor and scroll positions between runs.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileState stores the remembered state of a single file.
type FileState struct {
	CursorX int `json:"cursor_x"`
	CursorY int `json:"cursor_y"`
	Scroll  int `json:"scroll"`
}

// Session stores per-file state keyed by absolute path.
type Session struct {
	Files     map[string]FileState `json:"files"`
	LastSaved time.Time            `json:"last_saved"`
}

// Manager handles session persistence.
type Manager struct {
	session Session
	path    string
}

// NewManager loads the existing session file if one exists.
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	m := &Manager{
		session: Session{Files: make(map[string]FileState)},
		path:    path,
	}
	m.load()
	return m, nil
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "okra")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // no existing session, start fresh
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return
	}
	if session.Files == nil {
		session.Files = make(map[string]FileState)
	}
	m.session = session
}

// Get returns the remembered state for a file path.
func (m *Manager) Get(path string) (FileState, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileState{}, false
	}
	st, ok := m.session.Files[abs]
	return st, ok
}

// Set records the state for a file path.
func (m *Manager) Set(path string, st FileState) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	m.session.Files[abs] = st
}

// Save persists the session to disk.
func (m *Manager) Save() error {
	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
