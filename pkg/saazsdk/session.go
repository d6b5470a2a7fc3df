package saazsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSession is returned by Update when nobody is signed in.
var ErrNoSession = errors.New("saazsdk: no active session")

// SessionState is what a signed-in client persists.
type SessionState struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Backend persists a SessionState. Load returns (nil, nil) when nothing
// has been saved.
type Backend interface {
	Load() (*SessionState, error)
	Save(SessionState) error
	Clear() error
}

// SessionStore holds the current session in memory and writes every change
// through to its Backend. It is safe for concurrent use; separate stores
// over the same backend do not coordinate and the last write wins.
type SessionStore struct {
	backend Backend

	mu      sync.RWMutex
	current *SessionState
}

// NewSessionStore creates a store over backend. A nil backend keeps the
// session in memory only.
func NewSessionStore(backend Backend) *SessionStore {
	if backend == nil {
		backend = &MemoryBackend{}
	}
	return &SessionStore{backend: backend}
}

// Load replaces the in-memory session with whatever the backend holds.
func (s *SessionStore) Load() error {
	st, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
	return nil
}

// Save records a new session.
func (s *SessionStore) Save(token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{Token: token, User: user}
	if err := s.backend.Save(st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = &st
	return nil
}

// Update replaces the user of the current session, keeping its token.
func (s *SessionStore) Update(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoSession
	}

	st := SessionState{Token: s.current.Token, User: user}
	if err := s.backend.Save(st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = &st
	return nil
}

// Clear signs out.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = nil
	return nil
}

// Current returns a copy of the active session.
func (s *SessionStore) Current() (SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return SessionState{}, false
	}
	return *s.current, true
}

// Token returns the active session token, or "" when signed out.
func (s *SessionStore) Token() string {
	st, _ := s.Current()
	return st.Token
}

// MemoryBackend keeps the session for the life of the process.
type MemoryBackend struct {
	mu    sync.Mutex
	state *SessionState
}

func (m *MemoryBackend) Load() (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return nil, nil
	}
	st := *m.state
	return &st, nil
}

func (m *MemoryBackend) Save(st SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &st
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// FileBackend stores the session as JSON at Path with owner-only
// permissions. Writes go through a temp file and rename.
type FileBackend struct {
	Path string
}

func (f FileBackend) Load() (*SessionState, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	if st.Token == "" {
		return nil, nil
	}
	return &st, nil
}

func (f FileBackend) Save(st SessionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.Path)
}

func (f FileBackend) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
