package session

import (
	"strings"
	"sync"
)

// State is the credential bundle set on login.
type State struct {
	Token  string `json:"-"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (s State) LoggedIn() bool { return strings.TrimSpace(s.Token) != "" }

// Store is the session accessor handed to every collection store. It stores
// and returns values verbatim; it never validates token shape or freshness.
type Store interface {
	Credential() (string, bool)
	UserID() (string, bool)
	Current() State
	Init(State) error
	Clear() error
}

// Memory is a process-local Store.
type Memory struct {
	mu sync.RWMutex
	st State
}

func NewMemory(st State) *Memory { return &Memory{st: st} }

func (m *Memory) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok := strings.TrimSpace(m.st.Token)
	return tok, tok != ""
}

func (m *Memory) UserID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.UserID, m.st.UserID != ""
}

func (m *Memory) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st
}

func (m *Memory) Init(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}
