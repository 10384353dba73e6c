package tui

import (
	"sync"

	"catalog-admin/internal/notify"
)

// Hooks connect store side effects to a running browser: it is the stores'
// Notifier and Navigator at once.
type Hooks struct {
	mu      sync.Mutex
	notices []notify.Message
	login   chan struct{}
}

func NewHooks() *Hooks {
	return &Hooks{login: make(chan struct{}, 1)}
}

func (h *Hooks) Success(msg string) { h.add(notify.LevelSuccess, msg) }
func (h *Hooks) Error(msg string)   { h.add(notify.LevelError, msg) }

func (h *Hooks) add(lv notify.Level, msg string) {
	h.mu.Lock()
	h.notices = append(h.notices, notify.Message{Level: lv, Text: msg})
	h.mu.Unlock()
}

// ToLogin asks the browser to quit; repeated calls collapse into one.
func (h *Hooks) ToLogin() {
	select {
	case h.login <- struct{}{}:
	default:
	}
}

// drain returns and forgets the notices collected so far.
func (h *Hooks) drain() []notify.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.notices
	h.notices = nil
	return out
}
