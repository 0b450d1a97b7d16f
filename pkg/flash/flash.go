// Package flash carries one-time user-facing notices across a redirect.
// Notices are queued in an encrypted cookie and consumed on the next read.
package flash

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/hotube/pkg/cookie"
)

const cookieName = "__flash"

// Kind classifies a notice for rendering.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Notice is a single one-time message.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Manager queues and drains flash notices through the cookie manager.
type Manager struct {
	cookies *cookie.Manager
}

func New(cookies *cookie.Manager) *Manager {
	return &Manager{cookies: cookies}
}

// Add appends a notice to the queue. Existing queued notices survive
// until the next Pop.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, kind Kind, message string) error {
	queue := m.peek(r)
	queue = append(queue, Notice{Kind: kind, Message: message})

	data, err := json.Marshal(queue)
	if err != nil {
		return err
	}

	return m.cookies.SetEncrypted(w, cookieName, string(data))
}

// Pop returns all queued notices and clears the queue. Reading is
// destructive so a notice is rendered at most once.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	queue := m.peek(r)
	if len(queue) > 0 {
		m.cookies.Delete(w, cookieName)
	}
	return queue
}

func (m *Manager) peek(r *http.Request) []Notice {
	data, err := m.cookies.GetEncrypted(r, cookieName)
	if err != nil {
		return nil
	}

	var queue []Notice
	if err := json.Unmarshal([]byte(data), &queue); err != nil {
		// Tampered or stale payload; start a fresh queue.
		return nil
	}

	return queue
}
