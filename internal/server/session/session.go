// Package session keeps per-browser page state in memory, keyed by a cookie.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CookieName is the session cookie.
const CookieName = "boilerdesk_session"

type entry[W any] struct {
	workspace W
	lastSeen  time.Time
}

// Manager handles per-browser workspaces.
type Manager[W any] struct {
	sessions map[string]*entry[W]
	mu       sync.RWMutex
	create   func() W
	now      func() time.Time
}

// NewManager creates a session manager. create builds the workspace of a new
// browser session.
func NewManager[W any](create func() W) *Manager[W] {
	return &Manager[W]{
		sessions: make(map[string]*entry[W]),
		create:   create,
		now:      time.Now,
	}
}

// Get returns the workspace of the request's session, starting a new session
// and setting its cookie when the request carries none or an unknown one.
func (m *Manager[W]) Get(c *gin.Context) W {
	if id, err := c.Cookie(CookieName); err == nil {
		if w, ok := m.touch(id); ok {
			return w
		}
	}

	id := uuid.NewString()
	w := m.create()

	m.mu.Lock()
	m.sessions[id] = &entry[W]{workspace: w, lastSeen: m.now()}
	m.mu.Unlock()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, 0, "/", "", false, true)
	return w
}

func (m *Manager[W]) touch(id string) (W, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		var zero W
		return zero, false
	}
	e.lastSeen = m.now()
	return e.workspace, true
}

// Len returns the number of live sessions.
func (m *Manager[W]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many were
// removed.
func (m *Manager[W]) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
