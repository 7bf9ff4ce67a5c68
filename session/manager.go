package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/runtime"
)

// Manager tracks every live Session by ID and issues/resolves the resumption
// tokens that let a client reattach to one. A token verifies on any Manager
// holding the same signing key, but sessions are kept only in this
// Manager's in-memory map: Resume succeeds only where the named session is
// registered, so sessions do not survive a process restart and are not
// shared between instances.
type Manager struct {
	issuer *TokenIssuer

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a Manager whose resumption tokens are signed with
// signingKey and expire after ttl (see agentcore.RuntimeOptions.ResumeTokenTTL).
func NewManager(signingKey []byte, ttl time.Duration) *Manager {
	return &Manager{
		issuer:   NewTokenIssuer(signingKey, ttl),
		sessions: make(map[string]*Session),
	}
}

// Create builds a new Session bound to engine with a fresh UUID, registers
// it, and returns it.
func (m *Manager) Create(engine *runtime.Engine, template TaskTemplate) *Session {
	s := New(uuid.NewString(), engine, template)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session registered under id, or false if none exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close removes id from the registry. It does not cancel any in-flight run;
// call Session.Cancel first if that is required.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// IssueResumeToken mints a signed resumption token for id, failing if no
// such session is registered.
func (m *Manager) IssueResumeToken(id string) (string, error) {
	if _, ok := m.Get(id); !ok {
		return "", fmt.Errorf("session: %s: %w", id, agentcore.ErrSessionNotFound)
	}
	return m.issuer.Issue(id)
}

// Resume verifies raw and returns the Session it names, failing if the
// token is invalid, expired, or no longer has a live session behind it.
func (m *Manager) Resume(raw string) (*Session, error) {
	id, err := m.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}
	s, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("session: %s: no longer active: %w", id, agentcore.ErrSessionNotFound)
	}
	return s, nil
}
