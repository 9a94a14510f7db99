package checkout

import (
	"sync"
	"time"
)

// IdleTTL is how long an untouched checkout is kept.
const IdleTTL = 30 * time.Minute

type trackedFlow struct {
	flow     *Flow
	lastUsed time.Time
}

// Manager keeps one checkout flow per session. Flows idle for longer than
// the TTL are discarded.
type Manager struct {
	deps *Deps
	ttl  time.Duration
	now  func() time.Time

	mu        sync.Mutex
	flows     map[string]*trackedFlow
	lastSweep time.Time
}

// NewManager creates a new checkout manager
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:  &deps,
		ttl:   IdleTTL,
		now:   time.Now,
		flows: make(map[string]*trackedFlow),
	}
}

// Flow returns the checkout of sessionID, starting a new one when there is
// none or the previous one succeeded. userID is the signed-in user, if any,
// and is refreshed on every call.
func (m *Manager) Flow(sessionID, userID string, c CartStore) *Flow {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	t, ok := m.flows[sessionID]
	if !ok || t.flow.State() == StateSuccess {
		t = &trackedFlow{flow: newFlow(m.deps, c, userID)}
		m.flows[sessionID] = t
	} else {
		t.flow.attach(c, userID)
	}
	t.lastUsed = now
	return t.flow
}

// View returns the checkout of sessionID without starting or keeping one:
// a session with no live checkout sees a fresh flow over its cart.
func (m *Manager) View(sessionID, userID string, c CartStore) View {
	m.mu.Lock()
	t, ok := m.flows[sessionID]
	if ok && t.flow.State() == StateSuccess {
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return newFlow(m.deps, c, userID).View()
	}
	t.flow.attach(c, userID)
	return t.flow.View()
}

// Reset discards the checkout of sessionID.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, sessionID)
}

// Len returns the number of kept flows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// sweepLocked drops idle flows. It runs at most once per TTL.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, t := range m.flows {
		if now.Sub(t.lastUsed) > m.ttl && t.flow.State() != StateSubmitting {
			delete(m.flows, id)
		}
	}
}
