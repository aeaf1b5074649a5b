package app

import (
	"sync"

	"social_network_service/internal/chat/domain"
)

// PresenceRegistry tracks the live connections of every user in this
// process. A user may hold several handles at once (multi device), the
// registry is the only shared in-memory mutable structure of the chat
// service.
type PresenceRegistry struct {
	mu      sync.RWMutex
	members map[int64][]domain.ChatConn
}

// NewPresenceRegistry create an empty registry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		members: make(map[int64][]domain.ChatConn),
	}
}

// Register adds a live handle for the user
func (p *PresenceRegistry) Register(userID int64, conn domain.ChatConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[userID] = append(p.members[userID], conn)
}

// Unregister removes one handle, the entry disappears with its last handle
func (p *PresenceRegistry) Unregister(userID int64, conn domain.ChatConn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns := p.members[userID]
	for i, c := range conns {
		if c == conn {
			p.members[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(p.members[userID]) == 0 {
		delete(p.members, userID)
	}
}

// UnregisterAll closes and removes every handle attributed to the user
func (p *PresenceRegistry) UnregisterAll(userID int64) {
	p.mu.Lock()
	conns := p.members[userID]
	delete(p.members, userID)
	p.mu.Unlock()

	// close outside the lock, a slow websocket close must not stall
	// registration of other users
	for _, c := range conns {
		_ = c.Close()
	}
}

// ActiveConns returns a snapshot of the user's handles. Callers iterate
// the snapshot, so a handle unregistering mid-broadcast never corrupts
// the walk.
func (p *PresenceRegistry) ActiveConns(userID int64) []domain.ChatConn {
	p.mu.RLock()
	defer p.mu.RUnlock()

	conns := p.members[userID]
	if len(conns) == 0 {
		return nil
	}
	snapshot := make([]domain.ChatConn, len(conns))
	copy(snapshot, conns)
	return snapshot
}

// HasActiveConns reports whether the user holds at least one live handle
func (p *PresenceRegistry) HasActiveConns(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members[userID]) > 0
}
