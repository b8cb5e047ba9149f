package repository

import (
	"context"
	"sync"
	"time"

	"skybridge/internal/model"
)

type memoryEntry struct {
	state     model.SessionState
	expiresAt time.Time
}

// MemorySessionStore keeps dialogue state in process. Entries idle for longer than
// the TTL are treated as gone and removed by Sweep.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get loads a session
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (model.SessionState, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok || s.expired(entry) {
		return model.SessionState{}, ErrSessionNotFound
	}
	return cloneState(entry.state), nil
}

// Save stores a session and refreshes its expiry
func (s *MemorySessionStore) Save(_ context.Context, state model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state.SessionID] = memoryEntry{
		state:     cloneState(state),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes a session
func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired or not
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired sessions and returns how many were removed
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done
func (s *MemorySessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *MemorySessionStore) expired(e memoryEntry) bool {
	return s.ttl > 0 && !s.now().Before(e.expiresAt)
}

func cloneState(st model.SessionState) model.SessionState {
	st.PendingFields = st.PendingFields.Clone()
	if st.LastProposed != nil {
		p := st.LastProposed.Clone()
		st.LastProposed = &p
	}
	return st
}
