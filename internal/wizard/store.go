package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	flow     *Flow
	lastSeen time.Time
}

// Store keeps one flow per browser session in memory. Flows idle for longer
// than the expiry are dropped by a background sweep.
type Store struct {
	mu     sync.Mutex
	flows  map[string]*entry
	deps   Deps
	expiry time.Duration
	now    func() time.Time
}

func NewStore(deps Deps, expiry time.Duration) *Store {
	s := &Store{
		flows:  make(map[string]*entry),
		deps:   deps,
		expiry: expiry,
		now:    time.Now,
	}

	go s.cleanupLoop()

	return s
}

// Get returns the flow for id, creating a fresh one under a new id when id
// is unknown or expired. The returned id is the one to keep in the cookie.
func (s *Store) Get(id string) (string, *Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.flows[id]; ok && now.Sub(e.lastSeen) < s.expiry {
		e.lastSeen = now
		return id, e.flow
	}
	delete(s.flows, id)

	id = uuid.NewString()
	flow := NewFlow(s.deps)
	s.flows[id] = &entry{flow: flow, lastSeen: now}
	return id, flow
}

// Lookup returns the flow for id without creating one.
func (s *Store) Lookup(id string) (*Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flows[id]
	if !ok || s.now().Sub(e.lastSeen) >= s.expiry {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.flow, true
}

// Reset forgets the flow so the next Get starts a new briefing.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}

// cleanup removes flows idle past the expiry
func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.expiry)
	for id, e := range s.flows {
		if e.lastSeen.Before(cutoff) {
			delete(s.flows, id)
		}
	}
}
