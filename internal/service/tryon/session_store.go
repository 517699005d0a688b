package tryon

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps one Controller per browser session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
	opts     *Options
	ttl      time.Duration
}

// NewSessionStore creates an empty store. Sessions idle for longer than ttl are evicted by Run.
func NewSessionStore(opts *Options, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Controller),
		opts:     opts,
		ttl:      ttl,
	}
}

// Get returns the controller of a session if it exists.
func (s *SessionStore) Get(sessionID string) (*Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[sessionID]
	return c, ok
}

// Controller returns the session's controller, creating one mounted at the
// fallback id when the session has none (first API call, or after eviction).
// A found controller is touched while the store lock is held, so an eviction
// sweep cannot drop it between the lookup and its use.
func (s *SessionStore) Controller(sessionID string) *Controller {
	s.mu.RLock()
	c, ok := s.sessions[sessionID]
	if ok {
		c.touch()
	}
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok = s.sessions[sessionID]
	if !ok {
		c = NewController(sessionID, s.opts)
		s.sessions[sessionID] = c
	}
	return c
}

// Mount creates the session's controller when missing and mounts it for routeID.
// A page reload lands here again, which resets the state.
func (s *SessionStore) Mount(sessionID, routeID string) (*Controller, PageState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		c = NewController(sessionID, s.opts)
		s.sessions[sessionID] = c
	}
	return c, c.Mount(routeID)
}

// Each calls fn for every live controller.
func (s *SessionStore) Each(fn func(c *Controller)) {
	s.mu.RLock()
	controllers := make([]*Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		controllers = append(controllers, c)
	}
	s.mu.RUnlock()

	for _, c := range controllers {
		fn(c)
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions not seen since now-ttl and returns how many were removed.
func (s *SessionStore) EvictIdle(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if c.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run evicts idle sessions until ctx is cancelled.
func (s *SessionStore) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(s.opts.now()); n > 0 && s.opts.Logger != nil {
				s.opts.Logger.Info("Evicted %d idle try-on session(s), %d left", n, s.Len())
			}
		}
	}
}
