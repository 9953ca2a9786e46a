package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

// HistoryEntry records one answered query in a session.
type HistoryEntry struct {
	Query     string       `json:"query"`
	Intent    query.Intent `json:"intent"`
	Timestamp time.Time    `json:"timestamp"`
}

// Context is the short-lived per-session state consulted when processing
// follow-up queries. All collections are bounded and never nil.
type Context struct {
	SessionID       string            `json:"session_id"`
	UserID          string            `json:"user_id,omitempty"`
	PreviousQueries []string          `json:"previous_queries"`
	History         []HistoryEntry    `json:"conversation_history"`
	Preferences     map[string]string `json:"preferences"`
	LastActive      time.Time         `json:"last_active"`
}

func newContext(sessionID, userID string, now time.Time) *Context {
	return &Context{
		SessionID:       sessionID,
		UserID:          userID,
		PreviousQueries: []string{},
		History:         []HistoryEntry{},
		Preferences:     map[string]string{},
		LastActive:      now,
	}
}

func (c *Context) clone() Context {
	out := *c
	out.PreviousQueries = append([]string{}, c.PreviousQueries...)
	out.History = append([]HistoryEntry{}, c.History...)
	out.Preferences = make(map[string]string, len(c.Preferences))
	for k, v := range c.Preferences {
		out.Preferences[k] = v
	}
	return out
}

// Record appends one answered query, trimming the bounded lists.
func (c *Context) Record(q string, intent query.Intent, maxHistory int, now time.Time) {
	c.PreviousQueries = append(c.PreviousQueries, q)
	if len(c.PreviousQueries) > maxHistory {
		c.PreviousQueries = c.PreviousQueries[len(c.PreviousQueries)-maxHistory:]
	}
	c.History = append(c.History, HistoryEntry{Query: q, Intent: intent, Timestamp: now})
	if len(c.History) > maxHistory {
		c.History = c.History[len(c.History)-maxHistory:]
	}
	c.LastActive = now
}

// Store is the session-store abstraction injected into the orchestrator.
// Reads hand out snapshots; all mutation goes through Update so each session
// has a single writer at any instant.
type Store interface {
	GetOrCreate(sessionID, userID string) Context
	Snapshot(sessionID string) (Context, bool)
	Update(sessionID string, fn func(*Context))
	Delete(sessionID string) bool
	Sweep() int
	Len() int
}

// MemoryStore keeps sessions in a map guarded by a global RWMutex, with a
// per-session mutex serializing writers. The sweep takes the global write
// lock so no context is touched while being evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*entry
	timeout    time.Duration
	maxHistory int
	log        zerolog.Logger
}

type entry struct {
	mu  sync.Mutex
	ctx *Context
}

func NewMemoryStore(timeout time.Duration, maxHistory int, log zerolog.Logger) *MemoryStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &MemoryStore{
		sessions:   map[string]*entry{},
		timeout:    timeout,
		maxHistory: maxHistory,
		log:        log,
	}
}

// MaxHistory is the bound applied to the per-session lists.
func (s *MemoryStore) MaxHistory() int {
	return s.maxHistory
}

func (s *MemoryStore) GetOrCreate(sessionID, userID string) Context {
	now := time.Now().UTC()

	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		e, ok = s.sessions[sessionID]
		if !ok {
			e = &entry{ctx: newContext(sessionID, userID, now)}
			s.sessions[sessionID] = e
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx.LastActive = now
	if e.ctx.UserID == "" && userID != "" {
		e.ctx.UserID = userID
	}
	return e.ctx.clone()
}

func (s *MemoryStore) Snapshot(sessionID string) (Context, bool) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Context{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.clone(), true
}

// Update holds the read lock while fn runs so a concurrent Sweep cannot
// evict the session mid-update and drop the write.
func (s *MemoryStore) Update(sessionID string, fn func(*Context)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.ctx)
}

func (s *MemoryStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// Sweep evicts sessions idle longer than the timeout and returns how many it
// removed.
func (s *MemoryStore) Sweep() int {
	cutoff := time.Now().UTC().Add(-s.timeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.ctx.LastActive.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug().Int("evicted", evicted).Msg("session sweep")
	}
	return evicted
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper runs Sweep on the given interval until ctx is canceled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
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
