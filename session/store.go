package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	sel      *Selection
	lastSeen time.Time
}

// Store maps session ids to their selections. The store itself is shared by
// all HTTP handlers and is locked; the selections it hands out are not.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns an empty store. Sessions idle for longer than ttl are
// dropped the next time a session is created; a zero ttl keeps them forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session with a default selection.
func (st *Store) Create() (string, *Selection) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepLocked(now)

	id := uuid.NewString()
	sel := New()
	st.sessions[id] = &entry{sel: sel, lastSeen: now}
	return id, sel
}

// Get returns the selection of an existing session.
func (st *Store) Get(id string) (*Selection, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(e, now) {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.sel, true
}

// Update applies fn to the selection of a live session while holding the
// store lock and returns a copy of the result. Concurrent requests of the same
// session are serialized here.
func (st *Store) Update(id string, fn func(*Selection)) (*Selection, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	now := st.now()
	if !ok || st.expired(e, now) {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	if fn != nil {
		fn(e.sel)
	}
	return e.sel.Clone(), true
}

// Delete ends a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(e *entry, now time.Time) bool {
	return st.ttl > 0 && now.Sub(e.lastSeen) > st.ttl
}

func (st *Store) sweepLocked(now time.Time) {
	for id, e := range st.sessions {
		if st.expired(e, now) {
			delete(st.sessions, id)
		}
	}
}
