package session

import (
	"sync"

	"zetacore/app/service/slots"

	"github.com/google/uuid"
	"github.com/samber/do"
)

// Store is the process-wide session map. Reads and writes for different
// session ids run concurrently; the read-modify-write cycle of one turn is
// serialized per id through Acquire.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	schema  slots.Schema
	evicted bool
}

func New(_ *do.Injector) (*Store, error) {
	return &Store{
		sessions: make(map[string]*entry),
	}, nil
}

// NewID mints an identifier for a session the caller did not name.
func NewID() string {
	return uuid.NewString()
}

// Acquire locks the session for one turn, creating it empty when the id is
// unknown. The second result reports whether the session already existed.
// The caller must Release the handle when the turn completes.
func (s *Store) Acquire(id string) (*Session, bool) {
	for {
		s.mu.Lock()
		e, existed := s.sessions[id]
		if e == nil {
			e = &entry{}
			s.sessions[id] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		if e.evicted {
			// Lost a race with Delete; the map entry was replaced.
			e.mu.Unlock()
			continue
		}

		return &Session{id: id, store: s, entry: e}, existed
	}
}

// Get returns the schema for id, an empty schema when unknown. Unknown ids
// are created, which is how sessions begin.
func (s *Store) Get(id string) slots.Schema {
	sess, _ := s.Acquire(id)
	defer sess.Release()

	return sess.Schema()
}

func (s *Store) Put(id string, schema slots.Schema) {
	sess, _ := s.Acquire(id)
	defer sess.Release()

	sess.Put(schema)
}

func (s *Store) Delete(id string) {
	sess, _ := s.Acquire(id)
	defer sess.Release()

	sess.Evict()
}

func (s *Store) ListIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	return ids
}

// Session is a per-turn handle holding the per-key lock.
type Session struct {
	id    string
	store *Store
	entry *entry
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Schema() slots.Schema {
	return s.entry.schema
}

func (s *Session) Put(schema slots.Schema) {
	s.entry.schema = schema
}

// Evict removes the session from the store. The conversation resets after a
// successful booking.
func (s *Session) Evict() {
	s.store.mu.Lock()
	if s.store.sessions[s.id] == s.entry {
		delete(s.store.sessions, s.id)
	}
	s.store.mu.Unlock()

	s.entry.evicted = true
	s.entry.schema = slots.Schema{}
}

func (s *Session) Release() {
	s.entry.mu.Unlock()
}
