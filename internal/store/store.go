// Package store is the in-memory key/value map: a map of key to Record
// plus the keyindex.Index kept in lockstep, with lazy expiry on read.
// Adapted from the mutex-guarded map in
// bytes/eviction-policies/store/store.go — capacity-based eviction is
// replaced by TTL-based lazy expiry, but the "one lock guards the map and
// its auxiliary index" shape is kept.
package store

import (
	"sync"
	"time"

	"github.com/refactoredjello/pyredis-go/internal/keyindex"
	"github.com/refactoredjello/pyredis-go/internal/resp"
)

// Record is a stored value with an optional absolute expiry. Per spec.md
// §3, Value is restricted to BulkString, Integer, or Array (list) frames;
// other resp.Kind values are protocol-only and never stored.
type Record struct {
	Value  resp.Frame
	Expiry time.Time // zero Time means no expiry
}

func (r Record) hasExpiry() bool {
	return !r.Expiry.IsZero()
}

// Store is the map[string]Record plus its sampling index, guarded by a
// single mutex. Per SPEC_FULL.md §4.3, this collapses the two concurrency shapes
// the original implementation tried (a queue+futures actor and a
// lock-guarded direct API) into the direct form: idiomatic for a
// goroutine-per-connection Go server standing in for a single-reactor
// cooperative scheduler, since every store operation below is already
// atomic under the lock.
type Store struct {
	mu    sync.Mutex
	data  map[string]Record
	index *keyindex.Index
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data:  make(map[string]Record),
		index: keyindex.New(),
	}
}

// Set stores value under key with an optional expiry, overwriting any
// existing record. It always succeeds.
func (s *Store) Set(key string, value resp.Frame, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists {
		s.index.Append(key)
	}
	s.data[key] = Record{Value: value, Expiry: expiry}
}

// Get returns the record stored under key, lazily evicting it first if its
// expiry has passed. The second return value reports presence.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) (Record, bool) {
	rec, ok := s.data[key]
	if !ok {
		return Record{}, false
	}
	if rec.hasExpiry() && rec.Expiry.Before(time.Now()) {
		delete(s.data, key)
		s.index.Delete(key)
		return Record{}, false
	}
	return rec, true
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	s.index.Delete(key)
	return true
}

// Size reports the current key count. Lazily-expired-but-not-yet-swept
// entries still count, per spec.md §4.3 — the caller accepts slight
// inflation rather than paying for a full sweep here.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// RandomKey returns a uniformly random tracked key, or ("", false) if the
// store is empty. Used by the expiry sampler.
func (s *Store) RandomKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Random()
}
