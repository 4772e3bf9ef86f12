// Package keyindex implements the swap-remove-backed auxiliary index the
// store uses to support O(1) uniform random key sampling alongside O(1)
// insert/delete, adapted from the swap-delete bookkeeping in
// bytes/eviction-policies/eviction/random.go (there used to pick an
// eviction victim; here used by the store and the expiry sampler to pick
// keys to sample).
package keyindex

import "math/rand"

// Index is a pair of a slice of keys and a map from key to
// its current slot in that slice. The invariant it maintains: for every
// key k with positions[k] == i, keys[i] == k, and len(keys) == len(positions).
type Index struct {
	keys      []string
	positions map[string]int
}

// New returns an empty Index.
func New() *Index {
	return &Index{positions: make(map[string]int)}
}

// Append records a newly inserted key. Appending a key that is already
// tracked is a no-op.
func (idx *Index) Append(key string) {
	if _, exists := idx.positions[key]; exists {
		return
	}
	idx.positions[key] = len(idx.keys)
	idx.keys = append(idx.keys, key)
}

// Delete removes key from the index in O(1): it looks up key's slot,
// pops the tail of keys, and—unless the popped key was key itself—writes
// the popped key into the freed slot and updates its recorded position.
func (idx *Index) Delete(key string) {
	i, ok := idx.positions[key]
	if !ok {
		return
	}
	delete(idx.positions, key)

	last := len(idx.keys) - 1
	tail := idx.keys[last]
	idx.keys = idx.keys[:last]

	if tail == key {
		return
	}
	idx.keys[i] = tail
	idx.positions[tail] = i
}

// Random returns a uniformly random key, or ("", false) when the index is
// empty.
func (idx *Index) Random() (string, bool) {
	if len(idx.keys) == 0 {
		return "", false
	}
	i := rand.Intn(len(idx.keys))
	return idx.keys[i], true
}

// Len reports the number of keys currently tracked.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Contains reports whether key is currently tracked.
func (idx *Index) Contains(key string) bool {
	_, ok := idx.positions[key]
	return ok
}
