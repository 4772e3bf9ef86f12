package store

import (
	"testing"
	"time"

	"github.com/refactoredjello/pyredis-go/internal/resp"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	s.Set("k", resp.BulkFromString("v"), time.Time{})

	rec, ok := s.Get("k")
	if !ok {
		t.Fatalf("Get(k) missing after Set")
	}
	if !rec.Value.Equal(resp.BulkFromString("v")) {
		t.Fatalf("Get(k) = %+v, want BulkString(v)", rec.Value)
	}
}

func TestExpiredKeyIsAbsentAndUnsampled(t *testing.T) {
	s := New()
	s.Set("k", resp.BulkFromString("v"), time.Now().Add(-time.Millisecond))

	if _, ok := s.Get("k"); ok {
		t.Fatalf("Get(k) returned a value past its expiry")
	}
	if _, ok := s.RandomKey(); ok {
		t.Fatalf("RandomKey() returned a lazily-expired key")
	}
}

func TestDeleteReportsPresence(t *testing.T) {
	s := New()
	if s.Delete("missing") {
		t.Fatalf("Delete(missing) = true, want false")
	}
	s.Set("k", resp.Int(1), time.Time{})
	if !s.Delete("k") {
		t.Fatalf("Delete(k) = false, want true")
	}
	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after delete", s.Size())
	}
}

func TestIndexInterleaving(t *testing.T) {
	s := New()
	ops := []struct {
		del bool
		key string
	}{
		{false, "a"}, {false, "b"}, {false, "c"},
		{true, "b"},
		{false, "d"},
		{true, "a"}, {true, "c"}, {true, "d"},
		{false, "e"},
	}
	for _, op := range ops {
		if op.del {
			s.Delete(op.key)
		} else {
			s.Set(op.key, resp.BulkFromString(op.key), time.Time{})
		}
		if s.index.Len() != len(s.data) {
			t.Fatalf("after op %+v: index.Len()=%d != len(data)=%d", op, s.index.Len(), len(s.data))
		}
		for k := range s.data {
			if !s.index.Contains(k) {
				t.Fatalf("after op %+v: index missing live key %q", op, k)
			}
		}
	}
}

func TestRandomKeyDistributionIsPlausible(t *testing.T) {
	s := New()
	for _, k := range []string{"a", "b", "c", "d"} {
		s.Set(k, resp.BulkFromString(k), time.Time{})
	}
	counts := make(map[string]int)
	const samples = 4000
	for i := 0; i < samples; i++ {
		k, ok := s.RandomKey()
		if !ok {
			t.Fatalf("RandomKey() reported empty store unexpectedly")
		}
		counts[k]++
	}
	for k, c := range counts {
		frac := float64(c) / samples
		if frac < 0.15 || frac > 0.35 {
			t.Fatalf("key %q sampled %d/%d times (%.2f), not roughly uniform over 4 keys", k, c, samples, frac)
		}
	}
}
