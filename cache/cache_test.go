package cache

import (
	"context"
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()
	hash := ProfileHash([]byte(`{"name":"Ada"}`))

	if err := s.Put(ctx, "fp-email", "Email", "ada@example.com", hash); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, ok, err := s.Get(ctx, "fp-email", hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || v != "ada@example.com" {
		t.Errorf("Get = (%q, %v), want hit with stored value", v, ok)
	}
}

func TestGetMissOnUnknownFingerprint(t *testing.T) {
	s := OpenMemory(t)
	_, ok, err := s.Get(context.Background(), "never-stored", "h")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("unknown fingerprint should miss")
	}
}

func TestGetEvictsExpiredEntry(t *testing.T) {
	s := OpenMemory(t, WithTTL(time.Hour))
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if err := s.Put(ctx, "fp", "Label", "v", "h"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok, _ := s.Get(ctx, "fp", "h"); ok {
		t.Error("entry past its TTL should miss")
	}

	// The expired row must be gone, not just masked.
	entries, _, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 0 {
		t.Errorf("entries = %d, want 0 after self-eviction", entries)
	}
}

func TestGetMissesOnProfileChange(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	oldHash := ProfileHash([]byte(`{"phone":"111"}`))
	newHash := ProfileHash([]byte(`{"phone":"222"}`))
	if err := s.Put(ctx, "fp-phone", "Phone", "111", oldHash); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "fp-phone", newHash); ok {
		t.Error("entry from an older profile should miss")
	}
}

func TestInvalidateProfile(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	for i, fp := range []string{"a", "b", "c"} {
		hash := "old"
		if i == 2 {
			hash = "current"
		}
		if err := s.Put(ctx, fp, "L", "v", hash); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	n, err := s.InvalidateProfile(ctx, "current")
	if err != nil {
		t.Fatalf("InvalidateProfile: %v", err)
	}
	if n != 2 {
		t.Errorf("invalidated = %d, want 2", n)
	}
	if _, ok, _ := s.Get(ctx, "c", "current"); !ok {
		t.Error("current-profile entry should survive invalidation")
	}
}

func TestPurgeExpired(t *testing.T) {
	s := OpenMemory(t, WithTTL(time.Hour))
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base.Add(-3 * time.Hour) }
	if err := s.Put(ctx, "stale", "L", "v", "h"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.now = func() time.Time { return base }
	if err := s.Put(ctx, "fresh", "L", "v", "h"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	n, err := s.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
}

func TestHitCountIncrements(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()
	if err := s.Put(ctx, "fp", "L", "v", "h"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, ok, err := s.Get(ctx, "fp", "h"); err != nil || !ok {
			t.Fatalf("Get #%d = (%v, %v)", i, ok, err)
		}
	}
	_, hits, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
}

func TestProfileHashDeterministic(t *testing.T) {
	a := ProfileHash([]byte(`{"a":1}`))
	b := ProfileHash([]byte(`{"a":1}`))
	c := ProfileHash([]byte(`{"a":2}`))
	if a != b {
		t.Error("same content should hash identically")
	}
	if a == c {
		t.Error("different content should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
