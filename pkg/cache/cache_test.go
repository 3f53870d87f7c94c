package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "layout:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit || string(data) != "payload" {
		t.Errorf("Get = %q, %v; want payload, true", data, hit)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("entry should miss after delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	if err := c.Set(ctx, "layout:ttl", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:ttl"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCachePurgeAndSize(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	c := fc.(*FileCache)

	for _, key := range []string{"layout:a", "layout:b", "artifact:c"} {
		if err := c.Set(ctx, key, []byte("data"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	count, bytes, err := c.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if count != 3 || bytes == 0 {
		t.Errorf("Size = %d entries, %d bytes; want 3 entries", count, bytes)
	}

	if err := c.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	count, _, err = c.Size()
	if err != nil {
		t.Fatalf("Size after purge failed: %v", err)
	}
	if count != 0 {
		t.Errorf("entries after purge = %d, want 0", count)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.WorldKey("midgaard", "abc123"); got != "world:midgaard:abc123" {
		t.Errorf("WorldKey unexpected: %s", got)
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Algorithm: "grid", ConfigHash: "c1"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Algorithm: "force", ConfigHash: "c1"})
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Algorithm: "grid", ConfigHash: "c2"})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("different layout options should produce different keys")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("different artifact formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "user:123:")

	if got := scoped.WorldKey("midgaard", "abc"); got != "user:123:world:midgaard:abc" {
		t.Errorf("ScopedKeyer WorldKey unexpected: %s", got)
	}

	lk := scoped.LayoutKey("hash", LayoutKeyOpts{Algorithm: "grid"})
	if len(lk) < 9 || lk[:9] != "user:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.WorldKey("w", "h"); got != "prefix:world:w:h" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("first-try success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
