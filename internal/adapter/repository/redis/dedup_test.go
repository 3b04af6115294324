package redis

import (
	"context"
	"testing"
	"time"
)

func TestDedupGuard_SeenUnknownFingerprint(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	guard := NewDedupGuard(client)

	seen, err := guard.Seen(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Fatal("unknown fingerprint must not be seen")
	}
}

func TestDedupGuard_RememberThenSeen(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	guard := NewDedupGuard(client)
	ctx := context.Background()

	if err := guard.Remember(ctx, "abc123", 5*time.Minute); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}

	seen, err := guard.Seen(ctx, "abc123")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Fatal("remembered fingerprint must be seen")
	}

	if !mr.Exists("tx-dedup:abc123") {
		t.Fatal("expected prefixed key in store")
	}
}

func TestDedupGuard_WindowExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	guard := NewDedupGuard(client)
	ctx := context.Background()

	if err := guard.Remember(ctx, "abc123", 5*time.Minute); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	seen, err := guard.Seen(ctx, "abc123")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Fatal("fingerprint must expire with its window")
	}
}
