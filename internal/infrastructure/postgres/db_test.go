package postgres

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewPoolInvalidURL(t *testing.T) {
	if _, err := NewPool(context.Background(), "not-a-url", 1, 0, zerolog.Nop()); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolPingFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancelled context makes the ping retry loop bail out immediately.
	_, err := NewPool(ctx, "postgres://invalid:5432/db", 1, 0, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}
