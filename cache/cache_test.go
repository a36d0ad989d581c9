package cache

import (
	"context"
	"testing"
	"time"
)

func TestNopNeverHits(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	if err := c.SetJSON(ctx, "filters", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var dst map[string]int
	found, err := c.GetJSON(ctx, "filters", &dst)
	if err != nil || found {
		t.Errorf("Expected a miss, got found=%v err=%v", found, err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("exports", "summary", "abc"); got != "exports:summary:abc" {
		t.Errorf("Expected exports:summary:abc, got %s", got)
	}
}

func TestNewRedisFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := NewRedis(ctx, "127.0.0.1:1", "", 0, nil); err == nil {
		t.Error("Expected connection error, got nil")
	}
}
