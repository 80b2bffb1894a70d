package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type profile struct {
	Name string `json:"name"`
}

func TestNilCacheFallsThrough(t *testing.T) {
	var c *Cache
	calls := 0
	load := func(ctx context.Context) (*profile, error) {
		calls++
		return &profile{Name: "ada"}, nil
	}

	for i := 0; i < 2; i++ {
		p, err := GetOrLoadJSON(c, context.Background(), "user:1", time.Minute, load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "ada" {
			t.Fatalf("got %q", p.Name)
		}
	}
	if calls != 2 {
		t.Fatalf("expected loader on every call, got %d", calls)
	}

	c.Invalidate(context.Background(), "user:1")
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("nil ping: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestNilCachePropagatesLoadError(t *testing.T) {
	var c *Cache
	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
