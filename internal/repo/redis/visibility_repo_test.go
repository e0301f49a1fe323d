package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestVisibilityHideIsDurableAcrossInstances(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()

	repo := NewVisibilityRepo(client)
	if err := repo.Hide(ctx, "8"); err != nil {
		t.Fatalf("hide: %v", err)
	}

	// A fresh repo over the same backing store must see the hide, the same
	// way a reloaded client session would.
	reloaded := NewVisibilityRepo(client)
	hidden, err := reloaded.IsHidden(ctx, "8")
	if err != nil {
		t.Fatalf("is hidden: %v", err)
	}
	if !hidden {
		t.Fatal("expected id 8 to stay hidden after reload")
	}

	hidden, err = reloaded.IsHidden(ctx, "9")
	if err != nil {
		t.Fatalf("is hidden: %v", err)
	}
	if hidden {
		t.Fatal("id 9 was never hidden")
	}
}

func TestVisibilityClearUnhidesEverything(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	repo := NewVisibilityRepo(client)

	for _, id := range []string{"1", "2", "9223372036854775807"} {
		if err := repo.Hide(ctx, id); err != nil {
			t.Fatalf("hide %s: %v", id, err)
		}
	}

	ids, err := repo.HiddenIDs(ctx)
	if err != nil {
		t.Fatalf("hidden ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("unexpected hidden set size: %d", len(ids))
	}
	if _, ok := ids["9223372036854775807"]; !ok {
		t.Fatal("64-bit-range id lost from hidden set")
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	ids, err = repo.HiddenIDs(ctx)
	if err != nil {
		t.Fatalf("hidden ids after clear: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty hidden set, got %d entries", len(ids))
	}
}

func TestVisibilityRejectsEmptyID(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewVisibilityRepo(client)
	if err := repo.Hide(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank id")
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
