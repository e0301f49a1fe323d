package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
)

func TestSessionCreateGetAndRotate(t *testing.T) {
	_, client := newMiniRedisClient(t)
	repo := NewSessionRepo(client)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	session := authsvc.SessionRecord{
		SID:       "sid-1",
		Username:  "steven",
		Role:      "user",
		ExpiresAt: expires,
	}
	if err := repo.Create(ctx, session, "refresh-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Username != "steven" || got.Role != "user" || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected session: %+v", got)
	}

	byToken, err := repo.GetByRefreshToken(ctx, "refresh-1")
	if err != nil {
		t.Fatalf("get by refresh token: %v", err)
	}
	if byToken.SID != "sid-1" {
		t.Fatalf("unexpected sid via refresh token: %q", byToken.SID)
	}

	newExpires := expires.Add(time.Hour)
	if err := repo.RotateRefresh(ctx, "sid-1", "refresh-1", "refresh-2", newExpires); err != nil {
		t.Fatalf("rotate refresh: %v", err)
	}

	if _, err := repo.GetByRefreshToken(ctx, "refresh-1"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("old refresh token must be dead after rotation, got %v", err)
	}
	if _, err := repo.GetByRefreshToken(ctx, "refresh-2"); err != nil {
		t.Fatalf("new refresh token must resolve: %v", err)
	}
}

func TestDeleteAllForUserRemovesEverySession(t *testing.T) {
	_, client := newMiniRedisClient(t)
	repo := NewSessionRepo(client)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	for i, sid := range []string{"sid-a", "sid-b"} {
		session := authsvc.SessionRecord{
			SID:       sid,
			Username:  "omar",
			Role:      "admin",
			ExpiresAt: expires,
		}
		if err := repo.Create(ctx, session, "refresh-"+sid); err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
	}

	if err := repo.DeleteAllForUser(ctx, "omar"); err != nil {
		t.Fatalf("delete all for user: %v", err)
	}

	for _, sid := range []string{"sid-a", "sid-b"} {
		if _, err := repo.GetSession(ctx, sid); !errors.Is(err, authsvc.ErrSessionNotFound) {
			t.Fatalf("session %s must be gone, got %v", sid, err)
		}
	}
	if _, err := repo.GetByRefreshToken(ctx, "refresh-sid-a"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("refresh token must be gone, got %v", err)
	}
}
