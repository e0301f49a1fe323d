package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivankudzin/storefront/internal/domain/enums"
)

type stubSessionStore struct {
	sessions map[string]SessionRecord
	refresh  map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		sessions: map[string]SessionRecord{},
		refresh:  map[string]string{},
	}
}

func (s *stubSessionStore) Create(_ context.Context, session SessionRecord, refreshToken string) error {
	s.sessions[session.SID] = session
	s.refresh[refreshToken] = session.SID
	return nil
}

func (s *stubSessionStore) GetSession(_ context.Context, sid string) (SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return SessionRecord{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *stubSessionStore) GetByRefreshToken(_ context.Context, refreshToken string) (SessionRecord, error) {
	sid, ok := s.refresh[refreshToken]
	if !ok {
		return SessionRecord{}, ErrRefreshNotFound
	}
	return s.sessions[sid], nil
}

func (s *stubSessionStore) RotateRefresh(_ context.Context, sid, oldToken, newToken string, expiresAt time.Time) error {
	if _, ok := s.refresh[oldToken]; !ok {
		return ErrRefreshNotFound
	}
	delete(s.refresh, oldToken)
	s.refresh[newToken] = sid
	session := s.sessions[sid]
	session.ExpiresAt = expiresAt
	s.sessions[sid] = session
	return nil
}

func (s *stubSessionStore) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

func (s *stubSessionStore) DeleteAllForUser(_ context.Context, username string) error {
	for sid, session := range s.sessions {
		if session.Username == username {
			delete(s.sessions, sid)
		}
	}
	return nil
}

type stubRoleResolver struct {
	roles map[string]enums.Role
}

func (s *stubRoleResolver) ResolveRole(_ context.Context, username string) (enums.Role, error) {
	role, ok := s.roles[username]
	if !ok {
		return enums.RoleGuest, nil
	}
	return role, nil
}

func newTestService() (*Service, *stubSessionStore) {
	store := newStubSessionStore()
	resolver := &stubRoleResolver{roles: map[string]enums.Role{
		"aurelio": enums.RoleUser,
		"steven":  enums.RoleAdmin,
	}}
	svc := NewService(NewJWTManager("test-secret", time.Minute), store, resolver, Config{
		RefreshTTL:   48 * time.Hour,
		AllowedUsers: []string{"aurelio", "steven"},
	})
	return svc, store
}

func TestLoginIssuesValidatableToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Login(ctx, "steven")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Me.Role != string(enums.RoleAdmin) {
		t.Fatalf("unexpected role: %q", res.Me.Role)
	}

	claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "steven" || claims.Role != string(enums.RoleAdmin) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsUnknownUsername(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Login(context.Background(), "mallory"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateFailsAfterLogout(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Login(ctx, "aurelio")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, res.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	res, err := svc.Login(ctx, "aurelio")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == res.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if _, ok := store.refresh[res.RefreshToken]; ok {
		t.Fatal("old refresh token still valid")
	}

	if _, err := svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for reused token, got %v", err)
	}
}
