package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
	lifecyclesvc "github.com/ivankudzin/storefront/internal/services/lifecycle"
)

type purchaseStoreStub struct {
	buyID      int64
	buyErr     error
	declineErr error
}

func (s *purchaseStoreStub) CreatePurchase(context.Context, string, string) (int64, error) {
	return s.buyID, s.buyErr
}

func (s *purchaseStoreStub) AcceptPurchase(context.Context, string, int64) error { return nil }

func (s *purchaseStoreStub) DeclinePurchase(context.Context, string, int64) error {
	return s.declineErr
}

func (s *purchaseStoreStub) DeleteConfirmedPurchase(context.Context, string, int64) error {
	return nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateProducts(context.Context) error  { return nil }
func (noopInvalidator) InvalidatePending(context.Context) error   { return nil }
func (noopInvalidator) InvalidateConfirmed(context.Context) error { return nil }

type visibilityStub struct {
	hidden []string
}

func (v *visibilityStub) Hide(_ context.Context, id string) error {
	v.hidden = append(v.hidden, id)
	return nil
}

func (v *visibilityStub) Clear(context.Context) error {
	v.hidden = nil
	return nil
}

func newPurchaseHandler(store lifecyclesvc.Store, visibility lifecyclesvc.VisibilityStore) *PurchaseHandler {
	svc := lifecyclesvc.NewService(lifecyclesvc.Dependencies{
		Store:      store,
		Caches:     noopInvalidator{},
		Visibility: visibility,
	}, lifecyclesvc.Config{})
	return NewPurchaseHandler(svc)
}

func asUser(req *http.Request, username, role string) *http.Request {
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		Username: username,
		SID:      "sid-" + username,
		Role:     role,
	}))
}

func withPurchaseID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestBuyReturnsServerAssignedID(t *testing.T) {
	h := newPurchaseHandler(&purchaseStoreStub{buyID: 7}, &visibilityStub{})

	body, _ := json.Marshal(map[string]string{"product_name": "Poster"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body)), "steven", "user")

	rr := httptest.NewRecorder()
	h.Buy(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		PurchaseID int64 `json:"purchase_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.PurchaseID != 7 {
		t.Fatalf("unexpected purchase id: got %d want 7", payload.PurchaseID)
	}
}

func TestBuyRejectsGuests(t *testing.T) {
	h := newPurchaseHandler(&purchaseStoreStub{buyID: 7}, &visibilityStub{})

	body, _ := json.Marshal(map[string]string{"product_name": "Poster"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body)), "visitor", "guest")

	rr := httptest.NewRecorder()
	h.Buy(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestBuyWithoutIdentityIsUnauthorized(t *testing.T) {
	h := newPurchaseHandler(&purchaseStoreStub{buyID: 7}, &visibilityStub{})

	body, _ := json.Marshal(map[string]string{"product_name": "Poster"})
	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))

	rr := httptest.NewRecorder()
	h.Buy(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestDeclineRemoteFailureStillAnswersOK(t *testing.T) {
	visibility := &visibilityStub{}
	h := newPurchaseHandler(&purchaseStoreStub{declineErr: errors.New("store timeout")}, visibility)

	req := asUser(httptest.NewRequest(http.MethodPost, "/admin/purchases/42/decline", nil), "aurelio", "admin")
	req = withPurchaseID(req, "42")

	rr := httptest.NewRecorder()
	h.Decline(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		Hidden       bool   `json:"hidden"`
		RemoteFailed bool   `json:"remote_failed"`
		Notice       string `json:"notice"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Hidden || !payload.RemoteFailed {
		t.Fatalf("expected hidden and remote_failed, got %+v", payload)
	}
	if payload.Notice == "" {
		t.Fatal("expected a user-facing notice")
	}
	if len(visibility.hidden) != 1 || visibility.hidden[0] != "42" {
		t.Fatalf("expected id 42 hidden, got %v", visibility.hidden)
	}
}

func TestAcceptRejectsMalformedID(t *testing.T) {
	h := newPurchaseHandler(&purchaseStoreStub{}, &visibilityStub{})

	req := asUser(httptest.NewRequest(http.MethodPost, "/admin/purchases/abc/accept", nil), "aurelio", "admin")
	req = withPurchaseID(req, "abc")

	rr := httptest.NewRecorder()
	h.Accept(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
