package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	"github.com/ivankudzin/storefront/internal/remote"
	catalogsvc "github.com/ivankudzin/storefront/internal/services/catalog"
)

type catalogStoreStub struct {
	products []remote.Product
	pending  []remote.PurchaseEntry
}

func (s *catalogStoreStub) ListProducts(_ context.Context, category *enums.Category) ([]remote.Product, error) {
	if category == nil {
		return s.products, nil
	}
	var out []remote.Product
	for _, product := range s.products {
		if product.Category == *category {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *catalogStoreStub) GetProduct(_ context.Context, name string) (remote.Product, error) {
	for _, product := range s.products {
		if product.Name == name {
			return product, nil
		}
	}
	return remote.Product{}, remote.ErrNotFound
}

func (s *catalogStoreStub) ListPendingPurchases(context.Context) ([]remote.PurchaseEntry, error) {
	return s.pending, nil
}

func (s *catalogStoreStub) ListConfirmedPurchases(context.Context) ([]remote.PurchaseEntry, error) {
	return nil, nil
}

// passthroughCache never hits so every read goes to the stub store.
type passthroughCache struct{}

func (passthroughCache) Get(context.Context, string, string, any) (int64, bool, error) {
	return 0, false, nil
}

func (passthroughCache) Set(context.Context, string, int64, string, any, time.Duration) error {
	return nil
}

func (passthroughCache) Invalidate(context.Context, ...string) error { return nil }

type hiddenIDsStub map[string]struct{}

func (v hiddenIDsStub) HiddenIDs(context.Context) (map[string]struct{}, error) {
	return v, nil
}

func newCatalogHandler(store catalogsvc.Store, hidden hiddenIDsStub) *CatalogHandler {
	svc := catalogsvc.NewService(store, passthroughCache{}, hidden, catalogsvc.Config{}, nil)
	return NewCatalogHandler(svc)
}

func withProductName(req *http.Request, name string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", name)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestProductsRejectsUnknownCategory(t *testing.T) {
	h := newCatalogHandler(&catalogStoreStub{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?category=weird", nil)
	rr := httptest.NewRecorder()
	h.Products(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProductsFiltersByCategory(t *testing.T) {
	h := newCatalogHandler(&catalogStoreStub{products: []remote.Product{
		{Name: "Poster", Category: enums.CategoryStandard},
		{Name: "Sticker", Category: enums.CategoryFree},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?category=free", nil)
	rr := httptest.NewRecorder()
	h.Products(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Products) != 1 || payload.Products[0].Name != "Sticker" {
		t.Fatalf("unexpected products: %+v", payload.Products)
	}
}

func TestPendingOmitsHiddenEntries(t *testing.T) {
	h := newCatalogHandler(&catalogStoreStub{pending: []remote.PurchaseEntry{
		{ID: 1, Purchase: remote.Purchase{Username: "steven", ProductName: "Poster"}},
		{ID: 2, Purchase: remote.Purchase{Username: "omar", ProductName: "Mug"}},
	}}, hiddenIDsStub{"2": {}})

	req := httptest.NewRequest(http.MethodGet, "/admin/purchases/pending", nil)
	rr := httptest.NewRecorder()
	h.Pending(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Purchases []struct {
			ID int64 `json:"id"`
		} `json:"purchases"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Purchases) != 1 || payload.Purchases[0].ID != 1 {
		t.Fatalf("hidden entry leaked: %+v", payload.Purchases)
	}
}

func TestProductNotFound(t *testing.T) {
	h := newCatalogHandler(&catalogStoreStub{}, nil)

	req := withProductName(httptest.NewRequest(http.MethodGet, "/products/Ghost", nil), "Ghost")
	rr := httptest.NewRecorder()
	h.Product(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}
