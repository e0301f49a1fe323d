package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	"github.com/ivankudzin/storefront/internal/remote"
	catalogsvc "github.com/ivankudzin/storefront/internal/services/catalog"
	"github.com/ivankudzin/storefront/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/storefront/internal/transport/http/errors"
)

type CatalogHandler struct {
	catalog *catalogsvc.Service
}

func NewCatalogHandler(catalog *catalogsvc.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Products lists the catalog, optionally narrowed by ?category=. List reads
// never fail: on a cold cache plus store outage the response is an empty
// list, not an error.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	var products []remote.Product
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := enums.ParseCategory(raw)
		if !ok {
			writeBadRequest(w, "VALIDATION_ERROR", "unknown category")
			return
		}
		products = h.catalog.ProductsByCategory(r.Context(), category)
	} else {
		products = h.catalog.AllProducts(r.Context())
	}

	httperrors.Write(w, http.StatusOK, dto.ProductListResponse{Products: productResponses(products)})
}

func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	name := chi.URLParam(r, "name")
	if name == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "product name is required")
		return
	}

	product, err := h.catalog.Product(r.Context(), name)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		writeInternal(w, "STORE_ERROR", "failed to load product")
		return
	}

	httperrors.Write(w, http.StatusOK, productResponse(product))
}

func (h *CatalogHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	entries := h.catalog.PendingPurchases(r.Context())
	httperrors.Write(w, http.StatusOK, dto.PurchaseListResponse{Purchases: purchaseResponses(entries)})
}

func (h *CatalogHandler) Confirmed(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	entries := h.catalog.ConfirmedPurchases(r.Context())
	httperrors.Write(w, http.StatusOK, dto.PurchaseListResponse{Purchases: purchaseResponses(entries)})
}

func productResponse(product remote.Product) dto.ProductResponse {
	return dto.ProductResponse{
		Name:      product.Name,
		Price:     product.Price,
		Category:  string(product.Category),
		Status:    string(product.Status),
		ImageData: product.ImageData,
	}
}

func productResponses(products []remote.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, productResponse(product))
	}
	return out
}

func purchaseResponses(entries []remote.PurchaseEntry) []dto.PurchaseResponse {
	out := make([]dto.PurchaseResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.PurchaseResponse{
			ID:          entry.ID,
			Username:    entry.Username,
			ProductName: entry.ProductName,
			Price:       entry.Price,
			Confirmed:   entry.Confirmed,
		})
	}
	return out
}
