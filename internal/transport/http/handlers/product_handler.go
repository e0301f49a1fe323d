package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
	productsvc "github.com/ivankudzin/storefront/internal/services/products"
	"github.com/ivankudzin/storefront/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/storefront/internal/transport/http/errors"
)

type ProductHandler struct {
	products *productsvc.Service
}

func NewProductHandler(products *productsvc.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.products == nil {
		writeInternal(w, "PRODUCT_SERVICE_UNAVAILABLE", "product service is unavailable")
		return
	}

	var req dto.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "image is not valid base64")
			return
		}
		image = decoded
	}

	err := h.products.Add(r.Context(), identity.Username, productsvc.AddInput{
		Name:             req.Name,
		Price:            req.Price,
		Category:         enums.Category(req.Category),
		Image:            image,
		ImageContentType: req.ImageContentType,
	})
	if err != nil {
		handleProductError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProductCreateResponse{OK: true})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.products == nil {
		writeInternal(w, "PRODUCT_SERVICE_UNAVAILABLE", "product service is unavailable")
		return
	}

	name := chi.URLParam(r, "name")
	if name == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "product name is required")
		return
	}

	if err := h.products.Delete(r.Context(), identity.Username, name); err != nil {
		handleProductError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProductDeleteResponse{OK: true})
}

func handleProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, productsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product payload")
	case errors.Is(err, productsvc.ErrImageTooLarge):
		writeBadRequest(w, "IMAGE_TOO_LARGE", "product image exceeds the size limit")
	case errors.Is(err, productsvc.ErrUnauthorized):
		writeForbidden(w, "FORBIDDEN", err.Error())
	case errors.Is(err, productsvc.ErrProductNotFound):
		writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
