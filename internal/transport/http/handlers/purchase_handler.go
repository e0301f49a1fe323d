package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
	lifecyclesvc "github.com/ivankudzin/storefront/internal/services/lifecycle"
	"github.com/ivankudzin/storefront/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/storefront/internal/transport/http/errors"
)

type PurchaseHandler struct {
	lifecycle *lifecyclesvc.Service
}

func NewPurchaseHandler(lifecycle *lifecyclesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{lifecycle: lifecycle}
}

func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.lifecycle == nil {
		writeInternal(w, "LIFECYCLE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	var req dto.BuyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	id, err := h.lifecycle.Buy(r.Context(), identity.Username, enums.Role(identity.Role), req.ProductName)
	if err != nil {
		handleLifecycleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BuyResponse{PurchaseID: id})
}

func (h *PurchaseHandler) Accept(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.lifecycle == nil {
		writeInternal(w, "LIFECYCLE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	id, ok := purchaseID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase id")
		return
	}

	if err := h.lifecycle.Accept(r.Context(), identity.Username, id); err != nil {
		handleLifecycleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AcceptResponse{OK: true})
}

// Decline answers 200 even when the remote decline fails: the entry is
// already hidden locally and the response carries a notice instead of an
// error status.
func (h *PurchaseHandler) Decline(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.lifecycle == nil {
		writeInternal(w, "LIFECYCLE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	id, ok := purchaseID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase id")
		return
	}

	result, err := h.lifecycle.Decline(r.Context(), identity.Username, id)
	if err != nil {
		handleLifecycleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeclineResponse{
		Hidden:       result.Hidden,
		RemoteFailed: result.RemoteFailed,
		Notice:       result.Notice,
	})
}

func (h *PurchaseHandler) DeleteConfirmed(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.lifecycle == nil {
		writeInternal(w, "LIFECYCLE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	id, ok := purchaseID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase id")
		return
	}

	result, err := h.lifecycle.DeleteConfirmed(r.Context(), identity.Username, id)
	if err != nil {
		handleLifecycleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteConfirmedResponse{
		OK:          true,
		AlreadyGone: result.AlreadyGone,
	})
}

func (h *PurchaseHandler) ClearHidden(w http.ResponseWriter, r *http.Request) {
	if h.lifecycle == nil {
		writeInternal(w, "LIFECYCLE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	if err := h.lifecycle.ClearHidden(r.Context()); err != nil {
		handleLifecycleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClearHiddenResponse{OK: true})
}

// handleLifecycleError keeps the store's own message in the payload so the
// UI can show the same text the store produced.
func handleLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecyclesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, lifecyclesvc.ErrUnauthorized):
		writeForbidden(w, "FORBIDDEN", err.Error())
	case errors.Is(err, lifecyclesvc.ErrProductUnavailable):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "PRODUCT_UNAVAILABLE",
			Message: err.Error(),
		})
	case errors.Is(err, lifecyclesvc.ErrPurchaseNotFound):
		writeNotFound(w, "PURCHASE_NOT_FOUND", err.Error())
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func purchaseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
