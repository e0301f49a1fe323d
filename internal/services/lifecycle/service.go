package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	"github.com/ivankudzin/storefront/internal/remote"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrPurchaseNotFound   = errors.New("purchase not found")
)

type Store interface {
	CreatePurchase(ctx context.Context, productName, requester string) (int64, error)
	AcceptPurchase(ctx context.Context, requester string, id int64) error
	DeclinePurchase(ctx context.Context, requester string, id int64) error
	DeleteConfirmedPurchase(ctx context.Context, requester string, id int64) error
}

type Invalidator interface {
	InvalidateProducts(ctx context.Context) error
	InvalidatePending(ctx context.Context) error
	InvalidateConfirmed(ctx context.Context) error
}

type VisibilityStore interface {
	Hide(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type Config struct {
	// SettleDelay is waited between a remote mutation and the cache
	// invalidation that follows it, to absorb the store's eventual
	// consistency. A heuristic, not a correctness guarantee.
	SettleDelay time.Duration
}

type Dependencies struct {
	Store      Store
	Caches     Invalidator
	Visibility VisibilityStore
	Logger     *zap.Logger
}

// Service owns the purchase-request state machine: pending on buy,
// confirmed on accept, removed on decline or delete-confirmed. Every
// mutation is followed by invalidation so reads converge to server truth,
// modulo ids suppressed by the visibility store.
type Service struct {
	store       Store
	caches      Invalidator
	visibility  VisibilityStore
	settleDelay time.Duration
	logger      *zap.Logger
}

type DeclineResult struct {
	Hidden       bool
	RemoteFailed bool
	Notice       string
}

type DeleteConfirmedResult struct {
	AlreadyGone bool
}

func NewService(deps Dependencies, cfg Config) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:       deps.Store,
		caches:      deps.Caches,
		visibility:  deps.Visibility,
		settleDelay: cfg.SettleDelay,
		logger:      logger,
	}
}

// Buy creates a pending purchase request for an available product and
// returns the server-assigned id. The price snapshot is taken by the store
// at creation time.
func (s *Service) Buy(ctx context.Context, username string, role enums.Role, productName string) (int64, error) {
	username = strings.TrimSpace(username)
	productName = strings.TrimSpace(productName)
	if username == "" || productName == "" {
		return 0, ErrValidation
	}
	if role != enums.RoleUser && role != enums.RoleAdmin {
		return 0, ErrUnauthorized
	}
	if s.store == nil || s.caches == nil {
		return 0, fmt.Errorf("lifecycle dependencies are not configured")
	}

	id, err := s.store.CreatePurchase(ctx, productName, username)
	if err != nil {
		switch {
		case errors.Is(err, remote.ErrProductUnavailable):
			return 0, fmt.Errorf("%w: %s", ErrProductUnavailable, remoteMessage(err))
		case errors.Is(err, remote.ErrUnauthorized):
			return 0, fmt.Errorf("%w: %s", ErrUnauthorized, remoteMessage(err))
		case errors.Is(err, remote.ErrNotFound):
			return 0, fmt.Errorf("%w: %s", ErrProductUnavailable, remoteMessage(err))
		default:
			return 0, fmt.Errorf("create purchase: %w", err)
		}
	}

	s.settle(ctx)
	s.invalidate(ctx, s.caches.InvalidateProducts, s.caches.InvalidatePending)
	return id, nil
}

// Accept confirms a pending request; the linked product flips to sold out
// on the store side as part of the same transition, so the post-accept
// refetch never observes a confirmed request with an available product.
func (s *Service) Accept(ctx context.Context, requester string, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.caches == nil {
		return fmt.Errorf("lifecycle dependencies are not configured")
	}

	if err := s.store.AcceptPurchase(ctx, requester, id); err != nil {
		switch {
		case errors.Is(err, remote.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrPurchaseNotFound, remoteMessage(err))
		case errors.Is(err, remote.ErrUnauthorized):
			return fmt.Errorf("%w: %s", ErrUnauthorized, remoteMessage(err))
		default:
			return fmt.Errorf("accept purchase: %w", err)
		}
	}

	s.settle(ctx)
	s.invalidate(ctx, s.caches.InvalidatePending, s.caches.InvalidateConfirmed, s.caches.InvalidateProducts)
	return nil
}

// Decline removes a pending request. The id is hidden locally before the
// remote call, and a remote failure does not roll the hide back: a record
// that could not be declined is more likely stale or malformed than worth
// re-exposing. The failure is reported in the result as a notice, never as
// an error.
func (s *Service) Decline(ctx context.Context, requester string, id int64) (DeclineResult, error) {
	if id <= 0 {
		return DeclineResult{}, ErrValidation
	}
	if s.store == nil || s.caches == nil || s.visibility == nil {
		return DeclineResult{}, fmt.Errorf("lifecycle dependencies are not configured")
	}

	result := DeclineResult{Hidden: true}
	if err := s.visibility.Hide(ctx, strconv.FormatInt(id, 10)); err != nil {
		result.Hidden = false
		s.logger.Warn("hide declined purchase locally failed", zap.Int64("purchase_id", id), zap.Error(err))
	}

	if err := s.store.DeclinePurchase(ctx, requester, id); err != nil {
		result.RemoteFailed = true
		result.Notice = remoteMessage(err)
		s.logger.Warn("remote decline failed, keeping purchase hidden",
			zap.Int64("purchase_id", id),
			zap.Error(err),
		)
	}

	s.settle(ctx)
	s.invalidate(ctx, s.caches.InvalidatePending)
	return result, nil
}

// DeleteConfirmed removes a confirmed request without touching the product
// status. A remote not-found is downgraded to success: the record is
// already effectively gone, so the second delete of a pair converges to the
// same state as the first.
func (s *Service) DeleteConfirmed(ctx context.Context, requester string, id int64) (DeleteConfirmedResult, error) {
	if id <= 0 {
		return DeleteConfirmedResult{}, ErrValidation
	}
	if s.store == nil || s.caches == nil {
		return DeleteConfirmedResult{}, fmt.Errorf("lifecycle dependencies are not configured")
	}

	result := DeleteConfirmedResult{}
	if err := s.store.DeleteConfirmedPurchase(ctx, requester, id); err != nil {
		switch {
		case errors.Is(err, remote.ErrNotFound):
			result.AlreadyGone = true
			s.logger.Info("confirmed purchase already gone", zap.Int64("purchase_id", id))
		case errors.Is(err, remote.ErrUnauthorized):
			return DeleteConfirmedResult{}, fmt.Errorf("%w: %s", ErrUnauthorized, remoteMessage(err))
		default:
			return DeleteConfirmedResult{}, fmt.Errorf("delete confirmed purchase: %w", err)
		}
	}

	s.settle(ctx)
	s.invalidate(ctx, s.caches.InvalidateConfirmed, s.caches.InvalidateProducts)
	return result, nil
}

// ClearHidden empties the visibility override set. This is the only way a
// previously hidden pending request becomes visible again.
func (s *Service) ClearHidden(ctx context.Context) error {
	if s.visibility == nil || s.caches == nil {
		return fmt.Errorf("lifecycle dependencies are not configured")
	}
	if err := s.visibility.Clear(ctx); err != nil {
		return fmt.Errorf("clear hidden purchases: %w", err)
	}
	s.invalidate(ctx, s.caches.InvalidatePending)
	return nil
}

// invalidate runs each invalidation and logs failures instead of
// propagating them: the mutation itself already succeeded, and a missed
// invalidation heals on the next TTL expiry or refresh pass.
func (s *Service) invalidate(ctx context.Context, fns ...func(context.Context) error) {
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
}

func (s *Service) settle(ctx context.Context) {
	if s.settleDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func remoteMessage(err error) string {
	var storeErr *remote.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Error()
	}
	return err.Error()
}
