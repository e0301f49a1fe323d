package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	"github.com/ivankudzin/storefront/internal/remote"
)

const (
	nsProducts  = "products"
	nsPending   = "pending"
	nsConfirmed = "confirmed"

	defaultTTL = 30 * time.Second
)

type Store interface {
	ListProducts(ctx context.Context, category *enums.Category) ([]remote.Product, error)
	GetProduct(ctx context.Context, name string) (remote.Product, error)
	ListPendingPurchases(ctx context.Context) ([]remote.PurchaseEntry, error)
	ListConfirmedPurchases(ctx context.Context) ([]remote.PurchaseEntry, error)
}

type Cache interface {
	Get(ctx context.Context, namespace, key string, out any) (int64, bool, error)
	Set(ctx context.Context, namespace string, generation int64, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, namespaces ...string) error
}

type VisibilityReader interface {
	HiddenIDs(ctx context.Context) (map[string]struct{}, error)
}

type Config struct {
	TTL time.Duration
}

// Service is the stale-bounded read layer over the remote store. Lists are
// cached per namespace for a short window and re-fetched after lifecycle
// mutations bump the namespace generation. List fetch failures degrade to
// an empty result so the UI shell stays usable on a flaky store.
type Service struct {
	store      Store
	cache      Cache
	visibility VisibilityReader
	ttl        time.Duration
	logger     *zap.Logger
}

func NewService(store Store, cache Cache, visibility VisibilityReader, cfg Config, logger *zap.Logger) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:      store,
		cache:      cache,
		visibility: visibility,
		ttl:        ttl,
		logger:     logger,
	}
}

func (s *Service) AllProducts(ctx context.Context) []remote.Product {
	return s.products(ctx, "all", func(ctx context.Context) ([]remote.Product, error) {
		return s.store.ListProducts(ctx, nil)
	})
}

func (s *Service) ProductsByCategory(ctx context.Context, category enums.Category) []remote.Product {
	return s.products(ctx, "cat:"+string(category), func(ctx context.Context) ([]remote.Product, error) {
		return s.store.ListProducts(ctx, &category)
	})
}

// Product serves a single record. Unlike list reads it propagates fetch
// errors: a caller asking for one product needs the real answer, not an
// availability-preserving blank.
func (s *Service) Product(ctx context.Context, name string) (remote.Product, error) {
	name = strings.TrimSpace(name)

	var cached remote.Product
	gen, ok, err := s.cache.Get(ctx, nsProducts, "item:"+name, &cached)
	if err != nil {
		s.logger.Warn("product cache read failed", zap.String("product", name), zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	product, err := s.store.GetProduct(ctx, name)
	if err != nil {
		return remote.Product{}, err
	}
	s.put(ctx, nsProducts, gen, "item:"+name, product)
	return product, nil
}

// PendingPurchases returns the admin queue with visibility-suppressed ids
// filtered out. Filtering happens on the way out, not at cache-fill time,
// so clearing the override set unhides entries without a refetch.
func (s *Service) PendingPurchases(ctx context.Context) []remote.PurchaseEntry {
	entries := s.purchases(ctx, nsPending, s.store.ListPendingPurchases)

	hidden, err := s.visibility.HiddenIDs(ctx)
	if err != nil {
		s.logger.Warn("hidden id lookup failed, serving unfiltered queue", zap.Error(err))
		return entries
	}
	if len(hidden) == 0 {
		return entries
	}

	visible := make([]remote.PurchaseEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := hidden[strconv.FormatInt(entry.ID, 10)]; ok {
			continue
		}
		visible = append(visible, entry)
	}
	return visible
}

func (s *Service) ConfirmedPurchases(ctx context.Context) []remote.PurchaseEntry {
	return s.purchases(ctx, nsConfirmed, s.store.ListConfirmedPurchases)
}

func (s *Service) InvalidateProducts(ctx context.Context) error {
	return s.cache.Invalidate(ctx, nsProducts)
}

func (s *Service) InvalidatePending(ctx context.Context) error {
	return s.cache.Invalidate(ctx, nsPending)
}

func (s *Service) InvalidateConfirmed(ctx context.Context) error {
	return s.cache.Invalidate(ctx, nsConfirmed)
}

func (s *Service) products(ctx context.Context, key string, fetch func(context.Context) ([]remote.Product, error)) []remote.Product {
	var cached []remote.Product
	gen, ok, err := s.cache.Get(ctx, nsProducts, key, &cached)
	if err != nil {
		s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		return cached
	}

	products, err := fetch(ctx)
	if err != nil {
		s.logger.Warn("product list fetch failed, serving empty list", zap.String("key", key), zap.Error(err))
		return []remote.Product{}
	}
	if products == nil {
		products = []remote.Product{}
	}

	s.put(ctx, nsProducts, gen, key, products)
	return products
}

func (s *Service) purchases(ctx context.Context, namespace string, fetch func(context.Context) ([]remote.PurchaseEntry, error)) []remote.PurchaseEntry {
	var cached []remote.PurchaseEntry
	gen, ok, err := s.cache.Get(ctx, namespace, "list", &cached)
	if err != nil {
		s.logger.Warn("purchase cache read failed", zap.String("namespace", namespace), zap.Error(err))
	}
	if ok {
		return cached
	}

	entries, err := fetch(ctx)
	if err != nil {
		s.logger.Warn("purchase list fetch failed, serving empty list", zap.String("namespace", namespace), zap.Error(err))
		return []remote.PurchaseEntry{}
	}
	if entries == nil {
		entries = []remote.PurchaseEntry{}
	}

	s.put(ctx, namespace, gen, "list", entries)
	return entries
}

// put writes under the generation observed before the fetch started; if a
// mutation invalidated the namespace meanwhile, the write lands in a dead
// generation and the next read fetches fresh state.
func (s *Service) put(ctx context.Context, namespace string, generation int64, key string, value any) {
	if err := s.cache.Set(ctx, namespace, generation, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	}
}
