package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/remote"
)

// Catalog is the read surface the job keeps warm. Each call fills the
// namespace cache if the previous window expired.
type Catalog interface {
	AllProducts(ctx context.Context) []remote.Product
	PendingPurchases(ctx context.Context) []remote.PurchaseEntry
	ConfirmedPurchases(ctx context.Context) []remote.PurchaseEntry
}

// Job periodically touches the cached lists so interactive reads mostly hit
// a warm cache instead of paying the remote round trip.
type Job struct {
	catalog  Catalog
	interval time.Duration
	logger   *zap.Logger
}

func New(catalog Catalog, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		catalog:  catalog,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) Run(ctx context.Context) {
	if j.catalog == nil {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Job) RunOnce(ctx context.Context) {
	if j.catalog == nil {
		return
	}

	products := j.catalog.AllProducts(ctx)
	pending := j.catalog.PendingPurchases(ctx)
	confirmed := j.catalog.ConfirmedPurchases(ctx)

	j.logger.Debug("catalog refresh pass",
		zap.Int("products", len(products)),
		zap.Int("pending", len(pending)),
		zap.Int("confirmed", len(confirmed)),
	)
}
