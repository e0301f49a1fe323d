package refresh

import (
	"context"
	"testing"

	"github.com/ivankudzin/storefront/internal/remote"
)

type countingCatalog struct {
	products  int
	pending   int
	confirmed int
}

func (c *countingCatalog) AllProducts(context.Context) []remote.Product {
	c.products++
	return nil
}

func (c *countingCatalog) PendingPurchases(context.Context) []remote.PurchaseEntry {
	c.pending++
	return nil
}

func (c *countingCatalog) ConfirmedPurchases(context.Context) []remote.PurchaseEntry {
	c.confirmed++
	return nil
}

func TestRunOnceTouchesEveryList(t *testing.T) {
	catalog := &countingCatalog{}
	job := New(catalog, 0, nil)

	job.RunOnce(context.Background())

	if catalog.products != 1 || catalog.pending != 1 || catalog.confirmed != 1 {
		t.Fatalf("expected one pass over every list, got %+v", catalog)
	}
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	catalog := &countingCatalog{}
	job := New(catalog, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	<-done
	if catalog.products < 1 {
		t.Fatal("expected at least the initial pass")
	}
}
