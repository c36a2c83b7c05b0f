package service

import (
	"context"

	"github.com/pankajredekar/stockroom/internal/cache"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
)

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Categories int64
	Products   int
}

// Seeder fills an empty store with the default categories and sample products.
type Seeder struct {
	categories CategoryStore
	products   SeedStore
	cache      cache.StatsCache
	logger     logging.Logger
}

func NewSeeder(categories CategoryStore, products SeedStore, c cache.StatsCache, logger logging.Logger) *Seeder {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &Seeder{categories: categories, products: products, cache: c, logger: logger}
}

// Seed inserts missing default categories, then the sample products when the
// products table is empty. It is safe to run repeatedly. The samples go in
// as one batch, so a failed run leaves the table empty for the next one.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	const op = "seed"
	var res SeedResult

	added, err := s.categories.CreateMissing(ctx, model.DefaultCategories())
	if err != nil {
		return res, classify(op, "", err)
	}
	res.Categories = added
	defer func() {
		if res.Categories > 0 || res.Products > 0 {
			s.invalidate(ctx)
		}
	}()

	count, err := s.products.Count(ctx)
	if err != nil {
		return res, classify(op, "", err)
	}
	if count > 0 {
		s.logger.Debug("products present, sample data skipped", map[string]interface{}{"count": count})
		return res, nil
	}

	samples := model.SampleProducts()
	if err := s.products.CreateBatch(ctx, samples); err != nil {
		return res, classify(op, "", err)
	}
	res.Products = len(samples)
	s.logger.Info("store seeded", map[string]interface{}{"categories": res.Categories, "products": res.Products})
	return res, nil
}

func (s *Seeder) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", map[string]interface{}{"error": err})
	}
}
