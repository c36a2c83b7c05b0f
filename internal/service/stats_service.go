package service

import (
	"context"

	"github.com/pankajredekar/stockroom/internal/cache"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	statsCacheKey    = "summary"
	topCategoryCount = 5
)

// Stats is the dashboard summary.
type Stats struct {
	TotalProducts int64                      `json:"total_products"`
	OutOfStock    int64                      `json:"out_of_stock"`
	LowStock      int64                      `json:"low_stock"`
	LowThreshold  int                        `json:"low_threshold"`
	StockValue    decimal.Decimal            `json:"stock_value"`
	TopCategories []repository.CategoryCount `json:"top_categories"`
}

// StatsService computes statistics, going through the cache first.
type StatsService struct {
	store        StatsStore
	cache        cache.StatsCache
	logger       logging.Logger
	lowThreshold int
}

func NewStatsService(store StatsStore, c cache.StatsCache, logger logging.Logger, lowThreshold int) *StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &StatsService{store: store, cache: c, logger: logger, lowThreshold: lowThreshold}
}

// LowThreshold is the highest stock counted as low.
func (s *StatsService) LowThreshold() int {
	return s.lowThreshold
}

// Summary returns the statistics. Cache failures are logged and the store is
// queried instead.
func (s *StatsService) Summary(ctx context.Context) (*Stats, error) {
	var cached Stats
	hit, err := s.cache.Get(ctx, statsCacheKey, &cached)
	if err != nil {
		s.logger.Warn("stats cache read failed", map[string]interface{}{"error": err})
	}
	if hit {
		return &cached, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, classify("stats.Summary", "", err)
	}
	if err := s.cache.Set(ctx, statsCacheKey, stats); err != nil {
		s.logger.Warn("stats cache write failed", map[string]interface{}{"error": err})
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*Stats, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	out, low, err := s.store.StockBands(ctx, s.lowThreshold)
	if err != nil {
		return nil, err
	}
	value, err := s.store.StockValue(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.store.CategoryBreakdown(ctx, topCategoryCount)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []repository.CategoryCount{}
	}
	return &Stats{
		TotalProducts: total,
		OutOfStock:    out,
		LowStock:      low,
		LowThreshold:  s.lowThreshold,
		StockValue:    value.Round(2),
		TopCategories: top,
	}, nil
}

// OutOfStock lists products with no stock left, by name.
func (s *StatsService) OutOfStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.List(ctx, repository.ProductFilter{Stock: model.BandOut, Sort: "name"})
	return products, classify("stats.OutOfStock", "", err)
}

// LowStock lists products at or below the low threshold, lowest first.
func (s *StatsService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.List(ctx, repository.ProductFilter{
		Stock:        model.BandLow,
		LowThreshold: s.lowThreshold,
		Sort:         "stock",
	})
	return products, classify("stats.LowStock", "", err)
}
