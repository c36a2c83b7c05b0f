package service

import (
	"context"
	"errors"

	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/shopspring/decimal"
)

// StockStore is what the adjustment workflow needs from the product store.
type StockStore interface {
	FindByBarcode(ctx context.Context, code string) (*model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	ApplyAdjustment(ctx context.Context, id uint, adj repository.Adjustment) (previous, current int, err error)
}

// ProductStore covers product CRUD and barcode maintenance.
type ProductStore interface {
	FindByBarcode(ctx context.Context, code string) (*model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	UpdateFields(ctx context.Context, id uint, u repository.ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	FindEmptyBarcodes(ctx context.Context) ([]model.Product, error)
	DuplicateBarcodes(ctx context.Context) ([]repository.DuplicateBarcode, error)
	ExistsBarcode(ctx context.Context, code string) (bool, error)
	SetBarcode(ctx context.Context, id uint, code string) error
}

// SeedStore is what the seeder needs from the product store.
type SeedStore interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, products []model.Product) error
}

// StatsStore provides the aggregates behind the statistics page.
type StatsStore interface {
	Count(ctx context.Context) (int64, error)
	StockBands(ctx context.Context, lowThreshold int) (out, low int64, err error)
	StockValue(ctx context.Context) (decimal.Decimal, error)
	CategoryBreakdown(ctx context.Context, limit int) ([]repository.CategoryCount, error)
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	CreateMissing(ctx context.Context, categories []model.Category) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// MovementStore reads the adjustment history.
type MovementStore interface {
	ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error)
}

// BarcodeGenerator proposes barcodes for products created without one.
type BarcodeGenerator interface {
	Candidate(attempt int) string
}

var domainErrors = []error{
	inventory.ErrNotFound,
	inventory.ErrDuplicateBarcode,
	inventory.ErrDuplicateCategory,
	inventory.ErrInvalidProduct,
	inventory.ErrInvalidCategory,
	inventory.ErrInsufficientStock,
	inventory.ErrInvalidAction,
	inventory.ErrInvalidQuantity,
	inventory.ErrNothingToExport,
	inventory.ErrStorage,
}

// classify tags err with op and id. Errors that are not one of the domain
// sentinels are treated as storage failures.
func classify(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var ie *inventory.Error
	if errors.As(err, &ie) {
		return err
	}
	for _, sentinel := range domainErrors {
		if errors.Is(err, sentinel) {
			return inventory.E(op, id, err)
		}
	}
	return inventory.Storage(op, err)
}
