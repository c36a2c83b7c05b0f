package repository

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/migrations"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{URL: filepath.Join(t.TempDir(), "test.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.Apply(context.Background(), db.DB, "")
	require.NoError(t, err)
	return db
}

func seedProducts(t *testing.T, repo *ProductRepository) []model.Product {
	t.Helper()
	products := model.SampleProducts()
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
	return products
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))

	p := &model.Product{Name: "USB-C Cable 2m", Barcode: "4567890123456", Price: decimal.RequireFromString("8.99"), Stock: 30, Category: "Cable"}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	byCode, err := repo.FindByBarcode(ctx, "4567890123456")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)
	assert.Equal(t, 30, byCode.Stock)
	assert.True(t, decimal.RequireFromString("8.99").Equal(byCode.Price))

	byID, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "USB-C Cable 2m", byID.Name)

	_, err = repo.FindByBarcode(ctx, "0000000000000")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestProductRepository_DuplicateBarcode(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	seedProducts(t, repo)

	before, err := repo.Count(ctx)
	require.NoError(t, err)

	err = repo.Create(ctx, &model.Product{Name: "Clone", Barcode: "4567890123456", Price: decimal.Zero})
	assert.ErrorIs(t, err, inventory.ErrDuplicateBarcode)

	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	seedProducts(t, repo)

	min := decimal.RequireFromString("15")
	max := decimal.RequireFromString("30")

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"query is case-insensitive", ProductFilter{Query: "iphone"}, []string{"iPhone 12 Screen", "iPhone 13 Pro Case"}},
		{"query matches barcode", ProductFilter{Query: "4567890123456"}, []string{"USB-C Cable 2m"}},
		{"category", ProductFilter{Category: "Cable"}, []string{"Fast Charger", "USB-C Cable 2m"}},
		{"low band", ProductFilter{Stock: model.BandLow, LowThreshold: 5}, []string{"Screwdriver Kit"}},
		{"price range sorted by price desc", ProductFilter{PriceMin: &min, PriceMax: &max, Sort: "price", Order: "desc"},
			[]string{"Samsung S21 Battery", "Fast Charger", "Bluetooth Earphones", "Screwdriver Kit"}},
		{"stock ascending with limit", ProductFilter{Sort: "stock", Limit: 2}, []string{"Screwdriver Kit", "Samsung S21 Battery"}},
		{"unknown sort falls back to name", ProductFilter{Sort: "weight", Limit: 1}, []string{"Bluetooth Earphones"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, len(products))
			for i, p := range products {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProductRepository_UpdateFieldsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	products := seedProducts(t, repo)
	id := products[0].ID

	name := "iPhone 12 OLED Screen"
	price := decimal.RequireFromString("49.50")
	updated, err := repo.UpdateFields(ctx, id, ProductUpdate{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 15, updated.Stock)

	updated, err = repo.UpdateStock(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)

	_, err = repo.UpdateStock(ctx, id, -1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	_, err = repo.UpdateFields(ctx, 9999, ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id), "delete is idempotent")
	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestProductRepository_ApplyAdjustment(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	movements := NewMovementRepository(db)
	p := &model.Product{Name: "USB-C Cable 2m", Barcode: "4567890123456", Price: decimal.RequireFromString("8.99"), Stock: 30}
	require.NoError(t, repo.Create(ctx, p))

	prev, cur, err := repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionDecrease, Quantity: 5, Source: model.SourceScan, RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, 30, prev)
	assert.Equal(t, 25, cur)

	_, _, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionDecrease, Quantity: 100})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	prev, cur, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionSet, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, prev)
	assert.Equal(t, 10, cur)

	prev, cur, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionIncrease, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 10, prev)
	assert.Equal(t, 14, cur)

	_, _, err = repo.ApplyAdjustment(ctx, 9999, Adjustment{Action: inventory.ActionIncrease, Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	history, err := movements.ListByProduct(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3, "failed adjustments record nothing")
	assert.Equal(t, "increase", history[0].Action)
	assert.Equal(t, "decrease", history[2].Action)
	assert.Equal(t, "req-1", history[2].RequestID)
	assert.Equal(t, 30, history[2].PreviousStock)
	assert.Equal(t, 25, history[2].NewStock)
}

func TestProductRepository_ConcurrentDecreasesNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	p := &model.Product{Name: "Fast Charger", Barcode: "7890123456789", Price: decimal.RequireFromString("24.99"), Stock: 10}
	require.NoError(t, repo.Create(ctx, p))

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
		unexpected   []error
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionDecrease, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, inventory.ErrInsufficientStock):
				insufficient++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 5, insufficient)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	count, err := NewMovementRepository(db).CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, count)
}

func TestProductRepository_RejectedAdjustmentReportsObservedStock(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	p := &model.Product{Name: "HDMI Cable", Barcode: "3456789012345", Price: decimal.RequireFromString("12.50"), Stock: 10}
	require.NoError(t, repo.Create(ctx, p))

	_, err := repo.UpdateStock(ctx, p.ID, 3)
	require.NoError(t, err)

	prev, cur, err := repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionDecrease, Quantity: 5})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 3, prev, "the stock read inside the transaction, not the caller's copy")
	assert.Equal(t, 3, cur)

	prev, _, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionIncrease, Quantity: math.MaxInt})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	assert.Equal(t, 3, prev)

	_, _, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionIncrease, Quantity: inventory.MaxStock - 2})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	prev, cur, err = repo.ApplyAdjustment(ctx, p.ID, Adjustment{Action: inventory.ActionIncrease, Quantity: inventory.MaxStock - 3})
	require.NoError(t, err)
	assert.Equal(t, 3, prev)
	assert.Equal(t, inventory.MaxStock, cur)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxStock, stored.Stock)

	count, err := NewMovementRepository(db).CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestProductRepository_CreateBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))

	batch := model.SampleProducts()
	batch[len(batch)-1].Barcode = batch[0].Barcode
	assert.ErrorIs(t, repo.CreateBatch(ctx, batch), inventory.ErrDuplicateBarcode)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	batch = model.SampleProducts()
	require.NoError(t, repo.CreateBatch(ctx, batch))
	for _, p := range batch {
		assert.NotZero(t, p.ID)
	}
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(batch), count)
}

func TestProductRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	products := seedProducts(t, repo)
	_, err := repo.UpdateStock(ctx, products[1].ID, 0)
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, count)

	out, low, err := repo.StockBands(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out)
	assert.EqualValues(t, 1, low)

	value, err := repo.StockValue(ctx)
	require.NoError(t, err)
	// 15*45.99 + 25*12.99 + 30*8.99 + 12*19.99 + 5*15.99 + 18*24.99
	assert.Equal(t, "2053.95", value.StringFixed(2))

	breakdown, err := repo.CategoryBreakdown(ctx, 5)
	require.NoError(t, err)
	require.Len(t, breakdown, 5)
	assert.Equal(t, "Cable", breakdown[0].Category)
	assert.EqualValues(t, 2, breakdown[0].Count)
	assert.EqualValues(t, 48, breakdown[0].StockTotal)
}

func TestProductRepository_BarcodeChecks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	seedProducts(t, repo)

	require.NoError(t, db.Exec("DROP INDEX idx_products_barcode").Error)
	require.NoError(t, db.Exec("INSERT INTO products (name, barcode, price, stock, category) VALUES ('Blank', '', 1, 1, 'Other'), ('Twin', '4567890123456', 1, 1, 'Other')").Error)

	empty, err := repo.FindEmptyBarcodes(ctx)
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, "Blank", empty[0].Name)

	dups, err := repo.DuplicateBarcodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []DuplicateBarcode{{Barcode: "4567890123456", Count: 2}}, dups)

	exists, err := repo.ExistsBarcode(ctx, "1234567890123")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.SetBarcode(ctx, empty[0].ID, "9999999999999"))
	exists, err = repo.ExistsBarcode(ctx, "9999999999999")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(setupTestDB(t))

	added, err := repo.CreateMissing(ctx, model.DefaultCategories())
	require.NoError(t, err)
	assert.EqualValues(t, 9, added)

	added, err = repo.CreateMissing(ctx, model.DefaultCategories())
	require.NoError(t, err)
	assert.EqualValues(t, 0, added)

	err = repo.Create(ctx, &model.Category{Name: "Cable"})
	assert.ErrorIs(t, err, inventory.ErrDuplicateCategory)

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 9)
	assert.Equal(t, "Accessory", categories[0].Name)

	require.NoError(t, repo.Delete(ctx, categories[0].ID))
	require.NoError(t, repo.Delete(ctx, categories[0].ID))
	categories, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 8)
}
