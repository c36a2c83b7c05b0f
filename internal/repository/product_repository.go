package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows List. Zero values disable a criterion.
type ProductFilter struct {
	Query        string // substring of name or barcode, case-insensitive
	Category     string
	Stock        string // model.BandOut, model.BandLow or model.BandOK
	LowThreshold int
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Sort         string // name, price, stock, category or date
	Order        string // asc or desc
	Limit        int
}

// ProductUpdate holds the fields to change. Nil fields are left untouched.
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	Stock    *int
	Category *string
}

// Adjustment is a validated stock change for ApplyAdjustment.
type Adjustment struct {
	Action    inventory.Action
	Quantity  int
	Source    string
	RequestID string
}

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Category   string `json:"category"`
	Count      int64  `json:"count"`
	StockTotal int64  `json:"stock_total"`
}

// DuplicateBarcode is a barcode shared by more than one product.
type DuplicateBarcode struct {
	Barcode string `json:"barcode"`
	Count   int64  `json:"count"`
}

var sortColumns = map[string]string{
	"id":       "id",
	"name":     "name",
	"price":    "price",
	"stock":    "stock",
	"category": "category",
	"date":     "created_at",
}

type ProductRepository struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByBarcode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", code).First(&product).Error; err != nil {
		if isNotFound(err) {
			return nil, inventory.ErrNotFound
		}
		return nil, fmt.Errorf("find product by barcode: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if isNotFound(err) {
			return nil, inventory.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

// List returns the products matching f.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			"("+r.db.Dialect.ContainsFold("name")+" OR "+r.db.Dialect.ContainsFold("barcode")+")",
			pattern, pattern,
		)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	switch f.Stock {
	case model.BandOut:
		query = query.Where("stock <= 0")
	case model.BandLow:
		query = query.Where("stock > 0 AND stock <= ?", f.LowThreshold)
	case model.BandOK:
		query = query.Where("stock > ?", f.LowThreshold)
	}
	if f.PriceMin != nil {
		query = query.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		query = query.Where("price <= ?", *f.PriceMax)
	}

	column, ok := sortColumns[strings.ToLower(f.Sort)]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if strings.EqualFold(f.Order, "desc") {
		direction = "DESC"
	}
	query = query.Order(column + " " + direction).Order("id ASC")

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Create inserts p and fills its ID.
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return inventory.ErrDuplicateBarcode
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// CreateBatch inserts products in one transaction. Either all of them are
// stored or none is.
func (r *ProductRepository) CreateBatch(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return inventory.ErrDuplicateBarcode
		}
		return fmt.Errorf("create products: %w", err)
	}
	return nil
}

// UpdateStock overwrites the stock of a product.
func (r *ProductRepository) UpdateStock(ctx context.Context, id uint, newStock int) (*model.Product, error) {
	if newStock < 0 {
		return nil, inventory.ErrInsufficientStock
	}
	return r.UpdateFields(ctx, id, ProductUpdate{Stock: &newStock})
}

// UpdateFields applies u and returns the stored product.
func (r *ProductRepository) UpdateFields(ctx context.Context, id uint, u ProductUpdate) (*model.Product, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.Stock != nil {
		updates["stock"] = *u.Stock
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}

	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, inventory.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// SetBarcode replaces the barcode of a product.
func (r *ProductRepository) SetBarcode(ctx context.Context, id uint, code string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"barcode": code, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return inventory.ErrDuplicateBarcode
		}
		return fmt.Errorf("set barcode: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

// Delete removes a product. Deleting a missing product is not an error.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Product{}, id).Error; err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ApplyAdjustment changes the stock of product id and records the movement,
// both in one transaction. The row is locked before it is read, so the stock
// the action is computed from is the stock that gets replaced. When the
// action is rejected, previous and current both hold the stock it saw.
func (r *ProductRepository) ApplyAdjustment(ctx context.Context, id uint, adj Adjustment) (previous, current int, err error) {
	observed := 0
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before model.Product
		// FOR UPDATE on postgres; the sqlite driver drops it and relies on
		// the immediate transaction lock instead
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id", "stock").First(&before, id).Error
		if err != nil {
			if isNotFound(err) {
				return inventory.ErrNotFound
			}
			return fmt.Errorf("read stock: %w", err)
		}
		observed = before.Stock

		next, err := adj.Action.Apply(before.Stock, adj.Quantity)
		if err != nil {
			return err
		}

		query := tx.Model(&model.Product{}).Where("id = ?", id)
		if adj.Action == inventory.ActionDecrease {
			query = query.Where("stock >= ?", adj.Quantity)
		}
		res := query.Updates(map[string]interface{}{"stock": next, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("update stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return inventory.ErrInsufficientStock
		}

		movement := model.StockMovement{
			ProductID:     id,
			Action:        string(adj.Action),
			Quantity:      adj.Quantity,
			PreviousStock: before.Stock,
			NewStock:      next,
			Source:        adj.Source,
			RequestID:     adj.RequestID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("record movement: %w", err)
		}
		previous, current = before.Stock, next
		return nil
	})
	if err != nil {
		return observed, observed, err
	}
	return previous, current, nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// StockBands counts out-of-stock products and products at or below lowThreshold.
func (r *ProductRepository) StockBands(ctx context.Context, lowThreshold int) (out, low int64, err error) {
	db := r.db.WithContext(ctx).Model(&model.Product{})
	if err := db.Where("stock <= 0").Count(&out).Error; err != nil {
		return 0, 0, fmt.Errorf("count out of stock: %w", err)
	}
	db = r.db.WithContext(ctx).Model(&model.Product{})
	if err := db.Where("stock > 0 AND stock <= ?", lowThreshold).Count(&low).Error; err != nil {
		return 0, 0, fmt.Errorf("count low stock: %w", err)
	}
	return out, low, nil
}

// StockValue sums stock × price over all products.
func (r *ProductRepository) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var rows []model.Product
	if err := r.db.WithContext(ctx).Select("stock", "price").Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load stock value: %w", err)
	}
	total := decimal.Zero
	for _, p := range rows {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total.Round(2), nil
}

// CategoryBreakdown returns the categories with the most products.
func (r *ProductRepository) CategoryBreakdown(ctx context.Context, limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	query := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(stock), 0) AS stock_total").
		Group("category").
		Order("count DESC").Order("category ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return rows, nil
}

// FindEmptyBarcodes returns products whose barcode is blank.
func (r *ProductRepository) FindEmptyBarcodes(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("TRIM(barcode) = ''").Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("find empty barcodes: %w", err)
	}
	return products, nil
}

// DuplicateBarcodes returns non-empty barcodes used more than once.
func (r *ProductRepository) DuplicateBarcodes(ctx context.Context) ([]DuplicateBarcode, error) {
	var rows []DuplicateBarcode
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("barcode, COUNT(*) AS count").
		Where("TRIM(barcode) <> ''").
		Group("barcode").
		Having("COUNT(*) > 1").
		Order("barcode ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find duplicate barcodes: %w", err)
	}
	return rows, nil
}

// ExistsBarcode reports whether code is already taken.
func (r *ProductRepository) ExistsBarcode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("barcode = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check barcode: %w", err)
	}
	return count > 0, nil
}
