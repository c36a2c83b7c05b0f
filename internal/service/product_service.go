package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pankajredekar/stockroom/internal/barcode"
	"github.com/pankajredekar/stockroom/internal/cache"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/shopspring/decimal"
)

// ProductInput represents data required to create a product.
type ProductInput struct {
	Name     string
	Barcode  string // generated when empty
	Price    decimal.Decimal
	Stock    int
	Category string
}

// ProductPatch lists the fields to change. Nil fields are kept.
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Stock    *int
	Category *string
}

// ProductService wraps product CRUD and barcode maintenance.
type ProductService struct {
	products     ProductStore
	movements    MovementStore
	gen          BarcodeGenerator
	cache        cache.StatsCache
	logger       logging.Logger
	lowThreshold int
}

func NewProductService(products ProductStore, movements MovementStore, gen BarcodeGenerator, c cache.StatsCache, logger logging.Logger, lowThreshold int) *ProductService {
	if gen == nil {
		gen = barcode.NewGenerator()
	}
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &ProductService{
		products:     products,
		movements:    movements,
		gen:          gen,
		cache:        c,
		logger:       logger,
		lowThreshold: lowThreshold,
	}
}

func invalidProduct(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", inventory.ErrInvalidProduct, fmt.Sprintf(format, args...))
}

func validateProduct(name string, price decimal.Decimal, stock int) error {
	if strings.TrimSpace(name) == "" {
		return invalidProduct("name is required")
	}
	if price.IsNegative() {
		return invalidProduct("price must be >= 0")
	}
	return validateStock(stock)
}

func validateStock(stock int) error {
	if stock < 0 {
		return invalidProduct("stock must be >= 0")
	}
	if stock > inventory.MaxStock {
		return invalidProduct("stock must be <= %d", inventory.MaxStock)
	}
	return nil
}

// Create validates in and stores a new product. Without a barcode one is
// generated; a generated code that collides is replaced, an explicit one is not.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	const op = "product.Create"
	if err := validateProduct(in.Name, in.Price, in.Stock); err != nil {
		return nil, inventory.E(op, "", err)
	}

	p := &model.Product{
		Name:     strings.TrimSpace(in.Name),
		Barcode:  strings.TrimSpace(in.Barcode),
		Price:    in.Price.Round(2),
		Stock:    in.Stock,
		Category: strings.TrimSpace(in.Category),
	}
	if p.Category == "" {
		p.Category = model.DefaultCategory
	}

	var err error
	if p.Barcode != "" {
		err = s.products.Create(ctx, p)
	} else {
		err = s.createWithGeneratedBarcode(ctx, p)
	}
	if err != nil {
		return nil, classify(op, p.Barcode, err)
	}

	s.invalidate(ctx)
	s.logger.Info("product created", map[string]interface{}{"product_id": p.ID, "barcode": p.Barcode})
	return p, nil
}

func (s *ProductService) createWithGeneratedBarcode(ctx context.Context, p *model.Product) error {
	for attempt := 0; attempt < barcode.MaxAttempts; attempt++ {
		p.ID = 0
		p.Barcode = s.gen.Candidate(attempt)
		err := s.products.Create(ctx, p)
		if !errors.Is(err, inventory.ErrDuplicateBarcode) {
			return err
		}
		s.logger.Warn("generated barcode collided", map[string]interface{}{"barcode": p.Barcode, "attempt": attempt + 1})
	}
	return inventory.ErrDuplicateBarcode
}

// Update applies patch to product id.
func (s *ProductService) Update(ctx context.Context, id uint, patch ProductPatch) (*model.Product, error) {
	const op = "product.Update"
	key := strconv.FormatUint(uint64(id), 10)

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, inventory.E(op, key, invalidProduct("name is required"))
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, inventory.E(op, key, invalidProduct("price must be >= 0"))
	}
	if patch.Stock != nil {
		if err := validateStock(*patch.Stock); err != nil {
			return nil, inventory.E(op, key, err)
		}
	}

	update := repository.ProductUpdate{Stock: patch.Stock}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		update.Name = &name
	}
	if patch.Price != nil {
		price := patch.Price.Round(2)
		update.Price = &price
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		update.Category = &category
	}

	p, err := s.products.UpdateFields(ctx, id, update)
	if err != nil {
		return nil, classify(op, key, err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes product id. Its movement history is kept.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return classify("product.Delete", strconv.FormatUint(uint64(id), 10), err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	return p, classify("product.Get", strconv.FormatUint(uint64(id), 10), err)
}

func (s *ProductService) GetByBarcode(ctx context.Context, code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	p, err := s.products.FindByBarcode(ctx, code)
	return p, classify("product.GetByBarcode", code, err)
}

// List returns products matching f. The low-stock band uses the configured threshold.
func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error) {
	f.LowThreshold = s.lowThreshold
	products, err := s.products.List(ctx, f)
	return products, classify("product.List", "", err)
}

// Movements returns the adjustment history of product id, newest first.
func (s *ProductService) Movements(ctx context.Context, id uint, limit int) ([]model.StockMovement, error) {
	key := strconv.FormatUint(uint64(id), 10)
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, classify("product.Movements", key, err)
	}
	movements, err := s.movements.ListByProduct(ctx, id, limit)
	return movements, classify("product.Movements", key, err)
}

// Label renders the SVG barcode label of product id.
func (s *ProductService) Label(ctx context.Context, id uint) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return barcode.RenderSVG(p.Barcode, p.Name), nil
}

// LabelSheet renders one sheet with the labels of every product in category,
// or of all products when category is empty, ordered by name. Products
// without a barcode are left out. It also returns the number of labels.
func (s *ProductService) LabelSheet(ctx context.Context, category string) (string, int, error) {
	const op = "product.LabelSheet"
	category = strings.TrimSpace(category)
	products, err := s.products.List(ctx, repository.ProductFilter{Category: category, Sort: "name"})
	if err != nil {
		return "", 0, classify(op, category, err)
	}
	labels := make([]barcode.Label, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Barcode) == "" {
			continue
		}
		labels = append(labels, barcode.Label{Code: p.Barcode, Name: p.Name})
	}
	if len(labels) == 0 {
		return "", 0, inventory.E(op, category, inventory.ErrNothingToExport)
	}
	return barcode.RenderSheet(labels, barcode.SheetColumns), len(labels), nil
}

// FixedBarcode records a barcode assigned by VerifyBarcodes.
type FixedBarcode struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Barcode   string `json:"barcode"`
}

// BarcodeReport is the result of VerifyBarcodes.
type BarcodeReport struct {
	Empty      []model.Product               `json:"empty"`
	Duplicates []repository.DuplicateBarcode `json:"duplicates"`
	Fixed      []FixedBarcode                `json:"fixed"`
}

// OK reports whether no problem remains.
func (r *BarcodeReport) OK() bool {
	return len(r.Duplicates) == 0 && len(r.Empty) == len(r.Fixed)
}

// VerifyBarcodes finds products with a blank or shared barcode. With fix,
// every blank barcode gets a fresh generated one.
func (s *ProductService) VerifyBarcodes(ctx context.Context, fix bool) (*BarcodeReport, error) {
	const op = "product.VerifyBarcodes"

	empty, err := s.products.FindEmptyBarcodes(ctx)
	if err != nil {
		return nil, classify(op, "", err)
	}
	dups, err := s.products.DuplicateBarcodes(ctx)
	if err != nil {
		return nil, classify(op, "", err)
	}
	report := &BarcodeReport{Empty: empty, Duplicates: dups}
	if !fix {
		return report, nil
	}

	for _, p := range empty {
		code, err := s.assignBarcode(ctx, p.ID)
		if err != nil {
			return report, classify(op, strconv.FormatUint(uint64(p.ID), 10), err)
		}
		report.Fixed = append(report.Fixed, FixedBarcode{ProductID: p.ID, Name: p.Name, Barcode: code})
		s.logger.Info("barcode assigned", map[string]interface{}{"product_id": p.ID, "barcode": code})
	}
	if len(report.Fixed) > 0 {
		s.invalidate(ctx)
	}
	return report, nil
}

func (s *ProductService) assignBarcode(ctx context.Context, id uint) (string, error) {
	// the clock candidate is skipped, fixes run in a tight loop
	for attempt := 1; attempt <= barcode.MaxAttempts; attempt++ {
		code := s.gen.Candidate(attempt)
		taken, err := s.products.ExistsBarcode(ctx, code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}
		err = s.products.SetBarcode(ctx, id, code)
		if errors.Is(err, inventory.ErrDuplicateBarcode) {
			continue
		}
		return code, err
	}
	return "", inventory.ErrDuplicateBarcode
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", map[string]interface{}{"error": err})
	}
}
