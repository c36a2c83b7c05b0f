package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pankajredekar/stockroom/internal/cache"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/pankajredekar/stockroom/internal/requestid"
	"github.com/pankajredekar/stockroom/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScanRequest is a barcode scan, optionally carrying the action to apply.
type ScanRequest struct {
	Code     string
	Action   string
	Quantity *int // nil means 1
}

// AdjustRequest is a manual adjustment of a product picked by id.
type AdjustRequest struct {
	ProductID uint
	Action    string
	Quantity  *int // nil means 1
}

// Result describes what a scan or adjustment did. Product is the snapshot
// after the change, or before it when nothing changed.
type Result struct {
	Outcome       inventory.Outcome `json:"outcome"`
	Product       *model.Product    `json:"product,omitempty"`
	Action        inventory.Action  `json:"action,omitempty"`
	Quantity      int               `json:"quantity,omitempty"`
	PreviousStock int               `json:"previous_stock"`
	NewStock      int               `json:"new_stock"`
	Message       string            `json:"message"`
}

// StockService implements the scan and adjustment workflow.
type StockService struct {
	products StockStore
	cache    cache.StatsCache
	logger   logging.Logger
	tracer   trace.Tracer
}

func NewStockService(products StockStore, c cache.StatsCache, logger logging.Logger) *StockService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &StockService{
		products: products,
		cache:    c,
		logger:   logger,
		tracer:   telemetry.Tracer("stockroom/service"),
	}
}

// Scan looks up code and, when an action is given, applies it. Without an
// action the product is returned with OutcomeAwaitingAction and nothing changes.
func (s *StockService) Scan(ctx context.Context, req ScanRequest) (Result, error) {
	const op = "stock.Scan"
	code := strings.TrimSpace(req.Code)

	product, err := s.products.FindByBarcode(ctx, code)
	if err != nil {
		return s.failure(nil, classify(op, code, err), "", 0)
	}

	action, err := inventory.ParseAction(req.Action)
	if err != nil {
		return s.failure(product, inventory.E(op, code, err), "", 0)
	}
	if action == "" {
		return Result{
			Outcome:       inventory.OutcomeAwaitingAction,
			Product:       product,
			PreviousStock: product.Stock,
			NewStock:      product.Stock,
			Message:       fmt.Sprintf("%s: %d in stock, choose an action", product.Name, product.Stock),
		}, nil
	}

	return s.adjust(ctx, op, product, action, quantityOrDefault(req.Quantity), model.SourceScan)
}

// Adjust applies a manual adjustment to the product with the given id.
func (s *StockService) Adjust(ctx context.Context, req AdjustRequest) (Result, error) {
	const op = "stock.Adjust"
	id := strconv.FormatUint(uint64(req.ProductID), 10)

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return s.failure(nil, classify(op, id, err), "", 0)
	}

	action, err := inventory.ParseAction(req.Action)
	if err == nil && action == "" {
		err = inventory.ErrInvalidAction
	}
	if err != nil {
		return s.failure(product, inventory.E(op, id, err), "", 0)
	}

	return s.adjust(ctx, op, product, action, quantityOrDefault(req.Quantity), model.SourceManual)
}

func (s *StockService) adjust(ctx context.Context, op string, product *model.Product, action inventory.Action, quantity int, source string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "stock.adjust", trace.WithAttributes(
		attribute.Int64("product.id", int64(product.ID)),
		attribute.String("stock.action", string(action)),
		attribute.Int("stock.quantity", quantity),
		attribute.String("stock.source", source),
	))
	defer span.End()

	reqID := requestid.FromContext(ctx)
	previous, current, err := s.products.ApplyAdjustment(ctx, product.ID, repository.Adjustment{
		Action:    action,
		Quantity:  quantity,
		Source:    source,
		RequestID: reqID,
	})
	if err != nil {
		err = classify(op, product.Barcode, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(inventory.OutcomeOf(err)))
		if inventory.OutcomeOf(err) == inventory.OutcomeStorageError {
			s.logger.Error("stock adjustment failed", map[string]interface{}{
				"product_id": product.ID, "action": action, "error": err, "request_id": reqID,
			})
		}
		switch inventory.OutcomeOf(err) {
		case inventory.OutcomeInsufficientStock, inventory.OutcomeInvalidQuantity:
			// report the stock the rejected transaction saw
			seen := *product
			seen.Stock = previous
			product = &seen
		}
		return s.failure(product, err, action, quantity)
	}

	updated := *product
	updated.Stock = current
	span.SetAttributes(attribute.Int("stock.previous", previous), attribute.Int("stock.new", current))

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", map[string]interface{}{"error": err})
	}
	s.logger.Info("stock adjusted", map[string]interface{}{
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"action":     action,
		"quantity":   quantity,
		"previous":   previous,
		"new":        current,
		"source":     source,
		"request_id": reqID,
	})

	return Result{
		Outcome:       inventory.OutcomeSuccess,
		Product:       &updated,
		Action:        action,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      current,
		Message:       summary(product.Name, action, quantity),
	}, nil
}

// failure builds the Result for err. product may be nil when the lookup failed.
func (s *StockService) failure(product *model.Product, err error, action inventory.Action, quantity int) (Result, error) {
	res := Result{
		Outcome:  inventory.OutcomeOf(err),
		Product:  product,
		Action:   action,
		Quantity: quantity,
	}
	if product != nil {
		res.PreviousStock = product.Stock
		res.NewStock = product.Stock
	}

	switch res.Outcome {
	case inventory.OutcomeNotFound:
		res.Message = "Product not found"
	case inventory.OutcomeInsufficientStock:
		if action == inventory.ActionSet {
			res.Message = fmt.Sprintf("Stock cannot be set below zero (%d)", quantity)
		} else {
			res.Message = fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", product.Name, product.Stock, quantity)
		}
	case inventory.OutcomeInvalidAction:
		res.Message = "Invalid action, use increase, decrease or set"
	case inventory.OutcomeInvalidQuantity:
		if quantity > 0 {
			res.Message = fmt.Sprintf("Quantity %d would exceed the maximum stock of %d", quantity, inventory.MaxStock)
		} else {
			res.Message = fmt.Sprintf("Quantity must be positive, got %d", quantity)
		}
	default:
		res.Message = "Storage error"
	}
	return res, err
}

func summary(name string, action inventory.Action, quantity int) string {
	if action == inventory.ActionSet {
		return fmt.Sprintf("%s: stock set to %d", name, quantity)
	}
	return fmt.Sprintf("%s: %s unit(s)", name, action.Verb(quantity))
}

func quantityOrDefault(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}
