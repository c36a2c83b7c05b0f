// Package httpapi exposes the inventory over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/pankajredekar/stockroom/internal/service"
)

// StockProvider runs the scan and adjustment workflow.
type StockProvider interface {
	Scan(ctx context.Context, req service.ScanRequest) (service.Result, error)
	Adjust(ctx context.Context, req service.AdjustRequest) (service.Result, error)
}

// ProductProvider manages the catalogue.
type ProductProvider interface {
	Create(ctx context.Context, in service.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uint, patch service.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.Product, error)
	GetByBarcode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	Movements(ctx context.Context, id uint, limit int) ([]model.StockMovement, error)
	Label(ctx context.Context, id uint) (string, error)
	LabelSheet(ctx context.Context, category string) (string, int, error)
}

// CategoryProvider manages categories.
type CategoryProvider interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name, emoji, description string) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

// StatsProvider serves the dashboard figures.
type StatsProvider interface {
	Summary(ctx context.Context) (*service.Stats, error)
	OutOfStock(ctx context.Context) ([]model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
}

// Deps are the services behind the API.
type Deps struct {
	Stock      StockProvider
	Products   ProductProvider
	Categories CategoryProvider
	Stats      StatsProvider
}

// Server routes requests to the providers.
type Server struct {
	deps   Deps
	logger logging.Logger
	now    func() time.Time
}

func NewServer(deps Deps, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &Server{deps: deps, logger: logger, now: time.Now}
}

// Handler returns the routed API wrapped in the tracing, request id and
// logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("POST /api/products", s.handleCreateProduct)
	mux.HandleFunc("GET /api/products/{id}", s.handleGetProduct)
	mux.HandleFunc("PUT /api/products/{id}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", s.handleDeleteProduct)
	mux.HandleFunc("POST /api/products/{id}/adjust", s.handleAdjust)
	mux.HandleFunc("GET /api/products/{id}/movements", s.handleMovements)
	mux.HandleFunc("GET /api/products/{id}/barcode.svg", s.handleLabel)
	mux.HandleFunc("GET /api/barcodes/{code}", s.handleGetByBarcode)
	mux.HandleFunc("GET /api/labels.svg", s.handleLabelSheet)
	mux.HandleFunc("POST /api/scan", s.handleScan)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/stock/out", s.handleOutOfStock)
	mux.HandleFunc("GET /api/stock/low", s.handleLowStock)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /export/products.csv", s.handleExportCSV)
	mux.HandleFunc("GET /export/dump.sql", s.handleExportSQL)

	return Tracing(RequestID(Logging(s.logger)(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case inventory.IsNotFound(err), errors.Is(err, inventory.ErrNothingToExport):
		return http.StatusNotFound
	case inventory.IsConflict(err), errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict
	case inventory.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err. Storage failures are logged and hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method": r.Method, "path": r.URL.Path, "error": err, "request_id": requestIDOf(r),
		})
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
