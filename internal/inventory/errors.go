package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison using errors.Is()
var (
	// Lookup errors
	ErrNotFound = errors.New("product not found")

	// Creation errors
	ErrDuplicateBarcode  = errors.New("barcode already exists")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidCategory   = errors.New("invalid category")

	// Adjustment errors
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidQuantity   = errors.New("invalid quantity")

	// Persistence errors
	ErrStorage = errors.New("storage error")

	// Export errors
	ErrNothingToExport = errors.New("nothing to export")
)

var kinds = []error{
	ErrNotFound,
	ErrDuplicateBarcode,
	ErrDuplicateCategory,
	ErrInvalidProduct,
	ErrInvalidCategory,
	ErrInsufficientStock,
	ErrInvalidAction,
	ErrInvalidQuantity,
	ErrStorage,
	ErrNothingToExport,
}

// Error carries the operation and entity involved in a failure.
// It wraps one of the sentinels above so callers can still use errors.Is.
type Error struct {
	Op   string // e.g. "stock.Adjust"
	Kind error  // the sentinel Err matches, nil if none
	ID   string // barcode or product id, optional
	Err  error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error.
func E(op, id string, err error) *Error {
	return &Error{Op: op, Kind: kindOf(err), ID: id, Err: err}
}

func kindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Storage wraps a lower-level persistence failure so that it matches ErrStorage
// while keeping the original cause reachable.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: ErrStorage, Err: fmt.Errorf("%w: %w", ErrStorage, err)}
}

// IsNotFound reports whether err is a missing product.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateBarcode) || errors.Is(err, ErrDuplicateCategory)
}

// IsValidation reports whether err was caused by bad input rather than the store.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrInvalidCategory)
}
