package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is used when a product is created without one.
const DefaultCategory = "Other"

// Product is a sellable item identified by a unique barcode.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Barcode   string          `gorm:"uniqueIndex;not null;size:64" json:"barcode"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	Category  string          `gorm:"index;size:100;default:Other" json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// StockBand classifies a stock level against the low-stock threshold.
func (p Product) StockBand(lowThreshold int) string {
	switch {
	case p.Stock <= 0:
		return BandOut
	case p.Stock <= lowThreshold:
		return BandLow
	default:
		return BandOK
	}
}

// Stock bands used by filters and reports.
const (
	BandOut = "out"
	BandLow = "low"
	BandOK  = "ok"
)
