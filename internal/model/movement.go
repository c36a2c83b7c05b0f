package model

import "time"

// Movement sources.
const (
	SourceScan   = "scan"
	SourceManual = "manual"
)

// StockMovement records one committed stock adjustment.
type StockMovement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	Action        string    `gorm:"not null;size:16" json:"action"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	PreviousStock int       `gorm:"not null" json:"previous_stock"`
	NewStock      int       `gorm:"not null" json:"new_stock"`
	Source        string    `gorm:"size:16" json:"source"`
	RequestID     string    `gorm:"size:64" json:"request_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}
