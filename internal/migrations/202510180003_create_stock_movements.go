package migrations

import (
	"context"
	"time"

	"github.com/pankajredekar/stockroom/internal/schema"
	"gorm.io/gorm"
)

type stockMovementV1 struct {
	ID            uint   `gorm:"primaryKey"`
	ProductID     uint   `gorm:"not null;index"`
	Action        string `gorm:"not null;size:16"`
	Quantity      int    `gorm:"not null"`
	PreviousStock int    `gorm:"not null"`
	NewStock      int    `gorm:"not null"`
	Source        string `gorm:"size:16"`
	RequestID     string `gorm:"size:64"`
	CreatedAt     time.Time
}

func (stockMovementV1) TableName() string { return "stock_movements" }

func init() {
	register(migration{
		version: "202510180003",
		name:    "create_stock_movements",
		up: func(_ context.Context, db *gorm.DB) error {
			return db.AutoMigrate(&stockMovementV1{})
		},
		down: dropTable("stock_movements"),
		describe: func(b *schema.SchemaBuilder) {
			b.CreateTable("stock_movements").
				Column("id", "bigint", schema.PrimaryKey()).
				Column("product_id", "bigint").
				Column("action", "string").
				Column("quantity", "int").
				Column("previous_stock", "int").
				Column("new_stock", "int").
				Column("source", "string", schema.Nullable()).
				Column("request_id", "string", schema.Nullable()).
				Column("created_at", "timestamp", schema.Nullable()).
				Index("idx_stock_movements_product_id")
		},
	})
}
