package migrations

import (
	"context"
	"time"

	"github.com/pankajredekar/stockroom/internal/schema"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productV1 struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"not null;size:255"`
	Barcode   string          `gorm:"uniqueIndex;not null;size:64"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Category  string          `gorm:"index;size:100;default:Other"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (productV1) TableName() string { return "products" }

func init() {
	register(migration{
		version: "202510180002",
		name:    "create_products",
		up: func(_ context.Context, db *gorm.DB) error {
			return db.AutoMigrate(&productV1{})
		},
		down: dropTable("products"),
		describe: func(b *schema.SchemaBuilder) {
			b.CreateTable("products").
				Column("id", "bigint", schema.PrimaryKey()).
				Column("name", "string").
				Column("barcode", "string", schema.Unique()).
				Column("price", "decimal(10,2)").
				Column("stock", "int").
				Column("category", "string", schema.Nullable()).
				Column("created_at", "timestamp", schema.Nullable()).
				Column("updated_at", "timestamp", schema.Nullable()).
				Index("idx_products_barcode").
				Index("idx_products_category")
		},
	})
}
