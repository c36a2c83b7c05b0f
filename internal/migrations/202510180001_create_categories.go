package migrations

import (
	"context"
	"time"

	"github.com/pankajredekar/stockroom/internal/schema"
	"gorm.io/gorm"
)

type categoryV1 struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null;uniqueIndex;size:100"`
	Emoji       string `gorm:"size:16"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (categoryV1) TableName() string { return "categories" }

func init() {
	register(migration{
		version: "202510180001",
		name:    "create_categories",
		up: func(_ context.Context, db *gorm.DB) error {
			return db.AutoMigrate(&categoryV1{})
		},
		down: dropTable("categories"),
		describe: func(b *schema.SchemaBuilder) {
			b.CreateTable("categories").
				Column("id", "bigint", schema.PrimaryKey()).
				Column("name", "string", schema.Unique()).
				Column("emoji", "string", schema.Nullable()).
				Column("description", "text", schema.Nullable()).
				Column("created_at", "timestamp", schema.Nullable()).
				Index("idx_categories_name")
		},
	})
}
