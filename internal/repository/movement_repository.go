package repository

import (
	"context"
	"fmt"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/model"
)

// MovementRepository reads the stock movement ledger. Rows are written by
// ProductRepository.ApplyAdjustment.
type MovementRepository struct {
	db *database.DB
}

func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// ListByProduct returns the movements of a product, newest first.
func (r *MovementRepository) ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var movements []model.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// CountByProduct returns how many movements a product has.
func (r *MovementRepository) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}
