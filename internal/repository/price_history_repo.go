package repository

import (
	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type priceHistoryRepo struct {
	db *gorm.DB
}

func NewPriceHistoryRepo(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

// Append is the only write operation: price history rows are never
// updated or deleted.
func (r *priceHistoryRepo) Append(entry *model.PriceHistory) error {
	return r.db.Create(entry).Error
}

func (r *priceHistoryRepo) FindByBookID(bookID uuid.UUID) ([]model.PriceHistory, error) {
	var history []model.PriceHistory
	err := r.db.
		Where("book_id = ?", bookID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}
