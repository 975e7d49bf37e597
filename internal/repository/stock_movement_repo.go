package repository

import (
	"time"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

// Append is the only write operation: movements are never updated or
// deleted.
func (r *stockMovementRepo) Append(movement *model.StockMovement) error {
	return r.db.Create(movement).Error
}

func (r *stockMovementRepo) FindByBookID(bookID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

// DailySeries aggregates IN/OUT movement quantities per day for charts.
// Adjustments are excluded: they are corrections, not flow.
func (r *stockMovementRepo) DailySeries(startDate, endDate time.Time) ([]MovementSeriesPoint, error) {
	var results []MovementSeriesPoint

	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN movement_type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var point MovementSeriesPoint
		if err := rows.Scan(&point.Date, &point.Inbound, &point.Outbound); err != nil {
			return nil, err
		}
		results = append(results, point)
	}

	return results, nil
}
