package repository

import (
	"errors"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type bookRepo struct {
	db *gorm.DB
}

func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepo{db: db}
}

func (r *bookRepo) Create(book *model.Book) error {
	return r.db.Create(book).Error
}

func (r *bookRepo) FindByID(id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindByIDForUpdate locks the row for the duration of the surrounding
// transaction (Pessimistic Locking)
func (r *bookRepo) FindByIDForUpdate(id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.Set("gorm:query_option", "FOR UPDATE").First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *bookRepo) Update(book *model.Book) error {
	return r.db.Save(book).Error
}

func (r *bookRepo) ExistsActiveISBN(isbn string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Book{}).
		Where("isbn = ? AND active = ? AND id <> ?", isbn, true, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *bookRepo) ExistsActiveBarcode(barcode string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Book{}).
		Where("barcode = ? AND active = ? AND id <> ?", barcode, true, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *bookRepo) Search(q BookSearchQuery) ([]model.Book, int64, error) {
	query := r.db.Model(&model.Book{}).Where("active = ?", true)

	if q.SearchTerm != "" {
		term := "%" + q.SearchTerm + "%"
		query = query.Where("isbn ILIKE ? OR barcode ILIKE ? OR title ILIKE ?", term, term, term)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Author != "" {
		query = query.Where("author ILIKE ?", "%"+q.Author+"%")
	}
	if q.LowStockOnly {
		query = query.Where("stock <= min_stock_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []model.Book
	err := query.Order("title ASC").Offset(q.Offset).Limit(q.Limit).Find(&books).Error
	return books, total, err
}

func (r *bookRepo) FindLowStock() ([]model.Book, error) {
	var books []model.Book
	err := r.db.
		Where("active = ? AND stock <= min_stock_level", true).
		Order("stock ASC").
		Find(&books).Error
	return books, err
}

func (r *bookRepo) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Book{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

func (r *bookRepo) CountLowStock() (int64, error) {
	var count int64
	err := r.db.Model(&model.Book{}).
		Where("active = ? AND stock <= min_stock_level", true).
		Count(&count).Error
	return count, err
}

func (r *bookRepo) StockValuation() (decimal.Decimal, error) {
	var valuation decimal.Decimal
	err := r.db.Model(&model.Book{}).
		Where("active = ?", true).
		Select("COALESCE(SUM(stock * price), 0)").
		Scan(&valuation).Error
	return valuation, err
}
