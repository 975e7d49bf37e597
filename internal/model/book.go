package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Book struct {
	BaseModel
	ISBN          string          `gorm:"type:varchar(20);index" json:"isbn,omitempty"`
	Barcode       string          `gorm:"type:varchar(50);index" json:"barcode,omitempty"`
	Title         string          `gorm:"type:varchar(500);not null" json:"title" validate:"required,max=500"`
	Author        string          `gorm:"type:varchar(300)" json:"author" validate:"max=300"`
	Publisher     string          `gorm:"type:varchar(200)" json:"publisher" validate:"max=200"`
	Category      string          `gorm:"type:varchar(100)" json:"category" validate:"max=100"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	MinStockLevel int             `gorm:"not null;default:5" json:"min_stock_level"`

	// Soft delete flag. Deactivated books keep their full audit trail
	// (price history, stock movements, transactions) queryable by id.
	Active bool `gorm:"not null;default:true" json:"active"`
}

// IsLowStock reports whether the book is at or below its reorder level.
func (b *Book) IsLowStock() bool {
	return b.Stock <= b.MinStockLevel
}

// BookResponse is the read model exposed to listing/search endpoints.
type BookResponse struct {
	ID            uuid.UUID       `json:"id"`
	ISBN          string          `json:"isbn,omitempty"`
	Barcode       string          `json:"barcode,omitempty"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Publisher     string          `json:"publisher"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	MinStockLevel int             `json:"min_stock_level"`
	IsLowStock    bool            `json:"is_low_stock"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToResponse converts Book to BookResponse with the derived low-stock flag.
func (b *Book) ToResponse() BookResponse {
	return BookResponse{
		ID:            b.ID,
		ISBN:          b.ISBN,
		Barcode:       b.Barcode,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Category:      b.Category,
		Description:   b.Description,
		Price:         b.Price,
		Stock:         b.Stock,
		MinStockLevel: b.MinStockLevel,
		IsLowStock:    b.IsLowStock(),
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
