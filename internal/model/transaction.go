package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxSale     TransactionType = "SALE"
	TxPurchase TransactionType = "PURCHASE"
	TxReturn   TransactionType = "RETURN"
)

// ParseTransactionType normalizes a caller-supplied transaction type string.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TxSale:
		return TxSale, true
	case TxPurchase:
		return TxPurchase, true
	case TxReturn:
		return TxReturn, true
	}
	return "", false
}

// Transaction is a commercial event (sale, purchase or return). It is
// never mutated after creation; each accepted transaction causes exactly
// one StockMovement and never touches the book's list price.
type Transaction struct {
	BaseModel
	TransactionType TransactionType `gorm:"type:varchar(20);not null" json:"transaction_type"`
	BookID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"book_id"`
	Book            *Book           `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"` // Quantity * UnitPrice, computed server-side
	TransactionDate time.Time       `gorm:"index" json:"transaction_date"`
	Notes           string          `gorm:"type:varchar(1000)" json:"notes"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
}
