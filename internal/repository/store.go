package repository

import (
	"errors"
	"time"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Find* methods when no row matches.
// Storage-specific errors (gorm.ErrRecordNotFound) are mapped to this so
// the service layer stays independent of the storage technology.
var ErrNotFound = errors.New("record not found")

// Store aggregates the ledger repositories behind a single handle.
//
// Atomic runs fn against a Store view whose writes commit or roll back
// as one unit. The ledger relies on this for every put+append pair: the
// book row update and its audit record are either both visible to
// subsequent reads or neither is.
type Store interface {
	Books() BookRepository
	PriceHistory() PriceHistoryRepository
	StockMovements() StockMovementRepository
	Transactions() TransactionRepository
	Atomic(fn func(Store) error) error
}

type BookRepository interface {
	Create(book *model.Book) error
	FindByID(id uuid.UUID) (*model.Book, error)
	// FindByIDForUpdate loads the row with a write lock when running
	// inside Atomic. Outside a transaction it behaves like FindByID.
	FindByIDForUpdate(id uuid.UUID) (*model.Book, error)
	Update(book *model.Book) error
	ExistsActiveISBN(isbn string, excludeID uuid.UUID) (bool, error)
	ExistsActiveBarcode(barcode string, excludeID uuid.UUID) (bool, error)
	Search(q BookSearchQuery) ([]model.Book, int64, error)
	FindLowStock() ([]model.Book, error)
	CountActive() (int64, error)
	CountLowStock() (int64, error)
	StockValuation() (decimal.Decimal, error)
}

type PriceHistoryRepository interface {
	Append(entry *model.PriceHistory) error
	FindByBookID(bookID uuid.UUID) ([]model.PriceHistory, error)
}

type StockMovementRepository interface {
	Append(movement *model.StockMovement) error
	FindByBookID(bookID uuid.UUID) ([]model.StockMovement, error)
	DailySeries(startDate, endDate time.Time) ([]MovementSeriesPoint, error)
}

type TransactionRepository interface {
	Create(tx *model.Transaction) error
	FindByID(id uuid.UUID) (*model.Transaction, error)
	Search(q TransactionSearchQuery) ([]model.Transaction, int64, error)
	FinancialSummary(startDate, endDate time.Time) (income, expense decimal.Decimal, err error)
}

// BookSearchQuery narrows the paginated catalog listing.
type BookSearchQuery struct {
	SearchTerm   string // matched against ISBN, barcode and title
	Category     string
	Author       string
	LowStockOnly bool
	Offset       int
	Limit        int
}

// TransactionSearchQuery narrows the paginated transaction listing.
type TransactionSearchQuery struct {
	BookID          *uuid.UUID
	TransactionType *model.TransactionType
	StartDate       *time.Time
	EndDate         *time.Time
	Offset          int
	Limit           int
}

// MovementSeriesPoint is one day of aggregated stock movement, for charts.
type MovementSeriesPoint struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the overview block for the dashboard endpoint.
type DashboardStats struct {
	TotalBooks     int64           `json:"total_books"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}
