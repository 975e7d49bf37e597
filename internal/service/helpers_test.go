package service

import (
	"testing"

	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testActor = "test-user"

type testEnv struct {
	store       *repository.MemoryStore
	guard       *BookGuard
	priceLedger *PriceLedger
	stockLedger *StockLedger
	books       BookService
	txService   TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	guard := NewBookGuard()
	priceLedger := NewPriceLedger(store, guard, nil)
	stockLedger := NewStockLedger(store, guard, nil)
	return &testEnv{
		store:       store,
		guard:       guard,
		priceLedger: priceLedger,
		stockLedger: stockLedger,
		books:       NewBookService(store, guard, priceLedger, nil),
		txService:   NewTransactionService(store, guard, nil),
	}
}

func (e *testEnv) seedBook(t *testing.T, title, isbn string, price string, stock int) *model.Book {
	t.Helper()
	book, err := e.books.CreateBook(&CreateBookRequest{
		ISBN:    isbn,
		Barcode: "BC-" + isbn,
		Title:   title,
		Author:  "Test Author",
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
	}, testActor)
	require.NoError(t, err)
	return book
}
