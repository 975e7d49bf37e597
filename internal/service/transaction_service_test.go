package service

import (
	"errors"
	"sync"
	"testing"

	"go-bookstore-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSale(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 10)

	tx, err := env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  4,
		UnitPrice: decimal.RequireFromString("25.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	assert.Equal(t, model.TxSale, tx.TransactionType)
	assert.True(t, tx.TotalAmount.Equal(decimal.RequireFromString("100.00")))

	current, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, current.Stock)
	// The sale price does not touch the book's list price.
	assert.True(t, current.Price.Equal(decimal.RequireFromString("35.00")))

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementOut, movements[0].MovementType)
	assert.Equal(t, 10, movements[0].PreviousStock)
	assert.Equal(t, 6, movements[0].NewStock)
	assert.Contains(t, movements[0].Reason, tx.ID.String())
}

func TestRecordSaleInsufficientStockNoPartialWrites(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 10)

	_, err := env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  15,
		UnitPrice: decimal.RequireFromString("25.00"),
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrInsufficientStock)

	current, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, current.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)

	result, err := env.txService.SearchTransactions(&TransactionSearchRequest{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestRecordPurchaseAndReturnIncreaseStock(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 6)

	_, err := env.txService.RecordPurchase(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("15.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	_, err = env.txService.RecordReturn(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("35.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	current, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, current.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	// Newest first: the return, then the purchase.
	assert.Equal(t, model.MovementIn, movements[0].MovementType)
	assert.Contains(t, movements[0].Reason, "Return transaction")
	assert.Contains(t, movements[1].Reason, "Purchase transaction")
}

func TestRecordSaleValidation(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 10)

	_, err := env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  0,
		UnitPrice: decimal.RequireFromString("25.00"),
	}, testActor, "Tester")
	require.Error(t, err)

	_, err = env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  1,
		UnitPrice: decimal.Zero,
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("25.00"),
	}, "", "Tester")
	require.ErrorIs(t, err, ErrMissingActor)
}

func TestSearchTransactionsByType(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 20)

	for i := 0; i < 3; i++ {
		_, err := env.txService.RecordSale(&CreateTransactionRequest{
			BookID:    book.ID,
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("35.00"),
		}, testActor, "Tester")
		require.NoError(t, err)
	}
	_, err := env.txService.RecordPurchase(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  5,
		UnitPrice: decimal.RequireFromString("15.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	result, err := env.txService.SearchTransactions(&TransactionSearchRequest{TransactionType: "SALE"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.TotalCount)

	result, err = env.txService.SearchTransactions(&TransactionSearchRequest{TransactionType: "PURCHASE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.TotalCount)

	_, err = env.txService.SearchTransactions(&TransactionSearchRequest{TransactionType: "TRADE"})
	require.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestGetTransactionByID(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 10)

	tx, err := env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("35.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	found, err := env.txService.GetTransactionByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, found.ID)

	_, err = env.txService.GetTransactionByID(book.ID)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

// A register's worth of concurrent unit sales against limited stock:
// exactly stock-many succeed, the rest fail, and the movement trail has
// no gaps or overlaps.
func TestConcurrentSalesNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 50)

	const attempts = 100
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.txService.RecordSale(&CreateTransactionRequest{
				BookID:    book.ID,
				Quantity:  1,
				UnitPrice: decimal.RequireFromString("35.00"),
			}, testActor, "Tester")
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 50, insufficient)

	current, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 50)
	// Newest first: a contiguous chain from 50 down to 0.
	for i, m := range movements {
		assert.Equal(t, 50-i, m.PreviousStock)
		assert.Equal(t, 49-i, m.NewStock)
	}
}
