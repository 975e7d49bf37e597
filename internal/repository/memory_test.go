package repository

import (
	"errors"
	"testing"
	"time"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBook(t *testing.T, store *MemoryStore, title string, price string, stock int) *model.Book {
	t.Helper()
	book := &model.Book{
		Title:  title,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	book.MinStockLevel = 5
	require.NoError(t, store.Books().Create(book))
	return book
}

func TestAtomicRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	book := seedBook(t, store, "Rollback", "10.00", 10)

	boom := errors.New("boom")
	err := store.Atomic(func(tx Store) error {
		b, err := tx.Books().FindByIDForUpdate(book.ID)
		if err != nil {
			return err
		}
		b.Stock = 0
		if err := tx.Books().Update(b); err != nil {
			return err
		}
		if err := tx.StockMovements().Append(&model.StockMovement{
			BookID:       book.ID,
			MovementType: model.MovementOut,
			Quantity:     10,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both the update and the append are gone.
	current, err := store.Books().FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, current.Stock)
	movements, err := store.StockMovements().FindByBookID(book.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	store := NewMemoryStore()
	book := seedBook(t, store, "Commit", "10.00", 10)

	err := store.Atomic(func(tx Store) error {
		b, err := tx.Books().FindByIDForUpdate(book.ID)
		if err != nil {
			return err
		}
		b.Stock = 7
		return tx.Books().Update(b)
	})
	require.NoError(t, err)

	current, err := store.Books().FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, current.Stock)
}

func TestNestedAtomicJoinsOuterUnit(t *testing.T) {
	store := NewMemoryStore()
	book := seedBook(t, store, "Nested", "10.00", 10)

	err := store.Atomic(func(tx Store) error {
		return tx.Atomic(func(inner Store) error {
			b, err := inner.Books().FindByID(book.ID)
			if err != nil {
				return err
			}
			b.Stock = 3
			return inner.Books().Update(b)
		})
	})
	require.NoError(t, err)

	current, err := store.Books().FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Stock)
}

func TestFindByIDNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Books().FindByID(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStockValuationSkipsInactive(t *testing.T) {
	store := NewMemoryStore()
	seedBook(t, store, "Active", "10.00", 3)
	retired := seedBook(t, store, "Retired", "100.00", 3)
	retired.Active = false
	require.NoError(t, store.Books().Update(retired))

	valuation, err := store.Books().StockValuation()
	require.NoError(t, err)
	assert.True(t, valuation.Equal(decimal.RequireFromString("30.00")))

	count, err := store.Books().CountActive()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFinancialSummary(t *testing.T) {
	store := NewMemoryStore()
	book := seedBook(t, store, "Ledger", "10.00", 10)

	now := time.Now()
	entries := []model.Transaction{
		{TransactionType: model.TxSale, BookID: book.ID, TotalAmount: decimal.RequireFromString("30.00"), TransactionDate: now},
		{TransactionType: model.TxSale, BookID: book.ID, TotalAmount: decimal.RequireFromString("20.00"), TransactionDate: now},
		{TransactionType: model.TxPurchase, BookID: book.ID, TotalAmount: decimal.RequireFromString("15.00"), TransactionDate: now},
		// Returns are neither income nor expense.
		{TransactionType: model.TxReturn, BookID: book.ID, TotalAmount: decimal.RequireFromString("99.00"), TransactionDate: now},
	}
	for i := range entries {
		require.NoError(t, store.Transactions().Create(&entries[i]))
	}

	income, expense, err := store.Transactions().FinancialSummary(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, expense.Equal(decimal.RequireFromString("15.00")))
}

func TestDailySeriesAggregatesInOut(t *testing.T) {
	store := NewMemoryStore()
	book := seedBook(t, store, "Series", "10.00", 10)

	movements := []model.StockMovement{
		{BookID: book.ID, MovementType: model.MovementIn, Quantity: 5},
		{BookID: book.ID, MovementType: model.MovementOut, Quantity: 2},
		{BookID: book.ID, MovementType: model.MovementAdjustment, Quantity: 9},
	}
	for i := range movements {
		require.NoError(t, store.StockMovements().Append(&movements[i]))
	}

	series, err := store.StockMovements().DailySeries(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 5, series[0].Inbound)
	assert.Equal(t, 2, series[0].Outbound)
}
