package service

import (
	"testing"

	"go-bookstore-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookDefaults(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)

	assert.Equal(t, 5, book.MinStockLevel)
	assert.True(t, book.Active)
	assert.Equal(t, testActor, book.CreatedBy)
}

func TestCreateBookDuplicateIdentifiers(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)

	_, err := env.books.CreateBook(&CreateBookRequest{
		ISBN:    "978-0134757599",
		Barcode: "BC-other",
		Title:   "Another",
		Author:  "Someone",
		Price:   decimal.RequireFromString("10.00"),
	}, testActor)
	require.ErrorIs(t, err, ErrDuplicateISBN)

	_, err = env.books.CreateBook(&CreateBookRequest{
		ISBN:    "978-other",
		Barcode: "BC-978-0134757599",
		Title:   "Another",
		Author:  "Someone",
		Price:   decimal.RequireFromString("10.00"),
	}, testActor)
	require.ErrorIs(t, err, ErrDuplicateBarcode)
}

func TestDeletedBookReleasesIdentifiers(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)
	require.NoError(t, env.books.DeleteBook(book.ID, testActor))

	// The retired book no longer claims its ISBN or barcode.
	replacement, err := env.books.CreateBook(&CreateBookRequest{
		ISBN:    "978-0134757599",
		Barcode: "BC-978-0134757599",
		Title:   "Refactoring, Second Edition",
		Author:  "Martin Fowler",
		Price:   decimal.RequireFromString("52.00"),
	}, testActor)
	require.NoError(t, err)
	assert.NotEqual(t, book.ID, replacement.ID)
}

func TestCreateBookInvalidPrice(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.books.CreateBook(&CreateBookRequest{
		ISBN:    "978-1",
		Barcode: "BC-1",
		Title:   "Free Book",
		Author:  "Nobody",
		Price:   decimal.Zero,
	}, testActor)
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestUpdateBookIncidentalStockChange(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)

	updated, err := env.books.UpdateBook(book.ID, &UpdateBookRequest{
		ISBN:    book.ISBN,
		Barcode: book.Barcode,
		Title:   book.Title,
		Author:  book.Author,
		Price:   book.Price,
		Stock:   8,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements[0].MovementType)
	assert.Equal(t, 4, movements[0].Quantity)
	assert.Equal(t, "Stock update", movements[0].Reason)
}

func TestUpdateBookUnchangedStockNoMovement(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)

	_, err := env.books.UpdateBook(book.ID, &UpdateBookRequest{
		ISBN:    book.ISBN,
		Barcode: book.Barcode,
		Title:   "Refactoring (annotated)",
		Author:  book.Author,
		Price:   book.Price,
		Stock:   12,
	}, testActor)
	require.NoError(t, err)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestUpdateBookDuplicateISBNOfOtherBook(t *testing.T) {
	env := newTestEnv(t)
	first := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)
	second := env.seedBook(t, "Clean Code", "978-0132350884", "35.00", 10)

	_, err := env.books.UpdateBook(second.ID, &UpdateBookRequest{
		ISBN:    first.ISBN,
		Barcode: second.Barcode,
		Title:   second.Title,
		Author:  second.Author,
		Price:   second.Price,
		Stock:   second.Stock,
	}, testActor)
	require.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestDeleteBookKeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)

	_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice: decimal.RequireFromString("44.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	require.NoError(t, env.books.DeleteBook(book.ID, testActor))

	_, err = env.books.GetBook(book.ID)
	require.ErrorIs(t, err, ErrBookNotFound)

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestDeletedBookRejectsMutations(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Refactoring", "978-0134757599", "47.99", 12)
	require.NoError(t, env.books.DeleteBook(book.ID, testActor))

	_, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "IN",
		Quantity:     1,
		Reason:       "late shipment",
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrBookNotFound)

	_, err = env.txService.RecordSale(&CreateTransactionRequest{
		BookID:    book.ID,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("47.99"),
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestSearchBooksPagination(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "A Tour of Go", "978-1", "10.00", 10)
	env.seedBook(t, "B Tree Design", "978-2", "20.00", 10)
	env.seedBook(t, "C Interfaces", "978-3", "30.00", 10)

	result, err := env.books.SearchBooks(&BookSearchRequest{PageNumber: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.TotalCount)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "A Tour of Go", result.Items[0].Title)

	result, err = env.books.SearchBooks(&BookSearchRequest{PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "C Interfaces", result.Items[0].Title)
}

func TestSearchBooksTermMatchesISBNBarcodeTitle(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "A Tour of Go", "978-1111", "10.00", 10)
	env.seedBook(t, "Database Internals", "978-2222", "20.00", 10)

	result, err := env.books.SearchBooks(&BookSearchRequest{SearchTerm: "tour"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.TotalCount)

	result, err = env.books.SearchBooks(&BookSearchRequest{SearchTerm: "2222"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.TotalCount)
	assert.Equal(t, "Database Internals", result.Items[0].Title)
}

func TestLowStockList(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "Plenty", "978-1", "10.00", 50)
	low := env.seedBook(t, "Scarce", "978-2", "20.00", 2)

	books, err := env.books.GetLowStockBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, low.ID, books[0].ID)
	assert.True(t, books[0].IsLowStock)
}
