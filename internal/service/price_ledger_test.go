package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookSeedsPriceTrail(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].OldPrice.IsZero())
	assert.True(t, history[0].NewPrice.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, "Initial price", history[0].ChangeReason)
	assert.Equal(t, testActor, history[0].ChangedBy)
}

func TestChangePriceAppendsEntry(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	updated, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice:     decimal.RequireFromString("39.99"),
		ChangeReason: "Summer sale",
	}, testActor, "Tester")
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("39.99")))

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.True(t, history[0].OldPrice.Equal(decimal.RequireFromString("45.50")))
	assert.True(t, history[0].NewPrice.Equal(decimal.RequireFromString("39.99")))
	assert.Equal(t, "Summer sale", history[0].ChangeReason)
}

func TestChangePriceSameValueRejected(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice: decimal.RequireFromString("45.50"),
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrSamePrice)

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChangePriceNonPositiveRejected(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	for _, price := range []string{"0", "-1.00"} {
		_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
			NewPrice: decimal.RequireFromString(price),
		}, testActor, "Tester")
		require.ErrorIs(t, err, ErrInvalidPrice)
	}
}

func TestChangePriceDefaultReason(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice: decimal.RequireFromString("50.00"),
	}, testActor, "Tester")
	require.NoError(t, err)

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Price update", history[0].ChangeReason)
}

func TestChangePriceRequiresActor(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice: decimal.RequireFromString("50.00"),
	}, "", "Tester")
	require.ErrorIs(t, err, ErrMissingActor)
}

func TestIncidentalPriceEditSkipsEqualValue(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	// Same price through the book edit flow is a silent no-op, not an
	// error, and appends nothing.
	_, err := env.books.UpdateBook(book.ID, &UpdateBookRequest{
		ISBN:    book.ISBN,
		Barcode: book.Barcode,
		Title:   book.Title,
		Author:  book.Author,
		Price:   decimal.RequireFromString("45.50"),
		Stock:   10,
	}, testActor)
	require.NoError(t, err)

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIncidentalPriceEditAppendsEntry(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)

	updated, err := env.books.UpdateBook(book.ID, &UpdateBookRequest{
		ISBN:    book.ISBN,
		Barcode: book.Barcode,
		Title:   book.Title,
		Author:  book.Author,
		Price:   decimal.RequireFromString("42.00"),
		Stock:   10,
	}, testActor)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("42.00")))

	history, err := env.books.GetPriceHistory(book.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Book update", history[0].ChangeReason)
}

func TestChangePriceUnknownBook(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "The Go Programming Language", "978-0134190440", "45.50", 10)
	require.NoError(t, env.books.DeleteBook(book.ID, testActor))

	_, err := env.priceLedger.ChangePrice(book.ID, &UpdatePriceRequest{
		NewPrice: decimal.RequireFromString("50.00"),
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrBookNotFound)
}
