package service

import (
	"errors"

	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"

	"github.com/google/uuid"
)

// System reason strings written to the audit trail.
const (
	reasonInitialPrice = "Initial price"
	reasonPriceUpdate  = "Price update"
	reasonBookEdit     = "Book update"
	reasonStockEdit    = "Stock update"
)

// loadActiveBookForUpdate loads a book inside an atomic unit with the
// row locked. Missing and soft-deleted books are indistinguishable to
// callers of the mutation path.
func loadActiveBookForUpdate(tx repository.Store, id uuid.UUID) (*model.Book, error) {
	book, err := tx.Books().FindByIDForUpdate(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if !book.Active {
		return nil, ErrBookNotFound
	}
	return book, nil
}
