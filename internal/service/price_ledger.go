package service

import (
	"time"

	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"
	"go-bookstore-api/internal/ws"
	"go-bookstore-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdatePriceRequest is the body of the explicit price change endpoint.
type UpdatePriceRequest struct {
	NewPrice     decimal.Decimal `json:"new_price"`
	ChangeReason string          `json:"change_reason" validate:"max=500"`
}

// PriceLedger validates and applies price changes, writing the new
// price and its PriceHistory entry as one atomic unit.
//
// It has two entry points with different no-op policy: ChangePrice (a
// dedicated price change, where an unchanged value is an error) and
// applyEdit (price changed as part of a general book edit, where an
// unchanged value is silently skipped). Both share applyPriceChange.
type PriceLedger struct {
	store repository.Store
	guard *BookGuard
	hub   *ws.Hub
}

func NewPriceLedger(store repository.Store, guard *BookGuard, hub *ws.Hub) *PriceLedger {
	return &PriceLedger{store: store, guard: guard, hub: hub}
}

// ChangePrice is the explicit entry point: submitting the current price
// again fails with ErrSamePrice.
func (l *PriceLedger) ChangePrice(bookID uuid.UUID, req *UpdatePriceRequest, actorID, actorName string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if req.NewPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	release, err := l.guard.Acquire(bookID)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *model.Book
	var oldPrice decimal.Decimal
	err = l.store.Atomic(func(tx repository.Store) error {
		book, err := loadActiveBookForUpdate(tx, bookID)
		if err != nil {
			return err
		}
		if book.Price.Equal(req.NewPrice) {
			return ErrSamePrice
		}

		reason := req.ChangeReason
		if reason == "" {
			reason = reasonPriceUpdate
		}

		oldPrice = book.Price
		if err := applyPriceChange(tx, book, req.NewPrice, reason, actorID); err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcast(l.hub, map[string]interface{}{
		"type":   "price_update",
		"action": "price_changed",
		"book": map[string]interface{}{
			"id":        updated.ID,
			"title":     updated.Title,
			"old_price": oldPrice,
			"new_price": updated.Price,
		},
		"user": map[string]interface{}{
			"id":   actorID,
			"name": actorName,
		},
	})

	return updated, nil
}

// applyEdit is the incidental entry point used by the book edit flow.
// The caller holds the guard and runs inside an atomic unit already.
func (l *PriceLedger) applyEdit(tx repository.Store, book *model.Book, newPrice decimal.Decimal, actorID string) error {
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidPrice
	}
	if book.Price.Equal(newPrice) {
		return nil
	}
	return applyPriceChange(tx, book, newPrice, reasonBookEdit, actorID)
}

// applyPriceChange updates the book's price and appends the matching
// history entry inside the caller's atomic unit. Every accepted price
// change goes through here, so each one produces exactly one entry.
func applyPriceChange(tx repository.Store, book *model.Book, newPrice decimal.Decimal, reason, actorID string) error {
	entry := &model.PriceHistory{
		BookID:       book.ID,
		OldPrice:     book.Price,
		NewPrice:     newPrice,
		ChangedBy:    actorID,
		ChangeReason: reason,
		ChangedAt:    time.Now(),
	}
	entry.CreatedBy = actorID
	entry.UpdatedBy = actorID

	book.Price = newPrice
	book.UpdatedBy = actorID

	if err := tx.Books().Update(book); err != nil {
		return err
	}
	return tx.PriceHistory().Append(entry)
}
