package service

import (
	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"
	"go-bookstore-api/internal/ws"
	"go-bookstore-api/pkg/validator"

	"github.com/google/uuid"
)

// UpdateStockRequest is the body of the manual stock movement endpoint.
type UpdateStockRequest struct {
	MovementType string `json:"movement_type" validate:"required"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason" validate:"required,max=500"`
}

// StockLedger applies stock movements. Every change to a book's stock,
// manual or transaction-driven, produces exactly one StockMovement
// entry recording the before and after quantities.
type StockLedger struct {
	store repository.Store
	guard *BookGuard
	hub   *ws.Hub
}

func NewStockLedger(store repository.Store, guard *BookGuard, hub *ws.Hub) *StockLedger {
	return &StockLedger{store: store, guard: guard, hub: hub}
}

// ChangeStock applies a manual movement of any kind. The quantity is
// interpreted per movement type: IN and OUT are deltas, ADJUSTMENT is
// the absolute target quantity.
func (l *StockLedger) ChangeStock(bookID uuid.UUID, req *UpdateStockRequest, actorID, actorName string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	movementType, ok := model.ParseMovementType(req.MovementType)
	if !ok {
		return nil, ErrInvalidMovementType
	}
	return l.apply(bookID, movementType, req.Quantity, req.Reason, actorID, actorName)
}

// SetStock records the book's stock at an absolute target quantity,
// written to the trail as an ADJUSTMENT.
func (l *StockLedger) SetStock(bookID uuid.UUID, target int, reason, actorID, actorName string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if reason == "" {
		reason = reasonStockEdit
	}
	return l.apply(bookID, model.MovementAdjustment, target, reason, actorID, actorName)
}

// AdjustStock moves the book's stock by a signed delta, written to the
// trail as an ADJUSTMENT against the resulting target quantity.
func (l *StockLedger) AdjustStock(bookID uuid.UUID, delta int, reason, actorID, actorName string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if reason == "" {
		reason = reasonStockEdit
	}

	release, err := l.guard.Acquire(bookID)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *model.Book
	var movement *model.StockMovement
	err = l.store.Atomic(func(tx repository.Store) error {
		book, err := loadActiveBookForUpdate(tx, bookID)
		if err != nil {
			return err
		}
		movement, err = applyMovement(tx, book, model.MovementAdjustment, book.Stock+delta, reason, actorID)
		if err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.notify(updated, movement, actorID, actorName)
	return updated, nil
}

func (l *StockLedger) apply(bookID uuid.UUID, movementType model.MovementType, quantity int, reason, actorID, actorName string) (*model.Book, error) {
	release, err := l.guard.Acquire(bookID)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *model.Book
	var movement *model.StockMovement
	err = l.store.Atomic(func(tx repository.Store) error {
		book, err := loadActiveBookForUpdate(tx, bookID)
		if err != nil {
			return err
		}
		movement, err = applyMovement(tx, book, movementType, quantity, reason, actorID)
		if err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.notify(updated, movement, actorID, actorName)
	return updated, nil
}

func (l *StockLedger) notify(book *model.Book, movement *model.StockMovement, actorID, actorName string) {
	broadcast(l.hub, map[string]interface{}{
		"type":   "stock_update",
		"action": "stock_changed",
		"book": map[string]interface{}{
			"id":             book.ID,
			"title":          book.Title,
			"movement_type":  movement.MovementType,
			"previous_stock": movement.PreviousStock,
			"new_stock":      movement.NewStock,
			"is_low_stock":   book.IsLowStock(),
		},
		"user": map[string]interface{}{
			"id":   actorID,
			"name": actorName,
		},
	})
}

// GetMovements returns the book's stock movement trail, newest first.
func (l *StockLedger) GetMovements(bookID uuid.UUID) ([]model.StockMovement, error) {
	if err := l.ensureBookExists(bookID); err != nil {
		return nil, err
	}
	return l.store.StockMovements().FindByBookID(bookID)
}

func (l *StockLedger) ensureBookExists(bookID uuid.UUID) error {
	_, err := l.store.Books().FindByID(bookID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}

// applyMovement mutates the book's stock and appends the movement entry
// inside the caller's atomic unit. IN and OUT quantities are positive
// deltas; ADJUSTMENT quantity is the absolute target, and the recorded
// Quantity becomes the magnitude of the resulting difference.
func applyMovement(tx repository.Store, book *model.Book, movementType model.MovementType, quantity int, reason, actorID string) (*model.StockMovement, error) {
	previous := book.Stock
	var next int

	switch movementType {
	case model.MovementIn:
		if quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		next = previous + quantity
	case model.MovementOut:
		if quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		next = previous - quantity
		if next < 0 {
			return nil, ErrInsufficientStock
		}
	case model.MovementAdjustment:
		if quantity < 0 {
			return nil, ErrNegativeStock
		}
		next = quantity
		quantity = next - previous
		if quantity < 0 {
			quantity = -quantity
		}
	default:
		return nil, ErrInvalidMovementType
	}

	entry := &model.StockMovement{
		BookID:        book.ID,
		MovementType:  movementType,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      next,
		Reason:        reason,
	}
	entry.CreatedBy = actorID
	entry.UpdatedBy = actorID

	book.Stock = next
	book.UpdatedBy = actorID

	if err := tx.Books().Update(book); err != nil {
		return nil, err
	}
	if err := tx.StockMovements().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}
