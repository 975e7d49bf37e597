package service

import (
	"errors"
	"fmt"

	"go-bookstore-api/pkg/validator"
)

// Ledger error taxonomy. All validation and invariant failures surface
// as one of these sentinels so handlers can map them with errors.Is.
var (
	ErrBookNotFound           = errors.New("book not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
	ErrInvalidPrice           = errors.New("price must be greater than zero")
	ErrInvalidMovementType    = errors.New("invalid stock movement type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInsufficientStock      = errors.New("insufficient stock remaining")
	ErrSamePrice              = errors.New("new price is the same as the current price")
	ErrDuplicateISBN          = errors.New("ISBN already in use")
	ErrDuplicateBarcode       = errors.New("barcode already in use")
	ErrNegativeStock          = errors.New("stock quantity cannot be negative")
	ErrMissingActor           = errors.New("acting user id is required")
	ErrConflict               = errors.New("book is locked by a concurrent operation")
)

func validationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}
