package service

import (
	"errors"
	"fmt"
	"time"

	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"
	"go-bookstore-api/internal/ws"
	"go-bookstore-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	BookID    uuid.UUID       `json:"book_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes" validate:"max=500"`
}

type TransactionSearchRequest struct {
	BookID          string `query:"book_id"`
	TransactionType string `query:"transaction_type"`
	StartDate       string `query:"start_date"`
	EndDate         string `query:"end_date"`
	PageNumber      int    `query:"page_number"`
	PageSize        int    `query:"page_size"`
}

// TransactionService records sales, purchases and returns. Each
// transaction atomically writes the transaction row, the stock change
// and its movement entry; a sale that would drive stock negative is
// rejected wholly, leaving no partial writes.
type TransactionService interface {
	RecordSale(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error)
	RecordPurchase(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error)
	RecordReturn(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error)
	GetTransactionByID(id uuid.UUID) (*model.Transaction, error)
	SearchTransactions(req *TransactionSearchRequest) (*PagedResult[model.Transaction], error)
}

type transactionService struct {
	store repository.Store
	guard *BookGuard
	hub   *ws.Hub
}

func NewTransactionService(store repository.Store, guard *BookGuard, hub *ws.Hub) TransactionService {
	return &transactionService{store: store, guard: guard, hub: hub}
}

func (s *transactionService) RecordSale(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error) {
	return s.record(model.TxSale, req, actorID, actorName)
}

func (s *transactionService) RecordPurchase(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error) {
	return s.record(model.TxPurchase, req, actorID, actorName)
}

func (s *transactionService) RecordReturn(req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error) {
	return s.record(model.TxReturn, req, actorID, actorName)
}

func (s *transactionService) record(txType model.TransactionType, req *CreateTransactionRequest, actorID, actorName string) (*model.Transaction, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	release, err := s.guard.Acquire(req.BookID)
	if err != nil {
		return nil, err
	}
	defer release()

	var transaction *model.Transaction
	var book *model.Book
	err = s.store.Atomic(func(tx repository.Store) error {
		var err error
		book, err = loadActiveBookForUpdate(tx, req.BookID)
		if err != nil {
			return err
		}

		// The id is assigned up front so the movement reason can
		// reference the transaction it belongs to.
		transaction = &model.Transaction{
			TransactionType: txType,
			BookID:          book.ID,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			TotalAmount:     req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			TransactionDate: time.Now(),
			Notes:           req.Notes,
			Active:          true,
		}
		transaction.ID = uuid.New()
		transaction.CreatedBy = actorID
		transaction.UpdatedBy = actorID

		movementType := model.MovementIn
		if txType == model.TxSale {
			movementType = model.MovementOut
		}
		reason := movementReason(txType, transaction.ID)
		if _, err := applyMovement(tx, book, movementType, req.Quantity, reason, actorID); err != nil {
			return err
		}

		return tx.Transactions().Create(transaction)
	})
	if err != nil {
		return nil, err
	}

	broadcast(s.hub, map[string]interface{}{
		"type":   "transaction",
		"action": "recorded",
		"transaction": map[string]interface{}{
			"id":               transaction.ID,
			"transaction_type": transaction.TransactionType,
			"quantity":         transaction.Quantity,
			"total_amount":     transaction.TotalAmount,
		},
		"book": map[string]interface{}{
			"id":           book.ID,
			"title":        book.Title,
			"stock":        book.Stock,
			"is_low_stock": book.IsLowStock(),
		},
		"user": map[string]interface{}{
			"id":   actorID,
			"name": actorName,
		},
	})

	return transaction, nil
}

func movementReason(txType model.TransactionType, id uuid.UUID) string {
	switch txType {
	case model.TxSale:
		return fmt.Sprintf("Sale transaction %s", id)
	case model.TxPurchase:
		return fmt.Sprintf("Purchase transaction %s", id)
	default:
		return fmt.Sprintf("Return transaction %s", id)
	}
}

func (s *transactionService) GetTransactionByID(id uuid.UUID) (*model.Transaction, error) {
	transaction, err := s.store.Transactions().FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (s *transactionService) SearchTransactions(req *TransactionSearchRequest) (*PagedResult[model.Transaction], error) {
	query := repository.TransactionSearchQuery{}

	if req.BookID != "" {
		id, err := uuid.Parse(req.BookID)
		if err != nil {
			return nil, ErrBookNotFound
		}
		query.BookID = &id
	}
	if req.TransactionType != "" {
		txType, ok := model.ParseTransactionType(req.TransactionType)
		if !ok {
			return nil, ErrInvalidTransactionType
		}
		query.TransactionType = &txType
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		query.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		query.EndDate = &end
	}

	page := req.PageNumber
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	query.Offset = (page - 1) * size
	query.Limit = size

	transactions, total, err := s.store.Transactions().Search(query)
	if err != nil {
		return nil, err
	}
	return &PagedResult[model.Transaction]{
		Items:      transactions,
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
	}, nil
}
