package service

import (
	"errors"

	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"
	"go-bookstore-api/internal/ws"
	"go-bookstore-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBookRequest struct {
	ISBN          string          `json:"isbn" validate:"required,max=20"`
	Barcode       string          `json:"barcode" validate:"required,max=50"`
	Title         string          `json:"title" validate:"required,max=255"`
	Author        string          `json:"author" validate:"required,max=255"`
	Publisher     string          `json:"publisher" validate:"max=255"`
	Category      string          `json:"category" validate:"max=100"`
	Description   string          `json:"description" validate:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStockLevel *int            `json:"min_stock_level"`
}

type UpdateBookRequest struct {
	ISBN          string          `json:"isbn" validate:"required,max=20"`
	Barcode       string          `json:"barcode" validate:"required,max=50"`
	Title         string          `json:"title" validate:"required,max=255"`
	Author        string          `json:"author" validate:"required,max=255"`
	Publisher     string          `json:"publisher" validate:"max=255"`
	Category      string          `json:"category" validate:"max=100"`
	Description   string          `json:"description" validate:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStockLevel *int            `json:"min_stock_level"`
}

type BookSearchRequest struct {
	SearchTerm   string `query:"search_term"`
	Category     string `query:"category"`
	Author       string `query:"author"`
	LowStockOnly bool   `query:"low_stock_only"`
	PageNumber   int    `query:"page_number"`
	PageSize     int    `query:"page_size"`
}

// PagedResult wraps a page of items with the total count across pages.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookService owns the catalog lifecycle. Creation seeds the price
// trail with a baseline entry; edits route incidental price and stock
// changes through the ledgers so the trails stay complete.
type BookService interface {
	CreateBook(req *CreateBookRequest, actorID string) (*model.Book, error)
	UpdateBook(id uuid.UUID, req *UpdateBookRequest, actorID string) (*model.Book, error)
	DeleteBook(id uuid.UUID, actorID string) error
	GetBook(id uuid.UUID) (*model.Book, error)
	SearchBooks(req *BookSearchRequest) (*PagedResult[model.BookResponse], error)
	GetLowStockBooks() ([]model.BookResponse, error)
	GetPriceHistory(bookID uuid.UUID) ([]model.PriceHistory, error)
}

type bookService struct {
	store       repository.Store
	guard       *BookGuard
	priceLedger *PriceLedger
	hub         *ws.Hub
}

func NewBookService(store repository.Store, guard *BookGuard, priceLedger *PriceLedger, hub *ws.Hub) BookService {
	return &bookService{store: store, guard: guard, priceLedger: priceLedger, hub: hub}
}

func (s *bookService) CreateBook(req *CreateBookRequest, actorID string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	minStock := 5
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, ErrNegativeStock
		}
		minStock = *req.MinStockLevel
	}

	book := &model.Book{
		ISBN:          req.ISBN,
		Barcode:       req.Barcode,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		Category:      req.Category,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		MinStockLevel: minStock,
		Active:        true,
	}
	book.CreatedBy = actorID
	book.UpdatedBy = actorID

	err := s.store.Atomic(func(tx repository.Store) error {
		if err := checkIdentifiersFree(tx, req.ISBN, req.Barcode, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Books().Create(book); err != nil {
			return err
		}

		// Baseline price trail entry: every book's history starts at
		// its creation price.
		baseline := &model.PriceHistory{
			BookID:       book.ID,
			OldPrice:     decimal.Zero,
			NewPrice:     book.Price,
			ChangedBy:    actorID,
			ChangeReason: reasonInitialPrice,
			ChangedAt:    book.CreatedAt,
		}
		baseline.CreatedBy = actorID
		baseline.UpdatedBy = actorID
		return tx.PriceHistory().Append(baseline)
	})
	if err != nil {
		return nil, err
	}

	broadcast(s.hub, map[string]interface{}{
		"type":   "book_update",
		"action": "created",
		"book": map[string]interface{}{
			"id":    book.ID,
			"title": book.Title,
		},
	})

	return book, nil
}

func (s *bookService) UpdateBook(id uuid.UUID, req *UpdateBookRequest, actorID string) (*model.Book, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	release, err := s.guard.Acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *model.Book
	err = s.store.Atomic(func(tx repository.Store) error {
		book, err := loadActiveBookForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := checkIdentifiersFree(tx, req.ISBN, req.Barcode, id); err != nil {
			return err
		}

		book.ISBN = req.ISBN
		book.Barcode = req.Barcode
		book.Title = req.Title
		book.Author = req.Author
		book.Publisher = req.Publisher
		book.Category = req.Category
		book.Description = req.Description
		if req.MinStockLevel != nil {
			if *req.MinStockLevel < 0 {
				return ErrNegativeStock
			}
			book.MinStockLevel = *req.MinStockLevel
		}
		book.UpdatedBy = actorID
		if err := tx.Books().Update(book); err != nil {
			return err
		}

		// Incidental price and stock changes go through the ledgers so
		// the audit trails record them; unchanged values are skipped.
		if err := s.priceLedger.applyEdit(tx, book, req.Price, actorID); err != nil {
			return err
		}
		if book.Stock != req.Stock {
			if _, err := applyMovement(tx, book, model.MovementAdjustment, req.Stock, reasonStockEdit, actorID); err != nil {
				return err
			}
		}

		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcast(s.hub, map[string]interface{}{
		"type":   "book_update",
		"action": "updated",
		"book": map[string]interface{}{
			"id":    updated.ID,
			"title": updated.Title,
		},
	})

	return updated, nil
}

// DeleteBook retires a book from the catalog. The row and both audit
// trails remain queryable.
func (s *bookService) DeleteBook(id uuid.UUID, actorID string) error {
	if actorID == "" {
		return ErrMissingActor
	}

	release, err := s.guard.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	return s.store.Atomic(func(tx repository.Store) error {
		book, err := loadActiveBookForUpdate(tx, id)
		if err != nil {
			return err
		}
		book.Active = false
		book.UpdatedBy = actorID
		return tx.Books().Update(book)
	})
}

func (s *bookService) GetBook(id uuid.UUID) (*model.Book, error) {
	book, err := s.store.Books().FindByID(id)
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

func (s *bookService) SearchBooks(req *BookSearchRequest) (*PagedResult[model.BookResponse], error) {
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

	books, total, err := s.store.Books().Search(repository.BookSearchQuery{
		SearchTerm:   req.SearchTerm,
		Category:     req.Category,
		Author:       req.Author,
		LowStockOnly: req.LowStockOnly,
		Offset:       (page - 1) * size,
		Limit:        size,
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, books[i].ToResponse())
	}
	return &PagedResult[model.BookResponse]{
		Items:      items,
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
	}, nil
}

func (s *bookService) GetLowStockBooks() ([]model.BookResponse, error) {
	books, err := s.store.Books().FindLowStock()
	if err != nil {
		return nil, err
	}
	items := make([]model.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, books[i].ToResponse())
	}
	return items, nil
}

func (s *bookService) GetPriceHistory(bookID uuid.UUID) ([]model.PriceHistory, error) {
	if _, err := s.store.Books().FindByID(bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return s.store.PriceHistory().FindByBookID(bookID)
}

// checkIdentifiersFree rejects an ISBN or barcode already carried by a
// different active book. Retired books release their identifiers.
func checkIdentifiersFree(tx repository.Store, isbn, barcode string, excludeID uuid.UUID) error {
	taken, err := tx.Books().ExistsActiveISBN(isbn, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateISBN
	}
	taken, err = tx.Books().ExistsActiveBarcode(barcode, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateBarcode
	}
	return nil
}
