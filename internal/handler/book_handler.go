package handler

import (
	"errors"

	"go-bookstore-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookHandler struct {
	bookService service.BookService
	priceLedger *service.PriceLedger
	stockLedger *service.StockLedger
}

func NewBookHandler(bookService service.BookService, priceLedger *service.PriceLedger, stockLedger *service.StockLedger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		priceLedger: priceLedger,
		stockLedger: stockLedger,
	}
}

// Helpers to pull user info from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return ""
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

// statusForError maps the service error taxonomy to HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrTransactionNotFound):
		return 404
	case errors.Is(err, service.ErrDuplicateISBN),
		errors.Is(err, service.ErrDuplicateBarcode),
		errors.Is(err, service.ErrConflict):
		return 409
	default:
		return 400
	}
}

// CreateBook registers a new book and seeds its price trail
// POST /api/v1/books
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var req service.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	book, err := h.bookService.CreateBook(&req, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Book created", "data": book.ToResponse()})
}

// UpdateBook edits book metadata; price and stock changes flow through
// the ledgers
// PUT /api/v1/books/:id
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	var req service.UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	book, err := h.bookService.UpdateBook(bookID, &req, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Book updated", "data": book.ToResponse()})
}

// DeleteBook retires a book; its audit trails stay queryable
// DELETE /api/v1/books/:id
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	if err := h.bookService.DeleteBook(bookID, getUserID(c)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Book deleted"})
}

// GetBook returns a single active book
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	book, err := h.bookService.GetBook(bookID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(book.ToResponse())
}

// SearchBooks returns a paginated catalog page
// GET /api/v1/books
func (h *BookHandler) SearchBooks(c *fiber.Ctx) error {
	var req service.BookSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	result, err := h.bookService.SearchBooks(&req)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to search books"})
	}

	return c.JSON(result)
}

// GetLowStockBooks lists active books at or below their minimum level
// GET /api/v1/books/low-stock
func (h *BookHandler) GetLowStockBooks(c *fiber.Ctx) error {
	books, err := h.bookService.GetLowStockBooks()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch low stock books"})
	}
	return c.JSON(books)
}

// UpdatePrice records an explicit price change
// PUT /api/v1/books/:id/price
func (h *BookHandler) UpdatePrice(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	var req service.UpdatePriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	book, err := h.priceLedger.ChangePrice(bookID, &req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Price updated", "data": book.ToResponse()})
}

// GetPriceHistory returns the book's price trail, newest first
// GET /api/v1/books/:id/price-history
func (h *BookHandler) GetPriceHistory(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	history, err := h.bookService.GetPriceHistory(bookID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(history)
}

// UpdateStock records a manual stock movement
// PUT /api/v1/books/:id/stock
func (h *BookHandler) UpdateStock(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	var req service.UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	book, err := h.stockLedger.ChangeStock(bookID, &req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Stock updated", "data": book.ToResponse()})
}

// GetStockMovements returns the book's movement trail, newest first
// GET /api/v1/books/:id/stock-movements
func (h *BookHandler) GetStockMovements(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	movements, err := h.stockLedger.GetMovements(bookID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(movements)
}
