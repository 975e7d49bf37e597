package handler

import (
	"go-bookstore-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	txService service.TransactionService
}

func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// RecordSale records a sale and decrements stock
// POST /api/v1/transactions/sale
func (h *TransactionHandler) RecordSale(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.txService.RecordSale(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": tx})
}

// RecordPurchase records a supplier purchase and increments stock
// POST /api/v1/transactions/purchase
func (h *TransactionHandler) RecordPurchase(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.txService.RecordPurchase(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Purchase recorded", "data": tx})
}

// RecordReturn records a customer return and increments stock
// POST /api/v1/transactions/return
func (h *TransactionHandler) RecordReturn(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.txService.RecordReturn(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Return recorded", "data": tx})
}

// SearchTransactions returns a filtered, paginated transaction page
// GET /api/v1/transactions
func (h *TransactionHandler) SearchTransactions(c *fiber.Ctx) error {
	var req service.TransactionSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	result, err := h.txService.SearchTransactions(&req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// GetTransaction returns a single transaction
// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.txService.GetTransactionByID(txID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(tx)
}
