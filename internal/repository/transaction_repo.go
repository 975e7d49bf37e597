package repository

import (
	"errors"
	"time"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(tx *model.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Book").First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) Search(q TransactionSearchQuery) ([]model.Transaction, int64, error) {
	query := r.db.Model(&model.Transaction{})

	if q.BookID != nil {
		query = query.Where("book_id = ?", *q.BookID)
	}
	if q.TransactionType != nil {
		query = query.Where("transaction_type = ?", *q.TransactionType)
	}
	if q.StartDate != nil {
		query = query.Where("transaction_date >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		query = query.Where("transaction_date <= ?", *q.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []model.Transaction
	err := query.Preload("Book").
		Order("transaction_date DESC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&transactions).Error
	return transactions, total, err
}

// FinancialSummary sums sale income and purchase expense over a range.
func (r *transactionRepo) FinancialSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var income decimal.Decimal
	var expense decimal.Decimal

	err := r.db.Model(&model.Transaction{}).
		Where("transaction_type = ? AND transaction_date BETWEEN ? AND ?", model.TxSale, startDate, endDate).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&income).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	err = r.db.Model(&model.Transaction{}).
		Where("transaction_type = ? AND transaction_date BETWEEN ? AND ?", model.TxPurchase, startDate, endDate).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&expense).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return income, expense, nil
}
