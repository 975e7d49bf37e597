package service

import (
	"time"

	"go-bookstore-api/internal/repository"

	"github.com/shopspring/decimal"
)

// FinancialSummary aggregates transaction totals over a date range.
// Income is the sum of sale amounts, expense the sum of purchases.
type FinancialSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type DashboardService interface {
	GetDashboardStats() (*repository.DashboardStats, error)
	GetStockMovement(days int) ([]repository.MovementSeriesPoint, error)
	GetFinancialSummary(start, end time.Time) (*FinancialSummary, error)
}

type dashboardService struct {
	store repository.Store
}

func NewDashboardService(store repository.Store) DashboardService {
	return &dashboardService{store: store}
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	totalBooks, err := s.store.Books().CountActive()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.store.Books().CountLowStock()
	if err != nil {
		return nil, err
	}
	valuation, err := s.store.Books().StockValuation()
	if err != nil {
		return nil, err
	}
	return &repository.DashboardStats{
		TotalBooks:     totalBooks,
		LowStockCount:  lowStock,
		TotalValuation: valuation,
	}, nil
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.MovementSeriesPoint, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.store.StockMovements().DailySeries(startDate, endDate)
}

func (s *dashboardService) GetFinancialSummary(start, end time.Time) (*FinancialSummary, error) {
	income, expense, err := s.store.Transactions().FinancialSummary(start, end)
	if err != nil {
		return nil, err
	}
	return &FinancialSummary{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}, nil
}
