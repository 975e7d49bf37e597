package repository

import (
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store. Atomic maps to a database
// transaction, so the FOR UPDATE row lock taken by FindByIDForUpdate is
// held until commit and the put+append pair is durable as one unit.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Books() BookRepository {
	return &bookRepo{db: s.db}
}

func (s *GormStore) PriceHistory() PriceHistoryRepository {
	return &priceHistoryRepo{db: s.db}
}

func (s *GormStore) StockMovements() StockMovementRepository {
	return &stockMovementRepo{db: s.db}
}

func (s *GormStore) Transactions() TransactionRepository {
	return &transactionRepo{db: s.db}
}

func (s *GormStore) Atomic(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
