package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go-bookstore-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store for tests and local development.
// Atomic is simulated with a global lock plus snapshot/rollback, which
// gives the same guarantee as the database transaction in GormStore:
// the book update and its audit appends become visible together or not
// at all.
type MemoryStore struct {
	mu           sync.RWMutex
	books        map[uuid.UUID]model.Book
	priceHistory []model.PriceHistory
	movements    []model.StockMovement
	transactions []model.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[uuid.UUID]model.Book),
	}
}

func (s *MemoryStore) Books() BookRepository {
	return &memBookRepo{s: s, locking: true}
}

func (s *MemoryStore) PriceHistory() PriceHistoryRepository {
	return &memPriceHistoryRepo{s: s, locking: true}
}

func (s *MemoryStore) StockMovements() StockMovementRepository {
	return &memStockMovementRepo{s: s, locking: true}
}

func (s *MemoryStore) Transactions() TransactionRepository {
	return &memTransactionRepo{s: s, locking: true}
}

func (s *MemoryStore) Atomic(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(&memView{s: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	books        map[uuid.UUID]model.Book
	priceHistory []model.PriceHistory
	movements    []model.StockMovement
	transactions []model.Transaction
}

func (s *MemoryStore) snapshot() memSnapshot {
	books := make(map[uuid.UUID]model.Book, len(s.books))
	for id, b := range s.books {
		books[id] = b
	}
	return memSnapshot{
		books:        books,
		priceHistory: append([]model.PriceHistory(nil), s.priceHistory...),
		movements:    append([]model.StockMovement(nil), s.movements...),
		transactions: append([]model.Transaction(nil), s.transactions...),
	}
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.books = snap.books
	s.priceHistory = snap.priceHistory
	s.movements = snap.movements
	s.transactions = snap.transactions
}

// memView is the Store handed to Atomic callbacks. The outer lock is
// already held, so its repositories skip locking; a nested Atomic joins
// the current unit instead of deadlocking.
type memView struct {
	s *MemoryStore
}

func (v *memView) Books() BookRepository {
	return &memBookRepo{s: v.s}
}

func (v *memView) PriceHistory() PriceHistoryRepository {
	return &memPriceHistoryRepo{s: v.s}
}

func (v *memView) StockMovements() StockMovementRepository {
	return &memStockMovementRepo{s: v.s}
}

func (v *memView) Transactions() TransactionRepository {
	return &memTransactionRepo{s: v.s}
}

func (v *memView) Atomic(fn func(Store) error) error {
	return fn(v)
}

// stamp fills in the fields the gorm BeforeCreate hook would set.
func stamp(base *model.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// ---------------------------------------------------------------------
// Books

type memBookRepo struct {
	s       *MemoryStore
	locking bool
}

func (r *memBookRepo) lock() func() {
	if r.locking {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memBookRepo) rlock() func() {
	if r.locking {
		r.s.mu.RLock()
		return r.s.mu.RUnlock
	}
	return func() {}
}

func (r *memBookRepo) Create(book *model.Book) error {
	defer r.lock()()
	stamp(&book.BaseModel)
	r.s.books[book.ID] = *book
	return nil
}

func (r *memBookRepo) FindByID(id uuid.UUID) (*model.Book, error) {
	defer r.rlock()()
	book, ok := r.s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &book, nil
}

// The per-book serialization is enforced by the service-level guard, so
// the memory store has no separate row lock.
func (r *memBookRepo) FindByIDForUpdate(id uuid.UUID) (*model.Book, error) {
	return r.FindByID(id)
}

func (r *memBookRepo) Update(book *model.Book) error {
	defer r.lock()()
	if _, ok := r.s.books[book.ID]; !ok {
		return ErrNotFound
	}
	book.UpdatedAt = time.Now()
	r.s.books[book.ID] = *book
	return nil
}

func (r *memBookRepo) ExistsActiveISBN(isbn string, excludeID uuid.UUID) (bool, error) {
	defer r.rlock()()
	for _, b := range r.s.books {
		if b.Active && b.ISBN == isbn && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookRepo) ExistsActiveBarcode(barcode string, excludeID uuid.UUID) (bool, error) {
	defer r.rlock()()
	for _, b := range r.s.books {
		if b.Active && b.Barcode == barcode && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookRepo) Search(q BookSearchQuery) ([]model.Book, int64, error) {
	defer r.rlock()()

	contains := func(haystack, needle string) bool {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}

	var matched []model.Book
	for _, b := range r.s.books {
		if !b.Active {
			continue
		}
		if q.SearchTerm != "" &&
			!contains(b.ISBN, q.SearchTerm) &&
			!contains(b.Barcode, q.SearchTerm) &&
			!contains(b.Title, q.SearchTerm) {
			continue
		}
		if q.Category != "" && b.Category != q.Category {
			continue
		}
		if q.Author != "" && !contains(b.Author, q.Author) {
			continue
		}
		if q.LowStockOnly && !b.IsLowStock() {
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func (r *memBookRepo) FindLowStock() ([]model.Book, error) {
	defer r.rlock()()
	var books []model.Book
	for _, b := range r.s.books {
		if b.Active && b.IsLowStock() {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Stock < books[j].Stock })
	return books, nil
}

func (r *memBookRepo) CountActive() (int64, error) {
	defer r.rlock()()
	var count int64
	for _, b := range r.s.books {
		if b.Active {
			count++
		}
	}
	return count, nil
}

func (r *memBookRepo) CountLowStock() (int64, error) {
	defer r.rlock()()
	var count int64
	for _, b := range r.s.books {
		if b.Active && b.IsLowStock() {
			count++
		}
	}
	return count, nil
}

func (r *memBookRepo) StockValuation() (decimal.Decimal, error) {
	defer r.rlock()()
	valuation := decimal.Zero
	for _, b := range r.s.books {
		if b.Active {
			valuation = valuation.Add(b.Price.Mul(decimal.NewFromInt(int64(b.Stock))))
		}
	}
	return valuation, nil
}

// ---------------------------------------------------------------------
// Price history

type memPriceHistoryRepo struct {
	s       *MemoryStore
	locking bool
}

func (r *memPriceHistoryRepo) Append(entry *model.PriceHistory) error {
	if r.locking {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	stamp(&entry.BaseModel)
	r.s.priceHistory = append(r.s.priceHistory, *entry)
	return nil
}

func (r *memPriceHistoryRepo) FindByBookID(bookID uuid.UUID) ([]model.PriceHistory, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	var history []model.PriceHistory
	for _, h := range r.s.priceHistory {
		if h.BookID == bookID {
			history = append(history, h)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].ChangedAt.After(history[j].ChangedAt) })
	return history, nil
}

// ---------------------------------------------------------------------
// Stock movements

type memStockMovementRepo struct {
	s       *MemoryStore
	locking bool
}

func (r *memStockMovementRepo) Append(movement *model.StockMovement) error {
	if r.locking {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	stamp(&movement.BaseModel)
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *memStockMovementRepo) FindByBookID(bookID uuid.UUID) ([]model.StockMovement, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	var movements []model.StockMovement
	for _, m := range r.s.movements {
		if m.BookID == bookID {
			movements = append(movements, m)
		}
	}
	// Append order is creation order; newest first like the SQL store.
	for i, j := 0, len(movements)-1; i < j; i, j = i+1, j-1 {
		movements[i], movements[j] = movements[j], movements[i]
	}
	return movements, nil
}

func (r *memStockMovementRepo) DailySeries(startDate, endDate time.Time) ([]MovementSeriesPoint, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	byDate := make(map[string]*MovementSeriesPoint)
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(startDate) || m.CreatedAt.After(endDate) {
			continue
		}
		date := m.CreatedAt.Format("2006-01-02")
		point, ok := byDate[date]
		if !ok {
			point = &MovementSeriesPoint{Date: date}
			byDate[date] = point
		}
		switch m.MovementType {
		case model.MovementIn:
			point.Inbound += m.Quantity
		case model.MovementOut:
			point.Outbound += m.Quantity
		}
	}

	var results []MovementSeriesPoint
	for _, point := range byDate {
		results = append(results, *point)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

// ---------------------------------------------------------------------
// Transactions

type memTransactionRepo struct {
	s       *MemoryStore
	locking bool
}

func (r *memTransactionRepo) Create(tx *model.Transaction) error {
	if r.locking {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	stamp(&tx.BaseModel)
	r.s.transactions = append(r.s.transactions, *tx)
	return nil
}

func (r *memTransactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	for _, t := range r.s.transactions {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memTransactionRepo) Search(q TransactionSearchQuery) ([]model.Transaction, int64, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	var matched []model.Transaction
	for _, t := range r.s.transactions {
		if q.BookID != nil && t.BookID != *q.BookID {
			continue
		}
		if q.TransactionType != nil && t.TransactionType != *q.TransactionType {
			continue
		}
		if q.StartDate != nil && t.TransactionDate.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && t.TransactionDate.After(*q.EndDate) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].TransactionDate.After(matched[j].TransactionDate)
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func (r *memTransactionRepo) FinancialSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if r.locking {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range r.s.transactions {
		if t.TransactionDate.Before(startDate) || t.TransactionDate.After(endDate) {
			continue
		}
		switch t.TransactionType {
		case model.TxSale:
			income = income.Add(t.TotalAmount)
		case model.TxPurchase:
			expense = expense.Add(t.TotalAmount)
		}
	}
	return income, expense, nil
}
