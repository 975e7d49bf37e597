package service

import (
	"testing"

	"go-bookstore-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeStockIn(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	updated, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "IN",
		Quantity:     5,
		Reason:       "Shipment received",
	}, testActor, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementIn, movements[0].MovementType)
	assert.Equal(t, 5, movements[0].Quantity)
	assert.Equal(t, 10, movements[0].PreviousStock)
	assert.Equal(t, 15, movements[0].NewStock)
	assert.Equal(t, "Shipment received", movements[0].Reason)
}

func TestChangeStockOutInsufficient(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 3)

	_, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "OUT",
		Quantity:     4,
		Reason:       "Damaged copies",
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Rejected movement leaves no trace.
	current, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Stock)
	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestChangeStockOutToZero(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 3)

	updated, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "OUT",
		Quantity:     3,
		Reason:       "Clearance",
	}, testActor, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
}

func TestAdjustmentRecordsMagnitude(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	// Adjusting down from 10 to 3 records the difference, not the target.
	updated, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "ADJUSTMENT",
		Quantity:     3,
		Reason:       "Annual stocktake",
	}, testActor, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements[0].MovementType)
	assert.Equal(t, 7, movements[0].Quantity)
	assert.Equal(t, 10, movements[0].PreviousStock)
	assert.Equal(t, 3, movements[0].NewStock)
}

func TestAdjustmentNegativeTargetRejected(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	_, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "ADJUSTMENT",
		Quantity:     -1,
		Reason:       "Bad count",
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestChangeStockInvalidType(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	_, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "SIDEWAYS",
		Quantity:     1,
		Reason:       "test",
	}, testActor, "Tester")
	require.ErrorIs(t, err, ErrInvalidMovementType)
}

func TestChangeStockRequiresActor(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	_, err := env.stockLedger.ChangeStock(book.ID, &UpdateStockRequest{
		MovementType: "IN",
		Quantity:     1,
		Reason:       "test",
	}, "", "Tester")
	require.ErrorIs(t, err, ErrMissingActor)
}

func TestAdjustStockDelta(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 10)

	updated, err := env.stockLedger.AdjustStock(book.ID, -4, "Shrinkage", testActor, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements[0].MovementType)
	assert.Equal(t, 4, movements[0].Quantity)
}

func TestSetStockTarget(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 2)

	updated, err := env.stockLedger.SetStock(book.ID, 20, "Restock", testActor, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Stock)

	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 18, movements[0].Quantity)
	assert.Equal(t, 2, movements[0].PreviousStock)
	assert.Equal(t, 20, movements[0].NewStock)
}

func TestStockMovementsAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Go in Action", "978-1", "30.00", 2)
	require.NoError(t, env.books.DeleteBook(book.ID, testActor))

	// Retired books keep their trail queryable.
	movements, err := env.stockLedger.GetMovements(book.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}
