package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/common"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

func testRepo(t *testing.T) ReceiptRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "receipts.db"),
		BusyTimeout: time.Second,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, logger) })
	return NewReceiptRepository(db, logger)
}

func sampleRecord(total float64) receipt.Record {
	rec := receipt.NewRecord()
	rec.Store = "Corner Cafe"
	rec.Subtotal = receipt.Round2(total * 0.92)
	rec.Tax = receipt.Round2(total - rec.Subtotal)
	rec.Total = total
	rec.Items = []receipt.LineItem{{Name: "Coffee", Price: rec.Subtotal}}
	return rec
}

func TestInsertAndGet(t *testing.T) {
	repo := testRepo(t)

	stored, err := repo.Insert(context.Background(), "receipt1.jpg", "ai", sampleRecord(3.78))
	require.NoError(t, err)
	assert.Positive(t, stored.ID)
	assert.False(t, stored.UploadedAt.IsZero())

	got, err := repo.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt1.jpg", got.Filename)
	assert.Equal(t, "ai", got.Extractor)
	assert.Equal(t, "Corner Cafe", got.Record.Store)
	assert.InDelta(t, 3.78, got.Record.Total, 1e-9)
	require.Len(t, got.Record.Items, 1)
	assert.Equal(t, "Coffee", got.Record.Items[0].Name)
}

func TestInsertDuplicateFilename(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Insert(context.Background(), "receipt1.jpg", "ai", sampleRecord(3.78))
	require.NoError(t, err)

	_, err = repo.Insert(context.Background(), "receipt1.jpg", "rule", sampleRecord(5.00))
	assert.ErrorIs(t, err, common.ErrDuplicate)
}

func TestExistsByFilename(t *testing.T) {
	repo := testRepo(t)

	ok, err := repo.ExistsByFilename(context.Background(), "receipt1.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Insert(context.Background(), "receipt1.jpg", "ai", sampleRecord(3.78))
	require.NoError(t, err)

	ok, err = repo.ExistsByFilename(context.Background(), "receipt1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListOrdersByInsertion(t *testing.T) {
	repo := testRepo(t)

	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		_, err := repo.Insert(context.Background(), name, "rule", sampleRecord(float64(i+1)))
		require.NoError(t, err)
	}

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.jpg", all[0].Filename)
	assert.Equal(t, "c.jpg", all[2].Filename)
}

func TestGetMissing(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := testRepo(t)

	stored, err := repo.Insert(context.Background(), "receipt1.jpg", "ai", sampleRecord(3.78))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(context.Background(), stored.ID))

	_, err = repo.GetByID(context.Background(), stored.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.DeleteByID(context.Background(), stored.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	repo := testRepo(t)

	recA := sampleRecord(10.00)
	recA.Store = "Corner Cafe"
	recB := sampleRecord(20.00)
	recB.Store = "Grocery Mart"
	recC := sampleRecord(30.00)
	recC.Store = "Grocery Mart"

	_, err := repo.Insert(context.Background(), "a.jpg", "ai", recA)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), "b.jpg", "ai", recB)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), "c.jpg", "rule", recC)
	require.NoError(t, err)

	sum, err := repo.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 60.00, sum.TotalSpend, 1e-9)
	assert.InDelta(t, 20.00, sum.AverageTotal, 1e-9)
	require.Len(t, sum.ByStore, 2)
	assert.Equal(t, "Grocery Mart", sum.ByStore[0].Store)
	assert.InDelta(t, 50.00, sum.ByStore[0].Total, 1e-9)
	require.Len(t, sum.ByMonth, 1)
	assert.InDelta(t, 60.00, sum.ByMonth[0].Total, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	repo := testRepo(t)

	sum, err := repo.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.Zero(t, sum.TotalSpend)
	assert.Empty(t, sum.ByStore)
	assert.Empty(t, sum.ByMonth)
}

func TestErrorsUnwrap(t *testing.T) {
	var appErr *common.AppError
	err := common.NewAppError("DB_ERROR", "boom", common.ErrDatabase)
	require.True(t, errors.As(err, &appErr))
	assert.ErrorIs(t, err, common.ErrDatabase)
}
