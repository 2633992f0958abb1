package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/common"
	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/receipt"
)

// StoredReceipt is a persisted receipt row together with upload metadata.
type StoredReceipt struct {
	ID         int64          `json:"id"`
	Filename   string         `json:"filename"`
	Extractor  string         `json:"extractor"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Record     receipt.Record `json:"record"`
}

// StoreTotal is a per-store spend aggregate.
type StoreTotal struct {
	Store string  `json:"store"`
	Total float64 `json:"total"`
}

// MonthTotal is a per-month spend aggregate keyed by upload month (YYYY-MM).
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Summary aggregates the stored receipts for the stats endpoint.
type Summary struct {
	Count        int          `json:"count"`
	TotalSpend   float64      `json:"total_spend"`
	AverageTotal float64      `json:"average_total"`
	ByStore      []StoreTotal `json:"by_store"`
	ByMonth      []MonthTotal `json:"by_month"`
}

type ReceiptRepository interface {
	Insert(ctx context.Context, filename, extractor string, rec receipt.Record) (*StoredReceipt, error)
	ExistsByFilename(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]*StoredReceipt, error)
	GetByID(ctx context.Context, id int64) (*StoredReceipt, error)
	DeleteByID(ctx context.Context, id int64) error
	Summarize(ctx context.Context) (*Summary, error)
}

type receiptRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReceiptRepository(db *sql.DB, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, logger: logger}
}

func (r *receiptRepository) Insert(ctx context.Context, filename, extractor string, rec receipt.Record) (*StoredReceipt, error) {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: encode items: %v", common.ErrInternal, err)
	}

	uploadedAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (filename, store, date, time, payment, subtotal, tax, total, items, extractor, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		filename, rec.Store, rec.Date, rec.Time, rec.Payment,
		rec.Subtotal, rec.Tax, rec.Total, string(items), extractor,
		uploadedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: receipt already uploaded: %s", common.ErrDuplicate, filename)
		}
		r.logger.Error("failed to insert receipt", "filename", filename, "error", err)
		return nil, fmt.Errorf("%w: insert receipt: %v", common.ErrDatabase, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: last insert id: %v", common.ErrDatabase, err)
	}
	return &StoredReceipt{
		ID:         id,
		Filename:   filename,
		Extractor:  extractor,
		UploadedAt: uploadedAt,
		Record:     rec,
	}, nil
}

func (r *receiptRepository) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM receipts WHERE filename = ?`, filename).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup filename: %v", common.ErrDatabase, err)
	}
	return true, nil
}

const selectCols = `id, filename, store, date, time, payment, subtotal, tax, total, items, extractor, uploaded_at`

func (r *receiptRepository) List(ctx context.Context) ([]*StoredReceipt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectCols+` FROM receipts ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to list receipts", "error", err)
		return nil, fmt.Errorf("%w: list receipts: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*StoredReceipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list receipts: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *receiptRepository) GetByID(ctx context.Context, id int64) (*StoredReceipt, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM receipts WHERE id = ?`, id)
	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return rec, err
}

func (r *receiptRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete receipt: %v", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete receipt: %v", common.ErrDatabase, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *receiptRepository) Summarize(ctx context.Context) (*Summary, error) {
	sum := &Summary{ByStore: []StoreTotal{}, ByMonth: []MonthTotal{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(AVG(total), 0)
		FROM receipts`).Scan(&sum.Count, &sum.TotalSpend, &sum.AverageTotal)
	if err != nil {
		return nil, fmt.Errorf("%w: summarize receipts: %v", common.ErrDatabase, err)
	}
	sum.TotalSpend = receipt.Round2(sum.TotalSpend)
	sum.AverageTotal = receipt.Round2(sum.AverageTotal)

	rows, err := r.db.QueryContext(ctx, `
		SELECT store, COALESCE(SUM(total), 0) AS spend
		FROM receipts GROUP BY store ORDER BY spend DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: summarize by store: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var st StoreTotal
		if err := rows.Scan(&st.Store, &st.Total); err != nil {
			return nil, fmt.Errorf("%w: summarize by store: %v", common.ErrDatabase, err)
		}
		st.Total = receipt.Round2(st.Total)
		sum.ByStore = append(sum.ByStore, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: summarize by store: %v", common.ErrDatabase, err)
	}

	mrows, err := r.db.QueryContext(ctx, `
		SELECT substr(uploaded_at, 1, 7) AS month, COALESCE(SUM(total), 0)
		FROM receipts GROUP BY month ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("%w: summarize by month: %v", common.ErrDatabase, err)
	}
	defer func() { _ = mrows.Close() }()
	for mrows.Next() {
		var mt MonthTotal
		if err := mrows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, fmt.Errorf("%w: summarize by month: %v", common.ErrDatabase, err)
		}
		mt.Total = receipt.Round2(mt.Total)
		sum.ByMonth = append(sum.ByMonth, mt)
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("%w: summarize by month: %v", common.ErrDatabase, err)
	}

	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*StoredReceipt, error) {
	var (
		rec      StoredReceipt
		items    string
		uploaded string
	)
	err := row.Scan(
		&rec.ID, &rec.Filename,
		&rec.Record.Store, &rec.Record.Date, &rec.Record.Time, &rec.Record.Payment,
		&rec.Record.Subtotal, &rec.Record.Tax, &rec.Record.Total,
		&items, &rec.Extractor, &uploaded,
	)
	if err != nil {
		return nil, err
	}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &rec.Record.Items); err != nil {
			return nil, fmt.Errorf("%w: decode items: %v", common.ErrInternal, err)
		}
	}
	if rec.Record.Items == nil {
		rec.Record.Items = []receipt.LineItem{}
	}
	if t, err := time.Parse(time.RFC3339, uploaded); err == nil {
		rec.UploadedAt = t
	}
	return &rec, nil
}
