package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gouthammourya/Receipt-and-Invoice-Digitizer-Goutham-Mourya/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes for exports.
type Service struct {
	repo   repository.ReceiptRepository
	logger *slog.Logger
}

func NewService(repo repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) with one row per stored receipt.
func (s *Service) ExportReceiptsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Filename",
		"Store",
		"Date",
		"Time",
		"Payment",
		"Subtotal",
		"Tax",
		"Total",
		"Items",
		"Extractor",
		"Uploaded At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		items := make([]string, 0, len(r.Record.Items))
		for _, it := range r.Record.Items {
			items = append(items, fmt.Sprintf("%s (%.2f)", it.Name, it.Price))
		}

		write(1, r.Filename)
		write(2, r.Record.Store)
		write(3, r.Record.Date)
		write(4, r.Record.Time)
		write(5, r.Record.Payment)
		write(6, r.Record.Subtotal)
		write(7, r.Record.Tax)
		write(8, r.Record.Total)
		write(9, truncate(strings.Join(items, "; "), 140))
		write(10, r.Extractor)
		if !r.UploadedAt.IsZero() {
			write(11, r.UploadedAt.Format("2006-01-02 15:04"))
		} else {
			write(11, "")
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 28) // filename
	_ = f.SetColWidth(sheet, "B", "B", 24) // store
	_ = f.SetColWidth(sheet, "C", "E", 12) // date/time/payment
	_ = f.SetColWidth(sheet, "F", "H", 10) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 48) // items
	_ = f.SetColWidth(sheet, "K", "K", 18) // uploaded

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
