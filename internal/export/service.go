package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medishare/medlabel/internal/extract"
	"github.com/medishare/medlabel/internal/repository"
)

// Service is a tiny façade over the medicine repository that produces XLSX
// bytes for inventory exports.
type Service struct {
	repo   repository.MedicineRepository
	logger *slog.Logger
}

func NewService(repo repository.MedicineRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportInventoryXLSX returns an XLSX workbook (as bytes) for the donated
// medicine inventory. An empty status exports every row.
func (s *Service) ExportInventoryXLSX(ctx context.Context, status string) ([]byte, error) {
	start := time.Now()

	meds, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("query medicines: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Inventory"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"ID",
		"Medicine Name",
		"Quantity",
		"Expiry Date",
		"Time Until Expiry",
		"Ingredients",
		"Status",
		"Date Added",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	now := time.Now()
	for _, m := range meds {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, m.ID)
		write(2, deref(m.MedicineName))
		if m.Quantity != nil {
			write(3, *m.Quantity)
		}
		expiry := deref(m.ExpiryDate)
		write(4, expiry)
		if left, ok := extract.TimeUntilExpiry(expiry, now); ok {
			write(5, left)
		}
		write(6, truncate(deref(m.Ingredients), 140))
		write(7, deref(m.Status))
		if m.DateAdded != nil && !m.DateAdded.IsZero() {
			write(8, m.DateAdded.Format("2006-01-02"))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 42)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 16)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	_ = f.SetColWidth(sheet, "G", "G", 12)
	_ = f.SetColWidth(sheet, "H", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"status", status,
		"rows", len(meds),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
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
