// Package xlsx renders the document register as a spreadsheet for offline
// review.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

const listPageSize = 500

type Exporter struct {
	repo   ports.DocumentRepository
	logger *slog.Logger
}

func NewExporter(repo ports.DocumentRepository, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{repo: repo, logger: logger}
}

func (e *Exporter) ExportXLSX(ctx context.Context) ([]byte, error) {
	docs, err := e.listAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 && defaultIndex != activeIndex {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Filename",
		"Status",
		"Agreement Type",
		"Governing Law",
		"Jurisdiction",
		"Geography",
		"Industry Sector",
		"Confidence",
		"Error",
		"Uploaded At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i := range docs {
		doc := &docs[i]
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, doc.Filename)
		write(2, string(doc.Status))
		if doc.Metadata != nil {
			write(3, doc.Metadata.AgreementType)
			write(4, doc.Metadata.GoverningLaw)
			write(5, doc.Metadata.Jurisdiction)
			write(6, doc.Metadata.Geography)
			write(7, doc.Metadata.IndustrySector)
			write(8, doc.Metadata.Confidence)
		}
		write(9, doc.Error)
		write(10, doc.CreatedAt.Format("2006-01-02 15:04:05"))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "H", 18)
	_ = f.SetColWidth(sheet, "I", "I", 40)
	_ = f.SetColWidth(sheet, "J", "J", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("register_exported", "documents", len(docs), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (e *Exporter) listAll(ctx context.Context) ([]domain.Document, error) {
	var all []domain.Document
	for offset := 0; ; offset += listPageSize {
		page, err := e.repo.List(ctx, listPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}
