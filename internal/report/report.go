// Package report writes the loan report as an Excel workbook.
package report

import (
	"fmt"
	"io"

	"inventaris/internal/catalog"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Laporan Peminjaman"
	FileName  = "Laporan_Peminjaman.xlsx"
)

var header = []interface{}{"No", "Nama Peminjam", "Barang", "Kategori", "Jumlah", "Status", "Tanggal"}

// Write renders rows in order, one per loan, numbered from 1.
func Write(w io.Writer, rows []catalog.LoanRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name report sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", bold); err != nil {
		return fmt.Errorf("failed to style report header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			i + 1,
			row.BorrowerName,
			row.ItemName,
			row.CategoryName,
			row.Quantity,
			string(row.Status),
			row.BorrowedAt.Display(),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "D", 24); err != nil {
		return fmt.Errorf("failed to size report columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
