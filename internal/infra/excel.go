package infra

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"

	"github.com/xuri/excelize/v2"
)

const stockSheet = "Stock"

// RenderStockWorkbook writes one row per paper type aggregate.
func RenderStockWorkbook(rows []dto.StockResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return nil, fmt.Errorf("excel: rename sheet: %w", err)
	}

	headers := []string{"Paper type", "Paper type ID", "Length (cm)", "GSM", "Total weight (kg)", "Reels", "Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(stockSheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		weight, _ := r.TotalWeight.Float64()
		values := []interface{}{
			r.PaperTypeName,
			r.PaperTypeID,
			r.LengthCm,
			r.GSM,
			weight,
			r.ReelCount,
			r.UpdatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(stockSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveReport writes data under dir, creating it if needed, and returns the path.
func SaveReport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("report: create storage dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("report: write file: %w", err)
	}
	return path, nil
}
