package infra

// pdf.go renders the printable slip handed to the ruling machine operator:
//   - reel number and starting weight
//   - one row per entry (cutoff, sheets ruled, theoretical, difference, status)
//   - total sheets ruled and signature line

import (
	"bytes"
	"fmt"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// RenderRulingSlip returns an A5 landscape PDF for a committed ruling.
func RenderRulingSlip(r *model.Ruling) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A5", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 16

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Ruling Slip", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, "Reel: "+r.ReelNo, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, r.CreatedAt.Format("02/01/2006  15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Starting weight: "+r.StartingWeight.StringFixed(3)+" kg", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Operator: "+r.CreatedBy, "", 1, "R", false, 0, "")
	pdf.Ln(2)
	pdf.Line(8, pdf.GetY(), pageW-8, pdf.GetY())
	pdf.Ln(2)

	// ── Entries ──────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"#", 0.06, "C"},
		{"Cutoff (cm)", 0.16, "R"},
		{"Sheets", 0.16, "R"},
		{"Theoretical", 0.18, "R"},
		{"Difference", 0.18, "R"},
		{"Status", 0.26, "L"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*c.w, 6, c.title, "B", ln, c.align, false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, e := range r.Entries {
		theoretical, diff := fmt.Sprintf("%.2f", e.TheoreticalSheets), fmt.Sprintf("%+.2f", e.Difference)
		if e.InsufficientData {
			theoretical, diff = "n/a", "n/a"
		}
		values := []string{
			fmt.Sprintf("%d", e.Position+1),
			fmt.Sprintf("%.2f", e.CutoffCm),
			fmt.Sprintf("%d", e.SheetsRuled),
			theoretical,
			diff,
			string(e.Status),
		}
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*c.w, 5, values[i], "", ln, c.align, false, 0, "")
		}
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(8, pdf.GetY(), pageW-8, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Total sheets ruled: %d", r.TotalSheetsRuled), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW/2, 5, "Signature: ____________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render slip: %w", err)
	}
	return buf.Bytes(), nil
}
