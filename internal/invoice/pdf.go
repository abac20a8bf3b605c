package invoice

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer writes fixed-layout invoice PDFs under dir. Paths returned are
// relative to dir so the download handler can re-root them.
type PDFRenderer struct {
	dir string
}

func NewPDFRenderer(dir string) *PDFRenderer {
	return &PDFRenderer{dir: dir}
}

func (r *PDFRenderer) Render(inv *invoice.Invoice) (string, error) {
	items, err := inv.ParsedItems()
	if err != nil {
		return "", fmt.Errorf("invalid invoice items: %w", err)
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(72, 72, 72)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, "LeaseCheck", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 22, fmt.Sprintf("Invoice #%s", inv.InvoiceNumber), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 16, fmt.Sprintf("Date: %s", inv.CreatedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, fmt.Sprintf("Due Date: %s", inv.DueDate.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Billing block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 18, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if inv.CustomerName != "" {
		pdf.CellFormat(0, 15, inv.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 15, inv.UserEmail, "", 1, "L", false, 0, "")
	for _, line := range inv.BillingAddressLines() {
		pdf.CellFormat(0, 15, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(14)

	// Line item table
	colWidths := []float64{248, 60, 80, 80}
	headers := []string{"Description", "Qty", "Unit Price", "Amount"}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	for i, hdr := range headers {
		pdf.CellFormat(colWidths[i], 22, hdr, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range items {
		pdf.CellFormat(colWidths[0], 20, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 20, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 20, formatCents(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 20, formatCents(item.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colWidths[0]+colWidths[1], 20, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[2], 20, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 20, fmt.Sprintf("%s %s", formatCents(inv.TotalCents), inv.Currency), "", 1, "R", false, 0, "")

	// Footer
	pdf.Ln(20)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, "Thank you for your business!", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 14, "For questions about this invoice, please contact support@coloradoleasecheck.com", "", 1, "L", false, 0, "")

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create invoice directory: %w", err)
	}

	filename := fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	fullPath := filepath.Join(r.dir, filename)
	if err := pdf.OutputFileAndClose(fullPath); err != nil {
		return "", fmt.Errorf("failed to write invoice pdf: %w", err)
	}

	return filename, nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
