package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "marketplace-cloud/internal/billing/domain"
)

// BuildInvoicePDF renders a minimal PDF statement for an invoice.
func BuildInvoicePDF(inv *billing.Invoice, fees []billing.Fee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Partner Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", inv.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Partner: %s", inv.PartnerID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s to %s", inv.StartDate.Format("2006-01-02"), inv.EndDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", inv.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", inv.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if !inv.PaidAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Paid: %s", inv.PaidAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Total Orders: %d", inv.TotalOrders))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Amount: %.2f", inv.TotalAmount))
	pdf.Ln(8)

	// Fee lines
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Fee", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Created", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, fee := range fees {
		pdf.CellFormat(70, 6, fee.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fee.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", fee.Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoiceXLSX renders a minimal XLSX statement for an invoice.
func BuildInvoiceXLSX(inv *billing.Invoice, fees []billing.Fee) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	feesSheet := "fees"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(feesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Partner Invoice")
	_ = f.SetCellValue(summarySheet, "A3", "Invoice")
	_ = f.SetCellValue(summarySheet, "B3", inv.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Partner")
	_ = f.SetCellValue(summarySheet, "B4", inv.PartnerID)
	_ = f.SetCellValue(summarySheet, "A5", "Window Start")
	_ = f.SetCellValue(summarySheet, "B5", inv.StartDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Window End")
	_ = f.SetCellValue(summarySheet, "B6", inv.EndDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A7", "Status")
	_ = f.SetCellValue(summarySheet, "B7", string(inv.Status))
	_ = f.SetCellValue(summarySheet, "A8", "Total Orders")
	_ = f.SetCellValue(summarySheet, "B8", inv.TotalOrders)
	_ = f.SetCellValue(summarySheet, "A9", "Total Amount")
	_ = f.SetCellValue(summarySheet, "B9", inv.TotalAmount)
	if !inv.PaidAt.IsZero() {
		_ = f.SetCellValue(summarySheet, "A10", "Paid At")
		_ = f.SetCellValue(summarySheet, "B10", inv.PaidAt.Format(time.RFC3339))
	}

	_ = f.SetCellValue(feesSheet, "A1", "Fee")
	_ = f.SetCellValue(feesSheet, "B1", "Created")
	_ = f.SetCellValue(feesSheet, "C1", "Value")
	for i, fee := range fees {
		row := i + 2
		_ = f.SetCellValue(feesSheet, fmt.Sprintf("A%d", row), fee.ID)
		_ = f.SetCellValue(feesSheet, fmt.Sprintf("B%d", row), fee.CreatedAt.Format("2006-01-02"))
		_ = f.SetCellValue(feesSheet, fmt.Sprintf("C%d", row), fee.Value)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
