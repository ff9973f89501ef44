package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt is the content printed on a fee receipt.
type Receipt struct {
	Organisation  string
	ReceiptNumber string
	PaymentDate   time.Time
	StudentName   string
	StudentClass  string
	BusNumber     string
	AcademicYear  string
	Quarter       int
	Amount        float64
	PaymentMethod string
	Reference     string
	CollectedBy   string
	Remarks       string
}

// RenderReceipt prints a single-page A5 fee receipt.
func RenderReceipt(r Receipt) ([]byte, error) {
	if r.ReceiptNumber == "" {
		return nil, fmt.Errorf("receipt requires a receipt number")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	title := r.Organisation
	if title == "" {
		title = "School Transport"
	}
	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 9, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Transport Fee Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 7, label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "", false, 0, "")
	}
	line("Receipt No.", r.ReceiptNumber)
	line("Date", r.PaymentDate.Format("02 Jan 2006"))
	line("Student", r.StudentName)
	line("Class", r.StudentClass)
	line("Bus", r.BusNumber)
	line("Period", fmt.Sprintf("Q%d %s", r.Quarter, r.AcademicYear))
	line("Method", r.PaymentMethod)
	line("Reference", r.Reference)
	line("Collected by", r.CollectedBy)
	line("Remarks", r.Remarks)

	pdf.Ln(3)
	pdf.SetFillColor(235, 235, 235)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 10, "Amount", "1", 0, "", true, 0, "")
	pdf.CellFormat(0, 10, fmt.Sprintf("%.2f", r.Amount), "1", 1, "R", true, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
