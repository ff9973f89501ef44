package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Bus KA-01 students 2024-25",
		Headers: []string{"Name", "Class", "Monthly Fee"},
		Rows: [][]string{
			{"Asha", "5", "1500"},
			{"Ravi", "7", "1200.50"},
		},
	}
}

func TestCSVExporter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Name,Class,Monthly Fee\nAsha,5,1500\nRavi,7,1200.50\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only-one"})
	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)
}

func TestPDFExporter(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestXLSXExporter(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheet := "Bus KA-01 students 2024-25"
	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", name)
	fee, err := f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "1200.5", fee)
}

func TestLookup(t *testing.T) {
	f, ok := Lookup(" XLSX ")
	require.True(t, ok)
	assert.Equal(t, ".xlsx", f.Extension)
	_, ok = Lookup("docx")
	assert.False(t, ok)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, defaultSheet, sheetName(""))
	assert.Equal(t, "ab", sheetName("a/b"))
	assert.Len(t, []rune(sheetName("a very long workbook title that overflows")), 31)
}

func TestRenderReceipt(t *testing.T) {
	out, err := RenderReceipt(Receipt{ReceiptNumber: "RCPT-2025-00001", StudentName: "Asha", Quarter: 1, AcademicYear: "2025-26", Amount: 4500, PaymentMethod: "CASH"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = RenderReceipt(Receipt{})
	assert.Error(t, err)
}
