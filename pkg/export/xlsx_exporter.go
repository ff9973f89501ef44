package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes a bold header row followed by the data rows. Numeric cells are stored as numbers.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	sheet := sheetName(data.Title)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	for i, row := range data.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[j] = n
				continue
			}
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims titles to the 31 characters Excel accepts.
func sheetName(title string) string {
	if title == "" {
		return defaultSheet
	}
	invalid := map[rune]bool{':': true, '\\': true, '/': true, '?': true, '*': true, '[': true, ']': true}
	out := make([]rune, 0, 31)
	for _, r := range title {
		if invalid[r] {
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return defaultSheet
	}
	return string(out)
}
