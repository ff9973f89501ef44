package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", kind, i, len(row), len(d.Headers))
		}
	}
	return nil
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Format describes one supported download format.
type Format struct {
	Name        string
	ContentType string
	Extension   string
	Renderer    Renderer
}

// Supported formats keyed by their query-string name.
var formats = map[string]Format{
	"csv":  {Name: "csv", ContentType: "text/csv", Extension: ".csv", Renderer: NewCSVExporter()},
	"xlsx": {Name: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Extension: ".xlsx", Renderer: NewXLSXExporter()},
	"pdf":  {Name: "pdf", ContentType: "application/pdf", Extension: ".pdf", Renderer: NewPDFExporter()},
}

// Lookup resolves a format by name, case-insensitively.
func Lookup(name string) (Format, bool) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}
