package core

// xlsx.go converts spreadsheet uploads into the delimited text ParseTable
// reads, so spreadsheets go through exactly the same pipeline as CSV.

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// zipMagic prefixes every .xlsx file.
var zipMagic = []byte("PK\x03\x04")

// IsSpreadsheet reports whether an upload should be read as .xlsx.
func IsSpreadsheet(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return true
	}
	return bytes.HasPrefix(data, zipMagic)
}

// SpreadsheetToText renders the first sheet as tab-delimited text. Cells
// containing a tab or quote are quoted; line breaks inside a cell become
// spaces.
func SpreadsheetToText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("unreadable spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return "", fmt.Errorf("unreadable spreadsheet: no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("unreadable spreadsheet: read %q: %w", sheet, err)
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(quoteCell(cell))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

var cellNewlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func quoteCell(s string) string {
	s = cellNewlines.Replace(s)
	if !strings.ContainsAny(s, "\t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
