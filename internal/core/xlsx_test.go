package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestSpreadsheetToText(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Company Name", "First Name", "Email Address", "Notes"},
		{"Acme, Inc", "Jane", "jane@acme.com", "said \"call\"\nlater"},
	})

	if !IsSpreadsheet("leads.bin", data) {
		t.Error("IsSpreadsheet did not detect zip magic")
	}

	text, err := SpreadsheetToText(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SpreadsheetToText: %v", err)
	}

	table := ParseTable(text)
	if table.Delimiter != '\t' {
		t.Errorf("Delimiter = %q, want tab", table.Delimiter)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	if v, _ := row.Get("Company Name"); v != "Acme, Inc" {
		t.Errorf("Company Name = %q", v)
	}
	if v, _ := row.Get("Notes"); v != `said "call" later` {
		t.Errorf("Notes = %q", v)
	}
}

func TestSpreadsheetToText_NotASpreadsheet(t *testing.T) {
	_, err := SpreadsheetToText(strings.NewReader("Company,Email\nAcme,a@b.c"))
	if err == nil || !strings.Contains(err.Error(), "unreadable spreadsheet") {
		t.Errorf("SpreadsheetToText(csv) = %v, want unreadable spreadsheet error", err)
	}
	if IsSpreadsheet("leads.csv", []byte("Company,Email")) {
		t.Error("IsSpreadsheet(csv) = true")
	}
	if !IsSpreadsheet("LEADS.XLSX", nil) {
		t.Error("IsSpreadsheet by extension = false")
	}
}
