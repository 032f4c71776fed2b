package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadUpload_Text(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Company,Email\nAcme,a@acme.com\n", "Company,Email\nAcme,a@acme.com\n"},
		{"bom stripped", "\xEF\xBB\xBFCompany\nAcme\n", "Company\nAcme\n"},
		{"invalid utf8 replaced", "Company\nAc\xFFme\n", "Company\nAc�me\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadUpload("leads.csv", strings.NewReader(tt.input), 1024)
			if err != nil {
				t.Fatalf("ReadUpload() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadUpload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadUpload_Limit(t *testing.T) {
	input := strings.Repeat("x", 11)

	_, err := ReadUpload("leads.csv", strings.NewReader(input), 10)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("ReadUpload() error = %v, want ErrFileTooLarge", err)
	}
	if got := MapError(err).Code; got != "FILE001" {
		t.Errorf("MapError code = %s, want FILE001", got)
	}

	if _, err := ReadUpload("leads.csv", strings.NewReader(input[:10]), 10); err != nil {
		t.Errorf("ReadUpload() at limit error = %v", err)
	}
	if _, err := ReadUpload("leads.csv", strings.NewReader(input), 0); err != nil {
		t.Errorf("ReadUpload() without limit error = %v", err)
	}
}

func TestReadUpload_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "Company Name"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "A2", "Initech"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ReadUpload("export.XLSX", buf, 0)
	if err != nil {
		t.Fatalf("ReadUpload() error = %v", err)
	}
	if got != "Company Name\nInitech\n" {
		t.Errorf("ReadUpload() = %q", got)
	}
}

func TestReadUpload_BrokenSpreadsheet(t *testing.T) {
	_, err := ReadUpload("leads.xlsx", strings.NewReader("not a zip"), 0)
	if err == nil {
		t.Fatal("ReadUpload() expected error")
	}
	if got := MapError(err).Code; got != "FILE002" {
		t.Errorf("MapError code = %s, want FILE002", got)
	}
}
