package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	text := "Company Name,First Name,Email\n" +
		"Acme,Jane,jane@acme.com\n" +
		"  ,  , \n" +
		",,\n" +
		"\"Globex, Inc\",Hank\n"

	got := ParseTable(text)

	wantHeaders := []string{"Company Name", "First Name", "Email"}
	if !reflect.DeepEqual(got.Headers, wantHeaders) {
		t.Fatalf("Headers = %q, want %q", got.Headers, wantHeaders)
	}
	if got.Delimiter != ',' {
		t.Errorf("Delimiter = %q, want comma", got.Delimiter)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (blank lines skipped)", len(got.Rows))
	}

	if v, _ := got.Rows[0].Get("Email"); v != "jane@acme.com" {
		t.Errorf("row 0 Email = %q, want jane@acme.com", v)
	}
	if v, _ := got.Rows[1].Get("Company Name"); v != "Globex, Inc" {
		t.Errorf("row 1 Company Name = %q, want %q", v, "Globex, Inc")
	}
	if v, ok := got.Rows[1].Get("Email"); !ok || v != "" {
		t.Errorf("row 1 Email = %q, %v, want empty and present", v, ok)
	}
}

func TestParseTable_TooShort(t *testing.T) {
	for _, text := range []string{"", "   \n  ", "Company Name,First Name", "\n\nCompany Name\n\n"} {
		got := ParseTable(text)
		if len(got.Headers) != 0 || len(got.Rows) != 0 {
			t.Errorf("ParseTable(%q) = %+v, want empty", text, got)
		}
		if !got.Empty() {
			t.Errorf("ParseTable(%q).Empty() = false", text)
		}
	}
}

func TestParseTable_HeaderOnlyWithBlankLines(t *testing.T) {
	got := ParseTable("Company Name,Email\n,\n \n")
	if !got.Empty() {
		t.Errorf("Empty() = false, want true for header plus blank lines")
	}
	if len(got.Headers) != 2 {
		t.Errorf("Headers = %q, want two headers", got.Headers)
	}
}

func TestParseTable_TabDelimitedAndCRLF(t *testing.T) {
	got := ParseTable("Company Name\tNotes\r\nAcme\ta, b, c\r\n")

	if got.Delimiter != '\t' {
		t.Fatalf("Delimiter = %q, want tab", got.Delimiter)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(got.Rows))
	}
	if v, _ := got.Rows[0].Get("Notes"); v != "a, b, c" {
		t.Errorf("Notes = %q, want %q", v, "a, b, c")
	}
}

func TestParseTable_BOM(t *testing.T) {
	got := ParseTable("\uFEFFCompany Name,Email\nAcme,a@acme.com")
	if len(got.Headers) == 0 || got.Headers[0] != "Company Name" {
		t.Errorf("Headers = %q, want BOM stripped", got.Headers)
	}
}

func TestParseTable_DuplicateHeaderLastWins(t *testing.T) {
	got := ParseTable("Email,Company,Email\nfirst@x.com,Acme,second@x.com")

	row := got.Rows[0]
	if v, _ := row.Get("Email"); v != "second@x.com" {
		t.Errorf("Email = %q, want last occurrence", v)
	}
	if cols := row.Columns(); !reflect.DeepEqual(cols, []string{"Email", "Company"}) {
		t.Errorf("Columns = %q, want first-position order", cols)
	}
}

func TestParseTable_ShortAndLongRows(t *testing.T) {
	got := ParseTable("A,B,C\n1\n1,2,3,4")

	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if v, ok := got.Rows[0].Get("C"); !ok || v != "" {
		t.Errorf("short row C = %q, %v, want empty", v, ok)
	}
	if got.Rows[1].Len() != 3 {
		t.Errorf("long row Len = %d, want 3 (extra values dropped)", got.Rows[1].Len())
	}
}

func TestRawRow_MarshalJSONKeepsOrder(t *testing.T) {
	row := NewRawRow("Zeta", "1", "Alpha", "2", "Mid \"q\"", "3")

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"Zeta":"1","Alpha":"2","Mid \"q\"":"3"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}
