package core

// parse.go turns raw delimited text into a header list and data rows.
//
// The delimiter is chosen once from the header line. Data lines that contain
// nothing but delimiters or whitespace are dropped. Input with fewer than two
// lines is "nothing to import" and yields an empty table rather than an error;
// callers surface that as ErrNoRows.

import (
	"bytes"
	"encoding/json"
	"strings"
)

const utf8BOM = "\uFEFF"

// RawRow is one imported data line: column name to value, iterated in header
// order. A column that appears twice keeps its first position but holds the
// value of its last occurrence.
type RawRow struct {
	columns []string
	values  map[string]string
}

// NewRawRow builds a row from alternating column/value pairs.
func NewRawRow(pairs ...string) RawRow {
	r := RawRow{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set assigns value to column, appending the column if it is new.
func (r *RawRow) Set(column, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value stored under column.
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the row's column names in header order.
func (r RawRow) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of distinct columns.
func (r RawRow) Len() int {
	return len(r.columns)
}

// MarshalJSON encodes the row as an object with keys in header order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParsedTable is the result of ParseTable.
type ParsedTable struct {
	Headers   []string
	Rows      []RawRow
	Delimiter rune
}

// Empty reports whether the table has nothing to import.
func (t ParsedTable) Empty() bool {
	return len(t.Rows) == 0
}

// ParseTable splits text into headers and rows.
func ParseTable(text string) ParsedTable {
	text = strings.TrimPrefix(text, utf8BOM)
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ParsedTable{}
	}

	headerLine := strings.TrimSuffix(lines[0], "\r")
	delim := DetectDelimiter(headerLine)

	rawHeaders := TokenizeLine(headerLine, delim)
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.TrimSpace(h)
	}

	table := ParsedTable{Headers: headers, Delimiter: delim}

	for _, line := range lines[1:] {
		fields := TokenizeLine(strings.TrimSuffix(line, "\r"), delim)
		if isBlankRow(fields) {
			continue
		}

		row := RawRow{
			columns: make([]string, 0, len(headers)),
			values:  make(map[string]string, len(headers)),
		}
		for i, h := range headers {
			value := ""
			if i < len(fields) {
				value = strings.TrimSpace(fields[i])
			}
			row.Set(h, value)
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
