package core

// upload.go reads an uploaded lead file into the text ParseTable consumes.
//
// Uploads are bounded: at most limit bytes are read and anything larger is
// rejected with ErrFileTooLarge before it is parsed. Spreadsheets are
// converted with SpreadsheetToText; everything else is treated as delimited
// text with a leading UTF-8 BOM removed.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

var utf8BOMBytes = []byte(utf8BOM)

// ReadUpload reads r and returns its content as delimited text. filename
// only decides whether the upload is a spreadsheet. A limit of zero or less
// disables the size check.
func ReadUpload(filename string, r io.Reader, limit int64) (string, error) {
	counter := &countingReader{r: r}
	src := io.Reader(counter)
	if limit > 0 {
		src = io.LimitReader(counter, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && counter.n > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}

	if IsSpreadsheet(filename, data) {
		return SpreadsheetToText(bytes.NewReader(data))
	}
	return string(bytes.ToValidUTF8(bytes.TrimPrefix(data, utf8BOMBytes), []byte("�"))), nil
}

// countingReader tracks bytes read from the underlying reader.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
