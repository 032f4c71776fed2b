package core

import "strings"

// Supported delimiters for imported lead files.
const (
	DelimiterComma = ','
	DelimiterTab   = '\t'
)

// TokenizeLine splits one line of delimited text into fields.
//
// A double quote toggles the quoted state. Inside a quoted span the delimiter
// is kept as a literal and a doubled quote ("") collapses into one literal
// quote. The final field is always flushed, so an empty line yields a single
// empty field. Malformed quoting never fails; an unmatched quote simply leaves
// the rest of the line quoted.
func TokenizeLine(line string, delim rune) []string {
	runes := []rune(line)
	fields := make([]string, 0, 8)

	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}

	return append(fields, current.String())
}

// DetectDelimiter picks the delimiter for a whole file from its header line:
// tab when the header contains one, comma otherwise.
func DetectDelimiter(headerLine string) rune {
	if strings.ContainsRune(headerLine, DelimiterTab) {
		return DelimiterTab
	}
	return DelimiterComma
}
