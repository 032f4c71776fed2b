package core

// mapping.go matches parsed headers to catalog fields.
//
// Matching is deliberately permissive. A header and a catalog label are both
// normalized (lower-case, anything outside [a-z0-9] becomes "_") and compared
// by exact equality, header-contains-label, then label-contains-header. The
// first catalog entry satisfying any check wins. The user corrects false
// positives with FieldMapping.Set before importing.

import (
	"fmt"
	"strings"
)

// FieldMapping maps a raw column name to a catalog key. Unmapped columns are
// absent.
type FieldMapping map[string]FieldKey

// NormalizeHeader lower-cases s and replaces every rune outside [a-z0-9]
// with an underscore.
func NormalizeHeader(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

var normalizedLabels = func() []string {
	out := make([]string, len(catalog))
	for i, e := range catalog {
		out[i] = NormalizeHeader(e.Label)
	}
	return out
}()

// MatchHeader returns the catalog key a single header auto-maps to.
func MatchHeader(header string) (FieldKey, bool) {
	h := NormalizeHeader(strings.TrimSpace(header))
	// An empty header is a substring of every label.
	if h == "" {
		return "", false
	}
	for i, label := range normalizedLabels {
		if h == label || strings.Contains(h, label) || strings.Contains(label, h) {
			return catalog[i].Key, true
		}
	}
	return "", false
}

// AutoMap proposes a mapping for every header that matches a catalog entry.
func AutoMap(headers []string) FieldMapping {
	m := make(FieldMapping, len(headers))
	for _, h := range headers {
		if key, ok := MatchHeader(h); ok {
			m[h] = key
		}
	}
	return m
}

// Set returns a copy of m with header mapped to key. An empty key removes the
// header's mapping. Keys outside the catalog are rejected.
func (m FieldMapping) Set(header string, key FieldKey) (FieldMapping, error) {
	if key != "" {
		if _, ok := LookupField(key); !ok {
			return m, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
	}
	out := m.Clone()
	if key == "" {
		delete(out, header)
	} else {
		out[header] = key
	}
	return out, nil
}

// Clone returns an independent copy of m.
func (m FieldMapping) Clone() FieldMapping {
	out := make(FieldMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HasAny reports whether any header is mapped to one of keys.
func (m FieldMapping) HasAny(keys ...FieldKey) bool {
	for _, mapped := range m {
		for _, k := range keys {
			if mapped == k {
				return true
			}
		}
	}
	return false
}

// Headers returns the headers mapped to key in the order they appear in
// columns.
func (m FieldMapping) Headers(key FieldKey, columns []string) []string {
	var out []string
	for _, c := range columns {
		if m[c] == key {
			out = append(out, c)
		}
	}
	return out
}
