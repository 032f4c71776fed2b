// Package templates holds the templ components rendered for HTMX callers.
// Run `templ generate` after editing a .templ file; the generated
// *_templ.go files are checked in.
package templates

import "github.com/JonMunkholm/LeadTracker/internal/core"

func leadNoun(n int) string {
	if n == 1 {
		return "lead"
	}
	return "leads"
}

// fieldLabel marks required catalog fields with an asterisk.
func fieldLabel(f core.CatalogEntry) string {
	if f.Required {
		return f.Label + " *"
	}
	return f.Label
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
