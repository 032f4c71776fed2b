package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// renderFragment writes c as an HTML response with status.
func renderFragment(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "error", err)
	}
}
