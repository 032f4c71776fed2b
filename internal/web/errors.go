package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and code
//  4. The code picks the HTTP status
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered as JSON, an HTMX fragment or plain text

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
	"github.com/JonMunkholm/LeadTracker/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
// CampaignID names a campaign a failed import created; retries must target it.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Action     string `json:"action,omitempty"`
	Code       string `json:"code"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// codeStatus maps error codes to HTTP statuses. Codes not listed fall back by
// prefix in statusForCode.
var codeStatus = map[string]int{
	"IMP001":  http.StatusUnprocessableEntity,
	"IMP002":  http.StatusTooManyRequests,
	"IMP003":  http.StatusBadRequest,
	"IMP004":  http.StatusConflict,
	"IMP005":  http.StatusRequestTimeout,
	"NF001":   http.StatusNotFound,
	"DB001":   http.StatusConflict,
	"DB003":   http.StatusUnprocessableEntity,
	"DB004":   http.StatusServiceUnavailable,
	"DB005":   http.StatusServiceUnavailable,
	"DB006":   http.StatusGatewayTimeout,
	"DB007":   http.StatusServiceUnavailable,
	"FILE001": http.StatusRequestEntityTooLarge,
	"RATE001": http.StatusTooManyRequests,
}

func statusForCode(code string) int {
	if st, ok := codeStatus[code]; ok {
		return st
	}
	switch {
	case strings.HasPrefix(code, "MAP"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "VAL"), strings.HasPrefix(code, "FILE"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or HTML).
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusForCode(userMsg.Code)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var se *core.StorageError
	if errors.As(err, &se) && se.CampaignID != uuid.Nil {
		resp.CampaignID = se.CampaignID.String()
	}

	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"campaign_id", resp.CampaignID,
	)

	if userMsg.Code == "IMP002" {
		w.Header().Set("Retry-After", "5")
	}
	writeError(w, r, resp, status)
}

// writeErrorMessage renders msg in the format the client asked for.
func writeErrorMessage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	writeError(w, r, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}, status)
}

func writeError(w http.ResponseWriter, r *http.Request, resp ErrorResponse, status int) {
	switch {
	case isHTMX(r):
		renderFragment(w, r, status, templates.ErrorAlert(resp.Message, resp.Action, resp.Code, resp.CampaignID))
	case wantsJSON(r):
		respondErrorJSON(w, resp, status)
	default:
		http.Error(w, resp.Message+" ("+resp.Code+")", status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
