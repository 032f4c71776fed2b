package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/LeadTracker/internal/config"
	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// APIKeyAuth returns middleware that validates X-API-Key header against configured keys.
// If RequireAPIKey is false, all requests pass through.
// If RequireAPIKey is true but no keys are configured, all requests are rejected.
//
// An accepted key is recorded as the acting user ("key:" plus a short digest)
// so import events and logs can attribute the work without exposing the key.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			logger := logging.FromContext(r.Context()).With(
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				logger.Warn("auth: missing API key")
				writeAuthError(w, http.StatusUnauthorized, "AUTH_MISSING_KEY", "API key required")
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				logger.Warn("auth: invalid API key")
				writeAuthError(w, http.StatusForbidden, "AUTH_INVALID_KEY", "API key not recognised")
				return
			}

			ctx := core.ContextWithUser(r.Context(), keyIdentity(apiKey))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isValidAPIKey checks if the provided key matches any configured key.
// Uses constant-time comparison and checks ALL keys to prevent timing attacks.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}

func keyIdentity(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key:" + hex.EncodeToString(sum[:4])
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"action":  "Send a valid key in the X-API-Key header",
		"code":    code,
	})
}
