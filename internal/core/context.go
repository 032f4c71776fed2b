package core

import "context"

type contextKey string

const (
	ctxKeyUser      contextKey = "user"
	ctxKeyIPAddress contextKey = "ip"
	ctxKeyUserAgent contextKey = "ua"
)

// ContextWithUser records who is acting, as resolved by the auth layer.
func ContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// ContextWithIPAddress adds the client IP for activity and import logs.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the client User-Agent.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetUserFromContext returns the acting user, or "" when unauthenticated.
func GetUserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUser).(string); ok {
		return v
	}
	return ""
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// clientFields returns the ip and user_agent log attributes present in ctx.
func clientFields(ctx context.Context) []any {
	var fields []any
	if ip := GetIPAddressFromContext(ctx); ip != "" {
		fields = append(fields, "ip", ip)
	}
	if ua := GetUserAgentFromContext(ctx); ua != "" {
		fields = append(fields, "user_agent", ua)
	}
	return fields
}
