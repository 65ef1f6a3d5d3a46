package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

type contextKey string

const (
	callerContextKey    contextKey = "caller"
	requestIDContextKey contextKey = "request_id"
)

// CallerContextKey returns the context key used for the caller. Exposed for tests that inject non-caller values.
func CallerContextKey() contextKey { return callerContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithCaller returns a context with the authenticated caller attached.
func WithCaller(ctx context.Context, caller *models.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext returns the caller from the request context, or nil if missing or wrong type.
func CallerFromContext(r *http.Request) *models.Caller {
	c, _ := r.Context().Value(callerContextKey).(*models.Caller)
	return c
}

// RateKey identifies the client for rate limiting: the caller subject when
// authenticated, otherwise the client IP.
func RateKey(r *http.Request) string {
	if c := CallerFromContext(r); c != nil && c.Subject != "" {
		return "sub:" + c.Subject
	}
	return "ip:" + ClientIP(r)
}

// WithRequestID tags ctx with the inbound request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request id, or "" outside a request
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
