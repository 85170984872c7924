// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and stores read them
// without importing net/http.
//
//	subject := requestcontext.Subject(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

type (
	subjectKey     struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySubject     = subjectKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyDevice      = deviceKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Subject returns the national id of the authenticated session, or "" when
// the request carries no session.
func Subject(ctx context.Context) id.NationalID {
	if s, ok := ctx.Value(ContextKeySubject).(id.NationalID); ok {
		return s
	}
	return ""
}

// WithSubject injects the session subject.
func WithSubject(ctx context.Context, subject id.NationalID) context.Context {
	return context.WithValue(ctx, ContextKeySubject, subject)
}

// ClientIP retrieves the client IP address.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent header.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// Device retrieves the parsed device label ("Chrome/Android", "Firefox/Linux").
func Device(ctx context.Context) string {
	if d, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return d
	}
	return ""
}

// WithClientMetadata injects client IP, User-Agent and device label.
// Useful for service tests that don't run the middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent, device string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	ctx = context.WithValue(ctx, ContextKeyDevice, device)
	return ctx
}

// RequestID retrieves the request ID.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time. Falls back to time.Now() outside
// HTTP requests (CLI, seeders, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
