package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// ClientMetadata extracts client IP, User-Agent and a coarse device label
// and adds them to the context. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua, DeviceLabel(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceLabel summarizes a User-Agent as "browser/os", e.g. "Chrome/Android".
func DeviceLabel(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	if browser == "" {
		browser = "unknown"
	}
	if os == "" {
		os = "unknown"
	}
	return browser + "/" + os
}

// ClientIPFromRequest extracts the client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
