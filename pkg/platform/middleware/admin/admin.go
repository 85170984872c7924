package admin

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// RequireAdminToken guards admin routes. The configured value is a bcrypt hash
// of the token, so the plaintext never sits in config. An empty hash answers
// every request with 403.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if tokenHash == "" {
				logger.WarnContext(ctx, "admin route called but no admin token configured",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access disabled"))
				return
			}
			token := r.Header.Get("X-Admin-Token")
			if token == "" || bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
