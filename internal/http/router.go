// Package httpapi assembles the HTTP surface. Handlers own their routes; this
// package only decides which middleware guards which group.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/httpserver"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/metrics"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/middleware"
	adminmw "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/admin"
	authmw "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/auth"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/metadata"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts public routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// SessionRouteRegistrar mounts routes that need a face-login session.
type SessionRouteRegistrar interface {
	RegisterSessionRoutes(r chi.Router)
}

// Dependencies is everything the router needs. Nil handlers are skipped.
type Dependencies struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Health         *httpserver.Health
	TokenValidator authmw.TokenValidator
	AdminTokenHash string
	RequestTimeout time.Duration
	RateLimit      func(http.Handler) http.Handler

	Public  []RouteRegistrar
	Session []SessionRouteRegistrar
	Admin   []RouteRegistrar
}

// NewRouter wires the middleware stack and every module's routes.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(deps.Metrics.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return httplogger.LoggingMiddlewareSlog(logger, next)
	})

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(deps.RequestTimeout))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		for _, h := range deps.Public {
			h.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireSession(deps.TokenValidator, logger))
			for _, h := range deps.Session {
				h.RegisterSessionRoutes(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(deps.AdminTokenHash, logger))
			for _, h := range deps.Admin {
				h.Register(r)
			}
		})
	})
	return r
}
