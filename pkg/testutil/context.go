package testutil

import (
	"context"
	"net/http"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// WithSubject adds a session subject to the request context, as the session
// middleware would after validating a bearer token.
func WithSubject(req *http.Request, nationalID string) *http.Request {
	ctx := requestcontext.WithSubject(req.Context(), id.NationalID(nationalID))
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
