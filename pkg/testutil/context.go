package testutil

import (
	"context"
	"net/http"

	"certledger/internal/platform/middleware"
)

// WithCaller stores a resolved caller identity on the request context. This
// simulates what the identity middleware does for authenticated requests, so
// handlers can be tested without mounting the middleware chain.
func WithCaller(req *http.Request, caller string) *http.Request {
	return req.WithContext(middleware.WithCaller(req.Context(), caller))
}

// WithRequestID stores a request ID on the request context the way the
// request-ID middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}
