package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator resolves a bearer token into a principal identity string.
// The registry core itself never authenticates; this boundary hands it an
// already-resolved caller.
type TokenValidator interface {
	ResolveIdentity(tokenString string) (string, error)
}

type contextKeyCaller struct{}

// ContextKeyCaller is exported for use in handlers and tests.
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the resolved caller identity from the context.
func GetCaller(ctx context.Context) string {
	caller, ok := ctx.Value(ContextKeyCaller).(string)
	if !ok {
		return ""
	}
	return caller
}

// WithCaller returns a context carrying the given caller identity. Test helper.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// ResolveCaller extracts the caller identity from a Bearer token, falling back
// to the X-Caller-Identity header when allowHeaderIdentity is set (dev mode).
// Requests without a resolvable identity are rejected before reaching handlers.
func ResolveCaller(validator TokenValidator, logger *slog.Logger, allowHeaderIdentity bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				caller, err := validator.ResolveIdentity(token)
				if err != nil {
					logger.WarnContext(r.Context(), "unauthorized access - invalid token",
						"request_id", GetRequestID(r.Context()),
						"error", err,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
					return
				}
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
				return
			}

			if allowHeaderIdentity {
				if caller := r.Header.Get("X-Caller-Identity"); caller != "" {
					next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing caller identity"}`))
		})
	}
}
