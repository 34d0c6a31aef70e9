package middleware

import (
	"context"
	"net/http"
)

// DefaultAgencyID is the single-agency default used when no X-Agency-ID
// header is set (local development, admin CLI).
const DefaultAgencyID = "00000000-0000-0000-0000-000000000000"

const headerAgencyID = "X-Agency-ID"

type agencyCtxKey struct{}

// AgencyID is middleware that extracts the agency ID from the X-Agency-ID
// header and stores it in the request context. Falls back to DefaultAgencyID
// if absent. Every tenant-scoped query reads the agency from this context.
func AgencyID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		aid := r.Header.Get(headerAgencyID)
		if aid == "" {
			aid = DefaultAgencyID
		}
		ctx := context.WithValue(r.Context(), agencyCtxKey{}, aid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithAgencyID returns a context carrying the given agency ID. Used by the
// admin CLI and queue subscribers, which have no HTTP request.
func WithAgencyID(ctx context.Context, agencyID string) context.Context {
	return context.WithValue(ctx, agencyCtxKey{}, agencyID)
}

// AgencyIDFromContext returns the agency ID stored in ctx, or
// DefaultAgencyID if absent.
func AgencyIDFromContext(ctx context.Context) string {
	if aid, ok := ctx.Value(agencyCtxKey{}).(string); ok {
		return aid
	}
	return DefaultAgencyID
}
