package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAgencyIDDefault(t *testing.T) {
	var captured string
	handler := AgencyID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = AgencyIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != DefaultAgencyID {
		t.Errorf("expected default agency ID, got %q", captured)
	}
}

func TestAgencyIDFromHeader(t *testing.T) {
	const aid = "a1b2c3d4-0000-0000-0000-000000000000"

	var captured string
	handler := AgencyID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = AgencyIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Agency-ID", aid)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != aid {
		t.Errorf("expected %q, got %q", aid, captured)
	}
}

func TestWithAgencyID(t *testing.T) {
	ctx := WithAgencyID(context.Background(), "agency-x")
	if got := AgencyIDFromContext(ctx); got != "agency-x" {
		t.Errorf("expected agency-x, got %q", got)
	}
	if got := AgencyIDFromContext(context.Background()); got != DefaultAgencyID {
		t.Errorf("expected default for bare context, got %q", got)
	}
}
