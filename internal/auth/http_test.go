// ABOUTME: Tests for the HTTP JWT middleware
// ABOUTME: Covers missing headers, bad tokens, scope checks, and disabled auth

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, verifier TokenVerifier, scope string) http.Handler {
	t.Helper()
	return RequireScope(verifier, scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := FromContext(r.Context()); claims != nil {
			w.Header().Set("X-Subject", claims.Subject)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequireScope(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	routeToken, err := v.Generate("dispatcher", []string{ScopeRoute}, time.Hour)
	require.NoError(t, err)
	readToken, err := v.Generate("viewer", []string{ScopeRead}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "invalid authorization header format"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: "empty token"},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "wrong scope", header: "Bearer " + readToken, wantStatus: http.StatusForbidden, wantBody: "scope route required"},
		{name: "ok", header: "Bearer " + routeToken, wantStatus: http.StatusNoContent},
	}

	h := protected(t, v, ScopeRoute)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/route/outbound", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}

	t.Run("claims reach handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+routeToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "dispatcher", rec.Header().Get("X-Subject"))
	})
}

func TestRequireScope_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(t, nil, ScopeRoute).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
