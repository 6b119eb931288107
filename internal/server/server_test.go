package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/taxiiproxy/internal/app"
	"github.com/ternarybob/taxiiproxy/internal/common"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	application, err := app.New(common.NewDefaultConfig(), arbor.NewLogger())
	require.NoError(t, err)
	return New(application)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
		{"version", http.MethodGet, "/api/version", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{"discover without server url", http.MethodPost, "/api/taxii/discover", `{}`, http.StatusBadRequest},
		{"objects without collection", http.MethodPost, "/api/taxii/objects", `{"apiRootUrl":"https://taxii.example.com/api1/"}`, http.StatusBadRequest},
		{"proxy endpoint rejects GET", http.MethodGet, "/api/taxii/collections", "", http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "/api/taxii/status", `{`, http.StatusInternalServerError},
		{"cors preflight", http.MethodOptions, "/api/taxii/discover", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestEveryOperationIsRouted(t *testing.T) {
	s := newTestServer(t)

	for path := range taxiiRoutes {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "required")
		})
	}
}

func TestRequestIDIsPreserved(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req_fixed")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req_fixed", rec.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t)
	handler := s.withMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"boom"}`, rec.Body.String())
}
