package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouting(t *testing.T) {
	r := New()
	r.GET("/api/v1/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.POST("/api/v1/items", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	r.Handle("/swagger/*", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusNoContent},
		{http.MethodPost, "/api/v1/items", http.StatusCreated},
		{http.MethodGet, "/api/v1/items", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/v1/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/swagger/index.html", http.StatusTeapot},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, tc.method+" "+tc.path)
	}

	assert.Equal(t, []string{"GET /api/v1/health", "GET /swagger/*", "POST /api/v1/items"}, r.Routes())
}

func TestObserve(t *testing.T) {
	r := New()
	r.GET("/files/*", func(w http.ResponseWriter, _ *http.Request) {})

	var gotRoute string
	var gotStatus int
	r.Observe = func(method, route string, status int, _ time.Duration) {
		gotRoute, gotStatus = route, status
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a/b", nil))
	require.Equal(t, "/files/*", gotRoute)
	assert.Equal(t, http.StatusOK, gotStatus)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, "unmatched", gotRoute)
	assert.Equal(t, http.StatusNotFound, gotStatus)
}

func TestMatchWildcardRoute(t *testing.T) {
	assert.True(t, matchWildcardRoute("/api/v1/runs/42/rows", "/api/v1/runs/*/rows"))
	assert.False(t, matchWildcardRoute("/api/v1/runs/42", "/api/v1/runs/*/rows"))
	assert.True(t, matchWildcardRoute("/swagger/", "/swagger/*"))
	assert.False(t, matchWildcardRoute("/other/x", "/swagger/*"))
}
