package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		maxAge time.Duration
		status int
		want   string
	}{
		{"get ok", http.MethodGet, time.Minute, http.StatusOK, "public, max-age=60"},
		{"get not found", http.MethodGet, time.Minute, http.StatusNotFound, "no-store"},
		{"post", http.MethodPost, time.Minute, http.StatusOK, "no-store"},
		{"disabled", http.MethodGet, 0, http.StatusOK, "no-store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CacheControl(tt.maxAge)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))

			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCacheControl_ImplicitOK(t *testing.T) {
	h := CacheControl(30 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "public, max-age=30", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "{}", rec.Body.String())
}
