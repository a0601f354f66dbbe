package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func serveFrom(h http.Handler, method, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitHandlerBurstThenReject(t *testing.T) {
	rl := NewIPRateLimiter(rate.Every(time.Minute), 3)
	h := RateLimitHandler(rl, noContent())

	for i := 0; i < 3; i++ {
		rec := serveFrom(h, http.MethodPost, "/api/rows/drama/next", "10.1.2.3:4000")
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
	}

	rec := serveFrom(h, http.MethodPost, "/api/rows/drama/next", "10.1.2.3:4001")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "too many requests", body["error"])
}

func TestRateLimitHandlerBucketsPerVisitorAddress(t *testing.T) {
	rl := NewIPRateLimiter(rate.Every(time.Minute), 1)
	h := RateLimitHandler(rl, noContent())

	assert.Equal(t, http.StatusNoContent, serveFrom(h, http.MethodGet, "/", "172.16.0.8:1111").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(h, http.MethodGet, "/", "172.16.0.8:2222").Code)
	assert.Equal(t, http.StatusNoContent, serveFrom(h, http.MethodGet, "/", "172.16.0.9:1111").Code)
}

func TestRateLimitMiddlewareGuardsRoutes(t *testing.T) {
	rl := NewIPRateLimiter(rate.Every(time.Minute), 1)
	r := mux.NewRouter()
	r.Use(RateLimitMiddleware(rl))
	r.Handle("/api/titles/{kind}/{id}", noContent()).Methods(http.MethodGet)

	assert.Equal(t, http.StatusNoContent, serveFrom(r, http.MethodGet, "/api/titles/movie/603", "192.0.2.4:80").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(r, http.MethodGet, "/api/titles/tv/1399", "192.0.2.4:81").Code)
}

func TestCleanupDropsIdleAddresses(t *testing.T) {
	rl := NewIPRateLimiter(rate.Every(time.Second), 1)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.getLimiter("198.51.100.1")
	clock = clock.Add(limiterIdleTTL + time.Second)
	rl.getLimiter("198.51.100.2")

	assert.Equal(t, 1, rl.Cleanup())
	assert.NotContains(t, rl.limiters, "198.51.100.1")
	assert.Contains(t, rl.limiters, "198.51.100.2")
	assert.Equal(t, 0, rl.Cleanup())
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}, remoteAddr: "10.0.0.1:1", want: "203.0.113.50"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": "198.51.100.10"}, remoteAddr: "10.0.0.1:1", want: "198.51.100.10"},
		{name: "ipv4 remote addr", remoteAddr: "192.0.2.7:8080", want: "192.0.2.7"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:54321", want: "2001:db8::1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(req))
		})
	}
}
