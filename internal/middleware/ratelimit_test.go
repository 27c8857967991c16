// VillageVitals | 2026
// ratelimit_test.go

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableRedis returns a client no server listens on, forcing the
// limiter onto its in-process fallback.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       "127.0.0.1:1",
		MaxRetries: -1,
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_FallbackEnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(), RateLimitConfig{
		Limit:    PerMinute(2, 2),
		FailOpen: true,
	})

	handler := rl.Handler(okHandler())

	request := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := range 2 {
		rec := request()
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := request()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Rate limit exceeded")
}

func TestRateLimiter_KeysByClientIP(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(), RateLimitConfig{
		Limit:    PerMinute(1, 1),
		FailOpen: true,
	})

	handler := rl.Handler(okHandler())

	request := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, request("198.51.100.1:1000").Code)
	require.Equal(
		t,
		http.StatusTooManyRequests,
		request("198.51.100.1:2000").Code,
	)

	// A different client address draws from its own budget.
	assert.Equal(t, http.StatusOK, request("198.51.100.2:1000").Code)
}

func TestRateLimiter_Bypass(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(), RateLimitConfig{
		Limit:    PerMinute(1, 1),
		FailOpen: true,
		BypassFunc: func(r *http.Request) bool {
			return r.URL.Path == "/healthz"
		},
	})

	handler := rl.Handler(okHandler())

	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "198.51.100.9:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "ratelimit:ip:192.0.2.10", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.30")
	assert.Equal(t, "ratelimit:ip:198.51.100.30", KeyByIP(req))
}
