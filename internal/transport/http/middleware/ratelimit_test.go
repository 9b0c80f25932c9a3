package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", clientIP(req))
}

func TestClientIP_RemoteAddr_Fallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	assert.Equal(t, "192.168.1.1", clientIP(req))
}

func TestRateLimiter_BurstThenBlocked(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 3)
	h := rl.Limit(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		rec := doRequest(t, h, "192.0.2.1")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doRequest(t, h, "192.0.2.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_PerIPBuckets(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusOK, doRequest(t, h, "192.0.2.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, h, "192.0.2.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, h, "192.0.2.2").Code)
}
