package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, addr string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.RemoteAddr = addr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimit_AllowsThenBlocksThenRefills(t *testing.T) {
	c := &clock{t: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)}
	l := newLimiter(1, 2, 10*time.Minute)
	l.now = c.now
	h := rateLimit(l)(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234"))
	assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.2.3.4:5555"), "port must not matter")

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, hit(h, "5.6.7.8:1"))

	c.t = c.t.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234"))
}

func TestRateLimit_RejectsWithJSON(t *testing.T) {
	l := newLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return time.Unix(0, 0) }
	h := rateLimit(l)(okHandler())
	hit(h, "9.9.9.9:1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rr.Body.String())
}

func TestRateLimit_SweepsIdleBuckets(t *testing.T) {
	c := &clock{t: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)}
	l := newLimiter(1, 5, time.Minute)
	l.now = c.now

	l.allow("a")
	l.allow("b")
	assert.Equal(t, 2, l.size())

	c.t = c.t.Add(2 * time.Minute)
	l.allow("c")
	assert.Equal(t, 1, l.size())
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	h := RateLimit(0, 0)(okHandler())
	for i := 0; i < 100; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "1.1.1.1:1"))
	}
}
