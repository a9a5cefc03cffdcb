package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, rl *RateLimiter) (*echo.Echo, echo.HandlerFunc) {
	t.Helper()
	e := echo.New()
	handler := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e, handler
}

func call(e *echo.Echo, handler echo.HandlerFunc, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		return http.StatusInternalServerError
	}
	return rec.Code
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	defer rl.Stop()

	e, handler := newLimitedHandler(t, rl)

	assert.Equal(t, http.StatusOK, call(e, handler, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, call(e, handler, "10.0.0.1"))
	// burst of 2 spent, sustained rate is 1/s: the next call must be rejected
	assert.Equal(t, http.StatusTooManyRequests, call(e, handler, "10.0.0.1"))
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()

	e, handler := newLimitedHandler(t, rl)

	require.Equal(t, http.StatusOK, call(e, handler, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call(e, handler, "10.0.0.1"))

	// A different client has its own bucket
	assert.Equal(t, http.StatusOK, call(e, handler, "10.0.0.2"))
}

func TestRateLimiterStop(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	rl.Stop()

	// The limiter itself keeps working after the sweep goroutine exits
	e, handler := newLimitedHandler(t, rl)
	assert.Equal(t, http.StatusOK, call(e, handler, "10.0.0.3"))
}
