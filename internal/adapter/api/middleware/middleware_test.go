package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	uid, ok := v[token]
	if !ok {
		return "", pkgerrors.New("token rejected")
	}
	return uid, nil
}

func serve(mw echo.MiddlewareFunc, target string, header string) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	_ = mw(func(c echo.Context) error {
		seen = UID(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, seen
}

func TestAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(staticVerifier{"good": "u1"})

	rec, uid := serve(m.Authenticate, "/", "Bearer good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", uid)

	for _, header := range []string{"", "good", "Basic good", "Bearer ", "Bearer bad"} {
		rec, uid = serve(m.Authenticate, "/", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Empty(t, uid)
	}
}

func TestAuthenticateQuery(t *testing.T) {
	m := NewAuthMiddleware(staticVerifier{"good": "u1"})

	rec, uid := serve(m.AuthenticateQuery, "/v1/ws?token=good", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", uid)

	rec, uid = serve(m.AuthenticateQuery, "/v1/ws", "Bearer good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", uid)

	rec, _ = serve(m.AuthenticateQuery, "/v1/ws?token=bad", "Bearer good")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type countingLimiter struct {
	allowed int
	keys    []string
}

func (l *countingLimiter) Allow(key, action string) (bool, time.Duration) {
	l.keys = append(l.keys, key+"/"+action)
	if l.allowed <= 0 {
		return false, 3 * time.Second
	}
	l.allowed--
	return true, 0
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{allowed: 1}
	mw := RateLimit(limiter, "auth")

	rec, _ := serve(mw, "/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = serve(mw, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
	assert.Equal(t, []string{"192.0.2.1/auth", "192.0.2.1/auth"}, limiter.keys)
}
