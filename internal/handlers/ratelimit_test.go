package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"storefront/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter(2, time.Hour, "slow down")

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestAuthRoutesRateLimited(t *testing.T) {
	s := newTestServer()
	s.router = NewRouter(Deps{
		Auth:      &fakeAuth{token: "signed"},
		Products:  s.products,
		Orders:    s.orders,
		Tokens:    auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour),
		RateLimit: true,
	})
	login := map[string]any{"email": "alice@example.com", "password": "x"}

	for i := 0; i < 10; i++ {
		code, _ := s.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", login))
		assert.Equal(t, http.StatusOK, code)
	}

	code, body := s.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", login))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Too many auth attempts. Try again later.", body.Message)

	code, _ = s.do(t, jsonRequest(http.MethodGet, "/api/v1/orders", "", nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func loginFrom(forwardedFor string) *http.Request {
	req := jsonRequest(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "x"})
	req.Header.Set("X-Forwarded-For", forwardedFor)
	return req
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s := newTestServer()
	s.router = NewRouter(Deps{
		Auth:      &fakeAuth{token: "signed"},
		Products:  s.products,
		Orders:    s.orders,
		Tokens:    s.tokens,
		RateLimit: true,
	})

	limited := 0
	for i := 0; i < 30; i++ {
		code, _ := s.do(t, loginFrom(fmt.Sprintf("203.0.113.%d", i)))
		if code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 20, limited)
}

func TestRateLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	s := newTestServer()
	s.router = NewRouter(Deps{
		Auth:           &fakeAuth{token: "signed"},
		Products:       s.products,
		Orders:         s.orders,
		Tokens:         s.tokens,
		RateLimit:      true,
		TrustedProxies: []string{"192.0.2.0/24"},
	})

	for i := 0; i < 15; i++ {
		code, _ := s.do(t, loginFrom(fmt.Sprintf("203.0.113.%d", i)))
		assert.Equal(t, http.StatusOK, code)
	}
	code, _ := s.do(t, loginFrom("203.0.113.1"))
	assert.Equal(t, http.StatusOK, code)
	for i := 0; i < 9; i++ {
		s.do(t, loginFrom("203.0.113.1"))
	}
	code, _ = s.do(t, loginFrom("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, code)
}
