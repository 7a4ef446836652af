package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/osahene/YOS-rentals/internal/config"
)

// rateLimiter keeps one token bucket per client. The key is the session
// token when authenticated, otherwise the remote IP.
type rateLimiter struct {
	limiters   sync.Map
	cfg        config.RateLimitConfig
	cookieName string
}

func newRateLimiter(cfg config.RateLimitConfig, cookieName string) *rateLimiter {
	return &rateLimiter{cfg: cfg, cookieName: cookieName}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (l *rateLimiter) allow(r *http.Request) bool {
	if l.cfg.RPS <= 0 {
		return true
	}
	return l.getLimiter(l.clientKey(r)).Allow()
}

func (l *rateLimiter) clientKey(r *http.Request) string {
	if cookie, err := r.Cookie(l.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}
