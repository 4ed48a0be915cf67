package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/http/response"
	"github.com/arcanaoficial/arcana-server/internal/ratelimit"
)

// msgRateLimited is returned with 429 responses.
const msgRateLimited = "Demasiadas solicitudes. Intenta de nuevo más tarde."

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return ratelimit.New(rps, burst, limiterIdleTTL)
}

// limitedRoute is a method and path a limiter applies to.
type limitedRoute struct {
	method string
	path   string
}

// RateLimitMiddleware limits requests to routes by client IP and answers
// 429 Too Many Requests when a client exceeds its budget. Other routes pass
// through untouched.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger, routes ...limitedRoute) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesRoute(r, routes) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, msgRateLimited, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesRoute(r *http.Request, routes []limitedRoute) bool {
	path := strings.TrimSuffix(r.URL.Path, "/")
	for _, rt := range routes {
		if r.Method == rt.method && path == rt.path {
			return true
		}
	}
	return false
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if ip := clientIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
