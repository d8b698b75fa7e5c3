package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/shehryarbajwa/replybot/internal/ratelimit"
	"github.com/shehryarbajwa/replybot/pkg/models"
)

// RateLimitMiddleware creates a middleware that enforces per-client rate limits
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := getClientID(r)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.PerHour()))
			if !limiter.Allow(clientID) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{
					Error: "Rate limit exceeded",
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens(clientID))))
			next.ServeHTTP(w, r)
		})
	}
}

// getClientID identifies the caller, preferring the first forwarded address
func getClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
