package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/replybot/internal/proxy"
	"github.com/shehryarbajwa/replybot/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes. A nil rateLimiter disables rate
// limiting and a nil proxyServer disables the debug socket.
func (h *Handler) SetupRoutes(proxyServer *proxy.Server, rateLimiter *ratelimit.Limiter) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Status).Methods("GET")

	var postReply http.Handler = http.HandlerFunc(h.PostReply)
	if rateLimiter != nil {
		postReply = RateLimitMiddleware(rateLimiter)(postReply)
	}
	r.Handle("/post-reply", postReply).Methods("POST", "OPTIONS")

	// Debug endpoints
	r.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	if proxyServer != nil {
		r.HandleFunc("/sessions/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
			proxyServer.HandleDebugConnection(w, r, mux.Vars(r)["id"])
		}).Methods("GET")
	}

	r.Use(corsMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
