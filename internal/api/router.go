package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds settings for the ops router, passed from main.go so it
// can configure CORS and auth from env vars.
type RouterConfig struct {
	// APIKey protects /stats when set. If empty, auth is skipped
	// (development mode).
	APIKey string

	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// If empty, any origin is allowed (development mode).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originList(cfg.CorsAllowedOrigins),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Liveness, public
	r.Get("/healthz", h.Health)

	// Counters, protected when a key is configured
	r.Get("/stats", protect(cfg.APIKey, h.Stats))

	return r
}

// originList turns the comma-separated env value into a CORS origin list.
// Blank entries are dropped; an empty result allows any origin.
func originList(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// protect wraps a handler with API key auth. The key travels in X-API-Key
// or as a bearer token; a missing key is 401, a mismatched key 403, with
// the comparison done in constant time. An empty configured key disables
// auth entirely.
func protect(apiKey string, next http.HandlerFunc) http.HandlerFunc {
	if apiKey == "" {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		presented := requestKey(r)

		if presented == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "API key required (X-API-Key header or bearer token)",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			respondJSON(w, http.StatusForbidden, map[string]string{
				"error": "API key not recognized",
			})
			return
		}

		next(w, r)
	}
}

// requestKey extracts the presented API key from the request headers.
func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}
