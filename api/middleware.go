package api

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"marquee/internal/metrics"
)

// VisitorCookie holds the anonymous visitor ID that keys row positions and
// the hero player state.
const VisitorCookie = "marquee_visitor"

const visitorCookieMaxAge = 30 * 24 * 60 * 60

type contextKey string

const contextKeyVisitorID contextKey = "visitorID"

// VisitorMiddleware makes sure every request carries a visitor ID, issuing a
// cookie on first contact.
func VisitorMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), contextKeyVisitorID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VisitorID returns the visitor ID set by VisitorMiddleware, or "".
func VisitorID(r *http.Request) string {
	id, _ := r.Context().Value(contextKeyVisitorID).(string)
	return id
}

// WithVisitorID returns a copy of r carrying id, for handlers used outside
// the middleware chain.
func WithVisitorID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKeyVisitorID, id))
}

// AdminTokenMiddleware requires the configured token on admin routes. An
// empty token disables the check.
func AdminTokenMiddleware(token string) mux.MiddlewareFunc {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			got := extractToken(r)
			if got == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusForbidden, "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads a bearer token from the Authorization header, falling
// back to the ?token= query parameter.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs each request and records its latency.
func RequestLogger() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			metrics.RecordHTTPRequest(r.Method, rec.status, elapsed.Seconds())
			if strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				return
			}
			log.Printf("[http] %s %s status=%d took=%dms", r.Method, r.URL.Path, rec.status, elapsed.Milliseconds())
		})
	}
}
