package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func visitorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(VisitorID(r)))
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestVisitorMiddlewareIssuesCookie(t *testing.T) {
	handler := VisitorMiddleware()(visitorEcho())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie {
		t.Fatalf("expected visitor cookie, got %+v", cookies)
	}
	if _, err := uuid.Parse(cookies[0].Value); err != nil {
		t.Fatalf("expected uuid cookie value, got %q", cookies[0].Value)
	}
	if rec.Body.String() != cookies[0].Value {
		t.Fatalf("expected handler to see visitor %q, got %q", cookies[0].Value, rec.Body.String())
	}
}

func TestVisitorMiddlewareReusesCookie(t *testing.T) {
	handler := VisitorMiddleware()(visitorEcho())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: id})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no new cookie for a returning visitor")
	}
	if rec.Body.String() != id {
		t.Fatalf("expected visitor %q, got %q", id, rec.Body.String())
	}
}

func TestVisitorMiddlewareReplacesInvalidCookie(t *testing.T) {
	handler := VisitorMiddleware()(visitorEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Body.String() == "not-a-uuid" || rec.Body.String() == "" {
		t.Fatalf("expected a fresh visitor id, got %q", rec.Body.String())
	}
}

func TestAdminTokenMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(AdminTokenMiddleware("s3cret"))
	r.Handle("/api/admin/refresh", okHandler()).Methods(http.MethodPost)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong", header: "Bearer nope", want: http.StatusForbidden},
		{name: "bearer", header: "Bearer s3cret", want: http.StatusOK},
		{name: "query", query: "?token=s3cret", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAdminTokenMiddlewareDisabled(t *testing.T) {
	handler := AdminTokenMiddleware("")(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no token configured, got %d", rec.Code)
	}
}

func TestRequestLoggerCapturesStatus(t *testing.T) {
	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/home", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
}
