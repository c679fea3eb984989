package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eogfeat/internal/platform/logger"
	"eogfeat/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestAccessLog(t *testing.T) {
	cases := []struct {
		name   string
		slow   time.Duration
		status int
		chunks []string
	}{
		{"created", 0, http.StatusCreated, []string{"ok"}},
		{"slow marking", time.Nanosecond, http.StatusOK, []string{"slow"}},
		{"multiple writes", 0, http.StatusOK, []string{"hi", "there"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if c.status != http.StatusOK {
					w.WriteHeader(c.status)
				}
				for _, s := range c.chunks {
					_, _ = io.WriteString(w, s)
				}
			})
			rr := httptest.NewRecorder()
			middleware.AccessLog(middleware.AccessLogOptions{Slow: c.slow})(next).
				ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

			if rr.Code != c.status {
				t.Fatalf("status = %d, want %d", rr.Code, c.status)
			}
			want := ""
			for _, s := range c.chunks {
				want += s
			}
			if rr.Body.String() != want {
				t.Fatalf("body = %q, want %q", rr.Body.String(), want)
			}
		})
	}
}

func TestAccessLog_KeepsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimw.GetReqID(r.Context())
		logger.C(r.Context()).Debug().Msg("inside")
	})
	h := chimw.RequestID(middleware.AccessLog(middleware.AccessLogOptions{})(next))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", seen)
	}
}
