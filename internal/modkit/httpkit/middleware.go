package httpkit

import (
	"net/http"
	"time"

	"eogfeat/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Slow        time.Duration
	Timeout     time.Duration
	CORSOrigins []string
}

// CommonStack is the scope chain mounted under /api/v1; Defaults run first so every route logs and recovers
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Minute
	}
	out := append([]func(http.Handler) http.Handler{}, middleware.Defaults(o.Slow)...)
	if len(o.CORSOrigins) > 0 {
		out = append(out, middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}))
	}
	return append(out,
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	)
}
