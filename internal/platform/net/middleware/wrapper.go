// Package middleware provides thin adapters over chi middleware and a few in house ones
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is the stdlib handler decorator shape
type Middleware = func(http.Handler) http.Handler

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() Middleware { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Forwarded-For or X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// NoCache disables client and proxy caching
func NoCache() Middleware { return chimw.NoCache }

// Compress negotiates gzip or deflate at level
func Compress(level int) Middleware {
	c := chimw.NewCompressor(level)
	return c.Handler
}

// StripSlashes strips a trailing slash from the request path
func StripSlashes() Middleware { return chimw.StripSlashes }

// Throttle caps concurrent requests; extraction requests are CPU bound
func Throttle(limit int) Middleware { return chimw.Throttle(limit) }

// Heartbeat replies 200 to GET path before routing
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors filling empty method and header lists
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   orDefault(o.AllowedMethods, []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   orDefault(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   orDefault(o.ExposedHeaders, []string{"X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

func orDefault(in, def []string) []string {
	if len(in) == 0 {
		return def
	}
	return in
}

// Defaults is the base chain for the api: request id, real ip, access log, panic recovery, compression
func Defaults(slow time.Duration) []Middleware {
	return []Middleware{
		RequestID(),
		RealIP(),
		AccessLog(AccessLogOptions{Slow: slow}),
		RecoverJSON,
		Compress(flate.DefaultCompression),
		NoCache(),
	}
}
