// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"eogfeat/internal/core/pipeline"
	"eogfeat/internal/core/version"
	"eogfeat/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies; PG and CH are nil when disabled
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Params      pipeline.Params
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/pipeline", h.pipeline)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"eogfeat-api"`
	Started string `json:"started"  example:"2026-10-14T09:00:00Z"`
	Now     string `json:"now"      example:"2026-10-14T09:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Millis int64  `json:"ms,omitempty" example:"3"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-14T09:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"eogfeat-api"`
	Started string `json:"started" example:"2026-10-14T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// PipelineResponse reports the effective extraction settings and build info
type PipelineResponse struct {
	Params pipeline.Params   `json:"params"`
	Build  version.BuildInfo `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	backends := []struct {
		name string
		conn any
	}{{"pg", h.deps.PG}, {"ch", h.deps.CH}}

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(backends))}
	for _, b := range backends {
		c := probe(ctx, b.name, b.conn)
		out.Status = worst(out.Status, c.Status)
		out.Checks = append(out.Checks, c)
	}
	out.Now = time.Now().UTC().Format(time.RFC3339)
	return out, nil
}

const readyTimeout = 2 * time.Second

func probe(ctx stdctx.Context, name string, conn any) ReadyCheck {
	if conn == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := conn.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	start := time.Now()
	err := p.Ping(ctx)
	c := ReadyCheck{Name: name, Status: "ok", Millis: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status, c.Error = "fail", err.Error()
	}
	return c
}

// worst folds one check into the overall status; skipped backends are optional
func worst(overall, check string) string {
	switch {
	case check == "fail" || overall == "fail":
		return "fail"
	case check == "unknown":
		return "degraded"
	}
	return overall
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// swagger:route GET /meta/pipeline Meta metaPipeline
// @Summary Effective extraction settings
// @Tags Meta
// @Produce json
// @Success 200 type PipelineResponse ok
// @Router /meta/pipeline [get]
func (h *handlers) pipeline(_ *http.Request) (any, error) {
	return PipelineResponse{Params: h.deps.Params, Build: version.Info(h.deps.ServiceName)}, nil
}
