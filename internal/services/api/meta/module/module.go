// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"eogfeat/internal/core/pipeline"
	"eogfeat/internal/modkit"
	"eogfeat/internal/modkit/httpkit"

	metahttp "eogfeat/internal/services/api/meta/http"
)

// Ports are the inputs the meta module reports on
type Ports struct {
	Params pipeline.Params
}

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	startedAt time.Time
}

// New constructs a meta module; pass modkit.WithPorts(Ports{...}) to report pipeline settings
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{startedAt: time.Now()}
	in, _ := b.Ports.(Ports)

	d := metahttp.Deps{
		ServiceName: "eogfeat-api",
		StartedAt:   m.startedAt,
		Params:      in.Params,
	}
	// keep the interface nil when a backend is disabled
	if deps.PG != nil {
		d.PG = deps.PG
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		metahttp.Register(r, d)
		external(r)
	}
	m.b = b
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.b.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the mount prefix
func (m *Module) Prefix() string { return m.b.Prefix }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
