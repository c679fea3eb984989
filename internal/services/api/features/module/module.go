// Package module wires the feature endpoints into the API
package module

import (
	"eogfeat/internal/modkit"
	"eogfeat/internal/modkit/httpkit"
	"eogfeat/internal/services/features/domain"

	featureshttp "eogfeat/internal/services/api/features/http"
)

// Ports are the service ports the endpoints call; inject with modkit.WithPorts
type Ports struct {
	Extractor domain.ExtractorPort
	Writer    domain.WriterPort
	Reader    domain.ReaderPort
}

// Module implements the modkit.Module interface
type Module struct {
	b     modkit.Built
	ports Ports
}

// New constructs the features API module. It panics without an Extractor or Reader.
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("features"),
		modkit.WithPrefix("/features"),
	}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok || p.Extractor == nil || p.Reader == nil {
		panic("features api module requires Ports with an Extractor and a Reader")
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		featureshttp.Register(r, featureshttp.Deps{
			Extractor: p.Extractor,
			Writer:    p.Writer,
			Reader:    p.Reader,
		})
		external(r)
	}
	return &Module{b: b, ports: p}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.b.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
