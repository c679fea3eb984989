// Package module implements the features service module
package module

import (
	"eogfeat/internal/adapters/ingest/recordings"
	"eogfeat/internal/core/pipeline"
	"eogfeat/internal/modkit"
	"eogfeat/internal/modkit/httpkit"
	"eogfeat/internal/services/features/domain"
	"eogfeat/internal/services/features/repo"
	"eogfeat/internal/services/features/service"
)

// Ports exposed by the features module. Writer and Schema are nil when no
// backend is configured; Reader then answers unavailable.
type Ports struct {
	Runner    domain.RunnerPort
	Extractor domain.ExtractorPort
	Writer    domain.WriterPort
	Schema    domain.SchemaPort
	Reader    domain.ReaderPort
	Params    pipeline.Params
}

// Module implements the features service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the features module from EOG_* settings plus overrides.
// It panics on an invalid pipeline configuration. It does not mount any routes.
func New(deps modkit.Deps, overrides ...Option) *Module {
	opts := FromConfig(deps.Cfg)
	for _, o := range overrides {
		o(&opts)
	}

	pipe, err := pipeline.New(opts.Pipeline)
	if err != nil {
		panic("features: " + err.Error())
	}

	binder := repo.NewPG()
	var (
		writer *service.Writer
		reader domain.ReaderPort = service.Disabled{}
	)
	if deps.PG != nil || deps.CH != nil {
		var ch *repo.CH
		if deps.CH != nil {
			ch = repo.NewCH(deps.CH)
		}
		writer = service.NewWriter(deps.PG, binder, ch)
	}
	if deps.PG != nil {
		reader = service.NewQuery(deps.PG, binder, service.QueryConfig{HardLimit: opts.HardLimit})
	}

	var wp domain.WriterPort
	if writer != nil {
		wp = writer
	}
	runner := service.NewRunner(pipe, recordings.Open, wp, service.Config{
		Workers: opts.Workers,
		Timeout: opts.Timeout,
	})

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{
		Runner:    runner,
		Extractor: runner,
		Writer:    wp,
		Reader:    reader,
		Params:    pipe.Params(),
	}
	if writer != nil {
		m.ports.Schema = writer
	}
	return m
}

// Options returns the resolved settings
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "features-service" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}
