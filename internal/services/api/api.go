// Package api provides the HTTP API for the application
package api

import (
	"context"

	"eogfeat/internal/platform/config"
	"eogfeat/internal/platform/logger"
	phttp "eogfeat/internal/platform/net/http"
	"eogfeat/internal/platform/store"

	"eogfeat/internal/modkit"
	"eogfeat/internal/modkit/httpkit"
	"eogfeat/internal/modkit/module"
	"eogfeat/internal/modkit/repokit"
	"eogfeat/internal/modkit/swaggerkit"

	apifeatures "eogfeat/internal/services/api/features/module"
	metamod "eogfeat/internal/services/api/meta/module"

	// Service module that owns the pipeline and the storage ports
	featuresvc "eogfeat/internal/services/features/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Stack          httpkit.StackOptions
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the features service module
func Mount(r phttp.Router, opt Options) *featuresvc.Module {
	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}
	deps := modkit.FromStore(*log, opt.Config, opt.Store)

	// Construct the service module first and hand its ports to the API modules
	svc := featuresvc.New(deps)
	ports := module.MustPortsOf[featuresvc.Ports](svc)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Params: ports.Params})),
		apifeatures.New(deps, modkit.WithPorts(apifeatures.Ports{
			Extractor: ports.Extractor,
			Writer:    ports.Writer,
			Reader:    ports.Reader,
		})),
		svc, // include the service so its ports are registered
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return svc
}

// RequireBackends panics when a configured pg or ch backend does not answer a ping.
// Disabled backends and seams without Ping are left alone.
func RequireBackends(ctx context.Context, st *store.Store) {
	if st == nil {
		return
	}
	if p, ok := st.PG.(store.Pinger); ok {
		repokit.MustPing(ctx, "pg", p)
	}
	if p, ok := st.CH.(store.Pinger); ok {
		repokit.MustPing(ctx, "ch", p)
	}
}
