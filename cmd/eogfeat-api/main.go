// @title         eogfeat API
// @version       0.1.0
// @description   EOG feature extraction and stored feature tables

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eogfeat/internal/modkit/httpkit"
	"eogfeat/internal/platform/config"
	"eogfeat/internal/platform/logger"
	phttp "eogfeat/internal/platform/net/http"
	"eogfeat/internal/platform/store"

	"eogfeat/internal/services/api"
	featuresmod "eogfeat/internal/services/features/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// backends are optional; SERVICE_PGSQL_DBURL / SERVICE_CLICKHOUSE_DBURL enable them
	st, err := store.Open(ctx, store.FromEnv(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when a configured backend is unreachable
	api.RequireBackends(ctx, st)

	// http server (reads CORE_API_PORT and timeouts)
	srv := phttp.NewServer(apiCfg)

	svc := api.Mount(
		srv.Router(),
		api.Options{
			Config: root,
			Store:  st,
			Logger: l,
			Stack: httpkit.StackOptions{
				Slow:        apiCfg.MayDuration("SLOW", 2*time.Second),
				Timeout:     apiCfg.MayDuration("REQUEST_TIMEOUT", 2*time.Minute),
				CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			},
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if apiCfg.MayBool("BOOTSTRAP_SCHEMA", true) {
		if schema := svc.Ports().(featuresmod.Ports).Schema; schema != nil {
			if err := schema.EnsureSchema(ctx); err != nil {
				l.Panic().Err(err).Msg("schema bootstrap failed")
			}
		}
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
