package store

import (
	"context"
	"fmt"
	"time"

	chx "eogfeat/internal/platform/store/ch"
	"eogfeat/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// sleep is a seam for tests
var sleep = time.Sleep

// openPG opens the pool, waits for it to answer and wraps it with the sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}
	appName := cfg.AppName
	p, err := pg.Open(ctx, pg.Config{URL: cfg.PG.URL, MaxConns: cfg.PG.MaxConns, SlowMs: cfg.PG.SlowQueryMs}, tracer,
		func(pc *pgxpool.Config) {
			if appName != "" {
				pc.ConnConfig.RuntimeParams["application_name"] = appName
			}
		})
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	err = retry(ctx, attempts, func() error {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(toCtx)
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// retry calls fn until it succeeds, ctx ends or attempts run out, with capped exponential backoff
func retry(ctx context.Context, attempts int, fn func() error) error {
	var last error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		if last = fn(); last == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, last)
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("tag", cfg.CH.ClientTag).Msg("clickhouse connected")
	return newCHAdapter(c), nil
}
