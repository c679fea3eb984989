package store

import (
	"context"
	"errors"
	"time"

	"eogfeat/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgAdapter wraps pg.PG and implements TxRunner, tracing each statement when a tracer is set
type pgAdapter struct {
	p     *pg.PG
	trace traceFn
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{p: p, trace: newTrace(p.Tracer, p.SlowMs)}
}

// pgxQuerier is the part of pgxpool.Pool and pgx.Tx the adapter drives
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return traced{q: a.p.Pool, trace: a.trace}.Exec(ctx, sql, args...)
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return traced{q: a.p.Pool, trace: a.trace}.Query(ctx, sql, args...)
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return traced{q: a.p.Pool, trace: a.trace}.QueryRow(ctx, sql, args...)
}

// Tx runs fn inside a transaction, rolling back on error
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(traced{q: tx, trace: a.trace}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// traced runs statements on a pool or tx and reports them to the tracer
type traced struct {
	q     pgxQuerier
	trace traceFn
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.trace(ctx, sql, args, start, err)
	return tag{ct}, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.q.QueryRow(ctx, sql, args...)
	return row{r: r, after: func(scanErr error) { t.trace(ctx, sql, args, start, scanErr) }}
}

type traceFn func(ctx context.Context, sql string, args []any, start time.Time, err error)

// newTrace returns a no-op when tracer is nil; slowMs < 0 disables the slow flag
func newTrace(tracer pg.QueryTracer, slowMs int) traceFn {
	if tracer == nil {
		return func(context.Context, string, []any, time.Time, error) {}
	}
	slowUS := int64(slowMs) * 1000
	return func(ctx context.Context, sql string, args []any, start time.Time, err error) {
		elapsed := time.Since(start).Microseconds()
		tracer.OnQuery(ctx, pg.QueryEvent{
			SQL:       sql,
			Args:      args,
			ElapsedUS: elapsed,
			Err:       err,
			Slow:      slowUS >= 0 && elapsed >= slowUS,
		})
	}
}

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }
func (x rows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}

type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }
