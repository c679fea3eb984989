package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"eogfeat/internal/platform/config"
	perr "eogfeat/internal/platform/errors"
	kit "eogfeat/internal/platform/testkit"
)

type pingFake struct {
	err    error
	closed bool
}

func (p *pingFake) Ping(context.Context) error { return p.err }

type chFake struct {
	pingFake
	appended [][]any
}

func (c *chFake) Append(_ context.Context, _ string, rows [][]any) error {
	c.appended = append(c.appended, rows...)
	return nil
}
func (c *chFake) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (c *chFake) Exec(context.Context, string, ...any) error          { return nil }
func (c *chFake) Close() error                                        { c.closed = true; return nil }

func TestRetry(t *testing.T) {
	var slept []time.Duration
	kit.Swap(t, &sleep, func(d time.Duration) { slept = append(slept, d) })

	calls := 0
	err := retry(context.Background(), 5, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("retry err=%v calls=%d", err, calls)
	}
	if len(slept) != 2 || slept[0] != backoffStart || slept[1] != 2*backoffStart {
		t.Fatalf("backoff = %v", slept)
	}

	slept = nil
	err = retry(context.Background(), 6, func() error { return errors.New("down") })
	if err == nil {
		t.Fatalf("expected exhausted error")
	}
	kit.MustContain(t, err.Error(), "after 6 attempts")
	if len(slept) != 5 || slept[4] != backoffCeiling {
		t.Fatalf("capped backoff = %v", slept)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := retry(ctx, 5, func() error { return errors.New("down") }); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled retry = %v", err)
	}
}

func TestGuard(t *testing.T) {
	if err := (*Store)(nil).Guard(context.Background()); err == nil {
		t.Fatalf("nil store should fail guard")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("empty store guard = %v", err)
	}
	ch := &chFake{pingFake: pingFake{err: errors.New("ch down")}}
	s := &Store{CH: ch}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("expected ch failure")
	}
	kit.MustContain(t, err.Error(), "ch: ch down")
}

func TestClose(t *testing.T) {
	if err := (*Store)(nil).Close(context.Background()); err != nil {
		t.Fatalf("nil close = %v", err)
	}
	ch := &chFake{}
	if err := (&Store{CH: ch}).Close(context.Background()); err != nil || !ch.closed {
		t.Fatalf("close err=%v closed=%v", err, ch.closed)
	}
}

func TestOpen_NothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("no backends expected")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@localhost:5432/eog")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "8")
	t.Setenv("SERVICE_PGSQL_LOG_SQL", "true")
	cfg := FromEnv(config.New(), "cli")
	if !cfg.PG.Enabled || cfg.PG.MaxConns != 8 || !cfg.PG.LogSQL {
		t.Fatalf("pg config = %+v", cfg.PG)
	}
	if cfg.CH.Enabled {
		t.Fatalf("ch should be disabled without DBURL")
	}
	if cfg.AppName != "eogfeat-cli" || cfg.CH.ClientTag != "cli" {
		t.Fatalf("names = %q %q", cfg.AppName, cfg.CH.ClientTag)
	}
	if cfg.PG.ConnectRetries != 20 || cfg.PG.PingTimeout != 3*time.Second {
		t.Fatalf("defaults = %+v", cfg.PG)
	}
}

// fakeQuerier serves canned rows for the helper tests
type fakeQuerier struct {
	data     [][]any
	affected int64
	err      error
}

type fakeTag int64

func (f fakeTag) String() string      { return "FAKE" }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	for j, d := range dest {
		*(d.(*string)) = r.data[r.i-1][j].(string)
	}
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"subject"} }

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag(f.affected), f.err
}
func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{data: f.data}, nil
}
func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row {
	return &fakeRows{data: f.data, i: 1}
}

func scanSubject(r Row) (string, error) {
	var s string
	err := r.Scan(&s)
	return s, err
}

func TestHelpers(t *testing.T) {
	ctx := context.Background()

	if err := ExecOne(ctx, &fakeQuerier{affected: 1}, "UPDATE"); err != nil {
		t.Fatalf("ExecOne: %v", err)
	}
	if err := ExecOne(ctx, &fakeQuerier{affected: 2}, "UPDATE"); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("ExecOne two rows = %v", err)
	}

	q := &fakeQuerier{data: [][]any{{"S01"}, {"S02"}}}
	got, err := Many(ctx, q, scanSubject, "SELECT")
	if err != nil || len(got) != 2 || got[1] != "S02" {
		t.Fatalf("Many = %v, %v", got, err)
	}
	if _, err := One(ctx, q, scanSubject, "SELECT"); err == nil {
		t.Fatalf("One with two rows should fail")
	}
	if _, err := One(ctx, &fakeQuerier{}, scanSubject, "SELECT"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("One empty = %v", err)
	}
	one, err := One(ctx, &fakeQuerier{data: [][]any{{"S09"}}}, scanSubject, "SELECT")
	if err != nil || one != "S09" {
		t.Fatalf("One = %q, %v", one, err)
	}
	s, err := Scalar[string](ctx, &fakeQuerier{data: [][]any{{"v"}}}, "SELECT")
	if err != nil || s != "v" {
		t.Fatalf("Scalar = %q, %v", s, err)
	}
}
