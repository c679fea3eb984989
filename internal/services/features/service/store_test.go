package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eogfeat/internal/core/features"
	"eogfeat/internal/modkit/repokit"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/store"
	kit "eogfeat/internal/platform/testkit"
	dom "eogfeat/internal/services/features/domain"
	"eogfeat/internal/services/features/repo"

	"github.com/jackc/pgx/v5/pgconn"
)

// memStorage is an in memory repo.Storage
type memStorage struct {
	rows    []dom.Stored
	filters []dom.Filter
	schema  int
	err     error
}

func (m *memStorage) EnsureSchema(context.Context) error { m.schema++; return m.err }
func (m *memStorage) Upsert(_ context.Context, xs []dom.Stored) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, xs...)
	return nil
}
func (m *memStorage) List(_ context.Context, f dom.Filter) ([]dom.Stored, error) {
	m.filters = append(m.filters, f)
	return m.rows, m.err
}
func (m *memStorage) Count(_ context.Context, f dom.Filter) (int, error) {
	return len(m.rows), m.err
}
func (m *memStorage) Records(context.Context) ([]features.Record, error) {
	out := make([]features.Record, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Record
	}
	return out, m.err
}

// txDB is a TxRunner that hands itself to fn and counts transactions
type txDB struct {
	store.RowQuerier
	txs int
}

func (d *txDB) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	d.txs++
	return fn(d)
}

func binderFor(m *memStorage) repokit.Binder[repo.Storage] {
	return repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return m })
}

type chSeam struct {
	rows  [][]any
	execs int
	err   error
}

func (c *chSeam) Append(_ context.Context, _ string, rows [][]any) error {
	c.rows = append(c.rows, rows...)
	return c.err
}
func (c *chSeam) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (c *chSeam) Exec(context.Context, string, ...any) error                { c.execs++; return c.err }
func (c *chSeam) Close() error                                              { return nil }

func rowOf(subject string, cond features.Condition, blink float64, fix *float64) dom.Row {
	return dom.Row{Record: features.Record{Subject: subject, Condition: cond, BlinkRate: blink, FixationDuration: fix}, Source: subject + ".txt"}
}

func TestWriter_SaveBothBackends(t *testing.T) {
	m, db, ch := &memStorage{}, &txDB{}, &chSeam{}
	w := NewWriter(db, binderFor(m), repo.NewCH(ch))
	w.now = func() time.Time { return time.Unix(100, 0) }

	if err := w.Save(context.Background(), "run-1", nil); err != nil || db.txs != 0 {
		t.Fatalf("empty save: %v txs=%d", err, db.txs)
	}
	rows := []dom.Row{rowOf("S01", features.Baseline, 1, nil), rowOf("S02", features.Stress, 2, nil)}
	if err := w.Save(context.Background(), "run-1", rows); err != nil {
		t.Fatalf("save: %v", err)
	}
	if db.txs != 1 || len(m.rows) != 2 || len(ch.rows) != 2 {
		t.Fatalf("txs=%d pg=%d ch=%d", db.txs, len(m.rows), len(ch.rows))
	}
	if m.rows[0].RunID != "run-1" || m.rows[0].ID == "" || m.rows[0].ID == m.rows[1].ID {
		t.Fatalf("ids = %+v", m.rows)
	}
	if !m.rows[0].UpdatedAt.Equal(time.Unix(100, 0)) {
		t.Fatalf("updated_at = %v", m.rows[0].UpdatedAt)
	}

	if err := w.EnsureSchema(context.Background()); err != nil || m.schema != 1 || ch.execs != 1 {
		t.Fatalf("schema: %v pg=%d ch=%d", err, m.schema, ch.execs)
	}
}

func TestWriter_PGFailureSkipsCH(t *testing.T) {
	m, ch := &memStorage{err: perr.DBf("down")}, &chSeam{}
	w := NewWriter(&txDB{}, binderFor(m), repo.NewCH(ch))
	if err := w.Save(context.Background(), "r", []dom.Row{rowOf("S01", features.Baseline, 1, nil)}); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v", err)
	}
	if len(ch.rows) != 0 {
		t.Fatalf("clickhouse written after pg failure")
	}

	chOnly := NewWriter(nil, nil, repo.NewCH(&chSeam{err: errors.New("full")}))
	if err := chOnly.Save(context.Background(), "r", []dom.Row{rowOf("S01", features.Baseline, 1, nil)}); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("ch err = %v", err)
	}
	kit.MustPanic(t, func() { NewWriter(&txDB{}, nil, nil) })
}

func TestQuery_ListClampsAndSummarizes(t *testing.T) {
	fix := 4.0
	m := &memStorage{}
	for _, r := range []dom.Row{
		rowOf("S01", features.Baseline, 1, &fix),
		rowOf("S02", features.Baseline, 3, nil),
		rowOf("S01", features.Stress, 6, &fix),
	} {
		m.rows = append(m.rows, dom.Stored{Row: r})
	}
	q := NewQuery(&txDB{}, binderFor(m), QueryConfig{HardLimit: 50})

	rows, total, err := q.List(context.Background(), dom.Filter{Limit: 1000, Offset: -3})
	if err != nil || total != 3 || len(rows) != 3 {
		t.Fatalf("list = %d/%d, %v", len(rows), total, err)
	}
	if f := m.filters[0]; f.Limit != 50 || f.Offset != 0 {
		t.Fatalf("filter not clamped: %+v", f)
	}

	sums, err := q.Summary(context.Background())
	if err != nil || len(sums) != 2 {
		t.Fatalf("summary = %+v, %v", sums, err)
	}
	b := sums[0]
	if b.Condition != features.Baseline || b.N != 2 || b.FixationN != 1 || b.BlinkRate != 2 || *b.FixationDuration != 4 {
		t.Fatalf("baseline summary = %+v", b)
	}
}

func TestQuery_UndefinedTableIsEmpty(t *testing.T) {
	undefined := perr.FromPostgres(&pgconn.PgError{Code: "42P01"}, "count")
	q := NewQuery(&txDB{}, binderFor(&memStorage{err: undefined}), QueryConfig{})

	rows, total, err := q.List(context.Background(), dom.Filter{})
	if err != nil || rows != nil || total != 0 {
		t.Fatalf("list = %v %d %v", rows, total, err)
	}
	sums, err := q.Summary(context.Background())
	if err != nil || len(sums) != 0 {
		t.Fatalf("summary = %v %v", sums, err)
	}
	if q.Cfg.HardLimit != 100 {
		t.Fatalf("hard limit default = %d", q.Cfg.HardLimit)
	}
}

func TestDisabled(t *testing.T) {
	var d Disabled
	if _, _, err := d.List(context.Background(), dom.Filter{}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if _, err := d.Summary(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
