package service

import (
	"context"
	"time"

	"eogfeat/internal/modkit/repokit"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/logger"
	dom "eogfeat/internal/services/features/domain"
	"eogfeat/internal/services/features/repo"

	"github.com/google/uuid"
)

// Writer implements dom.WriterPort and dom.SchemaPort over Postgres and ClickHouse;
// either backend may be nil
type Writer struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	CH     *repo.CH

	now func() time.Time
}

// NewWriter constructs a writer; a non nil db requires a binder
func NewWriter(db repokit.TxRunner, binder repokit.Binder[repo.Storage], ch *repo.CH) *Writer {
	if db != nil && binder == nil {
		panic("features.Writer requires a non nil Repo binder")
	}
	return &Writer{DB: db, Binder: binder, CH: ch, now: time.Now}
}

// Save implements dom.WriterPort. Postgres is written in one transaction before the
// ClickHouse append so a failed upsert leaves the sink untouched.
func (w *Writer) Save(ctx context.Context, runID string, rows []dom.Row) error {
	if len(rows) == 0 {
		return nil
	}
	now := w.now().UTC()
	xs := make([]dom.Stored, len(rows))
	for i, r := range rows {
		xs[i] = dom.Stored{Row: r, ID: uuid.NewString(), RunID: runID, UpdatedAt: now}
	}

	if w.DB != nil {
		if err := repokit.WithTx(ctx, w.DB, func(q repokit.Queryer) error {
			return w.Binder.Bind(q).Upsert(ctx, xs)
		}); err != nil {
			return err
		}
	}
	if w.CH != nil {
		if err := w.CH.Append(ctx, xs); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "append feature rows to clickhouse")
		}
	}
	logger.C(ctx).Debug().Int("rows", len(xs)).Bool("pg", w.DB != nil).Bool("ch", w.CH != nil).Msg("feature rows saved")
	return nil
}

// EnsureSchema implements dom.SchemaPort
func (w *Writer) EnsureSchema(ctx context.Context) error {
	if w.DB != nil {
		if err := w.Binder.Bind(w.DB).EnsureSchema(ctx); err != nil {
			return err
		}
	}
	if w.CH != nil {
		if err := w.CH.EnsureSchema(ctx); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "ensure clickhouse schema")
		}
	}
	return nil
}
