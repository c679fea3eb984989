// Package repo provides the feature table repositories
package repo

import (
	"context"
	"fmt"
	"strings"

	"eogfeat/internal/core/features"
	"eogfeat/internal/modkit/repokit"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/store"
	"eogfeat/internal/services/features/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the feature table repository
type Storage interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, xs []domain.Stored) error
	List(ctx context.Context, f domain.Filter) ([]domain.Stored, error)
	Count(ctx context.Context, f domain.Filter) (int, error)
	Records(ctx context.Context) ([]features.Record, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS eog_features (
	id                    uuid PRIMARY KEY,
	run_id                uuid NOT NULL,
	subject               text NOT NULL,
	condition             text NOT NULL,
	source                text NOT NULL,
	blink_rate            double precision NOT NULL,
	fixation_duration     double precision,
	saccade_amplitude     double precision NOT NULL,
	velocity              double precision NOT NULL,
	blinks                integer NOT NULL,
	samples               integer NOT NULL,
	lines                 integer NOT NULL,
	rows_kept             integer NOT NULL,
	dropped_malformed     integer NOT NULL,
	dropped_non_monotonic integer NOT NULL,
	rescaled              boolean NOT NULL,
	updated_at            timestamptz NOT NULL DEFAULT now(),
	UNIQUE (subject, condition, source)
);
CREATE INDEX IF NOT EXISTS eog_features_condition_idx ON eog_features (condition, subject)`

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	_, err := s.q.Exec(ctx, schema)
	return perr.FromPostgres(err, "ensure eog_features schema")
}

const (
	upsertCols = 17

	// maxParams is the Postgres bind parameter limit per statement
	maxParams = 65535
)

// upsertRows is the number of rows sent per INSERT statement
var upsertRows = maxParams / upsertCols

// Upsert implements Storage; a row with the same subject, condition and source is replaced
// and keeps its original id. Large batches are split into several statements on the same
// Queryer, so callers wanting all-or-nothing run it inside a tx.
func (s *pg) Upsert(ctx context.Context, xs []domain.Stored) error {
	for len(xs) > 0 {
		n := min(len(xs), upsertRows)
		if err := s.upsert(ctx, xs[:n]); err != nil {
			return err
		}
		xs = xs[n:]
	}
	return nil
}

func (s *pg) upsert(ctx context.Context, xs []domain.Stored) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO eog_features
		(id, run_id, subject, condition, source, blink_rate, fixation_duration,
		saccade_amplitude, velocity, blinks, samples, lines, rows_kept,
		dropped_malformed, dropped_non_monotonic, rescaled, updated_at) VALUES `)

	args := make([]any, 0, len(xs)*upsertCols)
	for i, r := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*upsertCols + 1
		sb.WriteByte('(')
		for j := 0; j < upsertCols; j++ {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteByte(')')

		args = append(args,
			r.ID, r.RunID, r.Subject, r.Condition.String(), r.Source,
			r.BlinkRate, r.FixationDuration, r.SaccadeAmplitude, r.Velocity,
			r.Blinks, r.Samples, r.Stats.Lines, r.Stats.Rows,
			r.Stats.DroppedMalformed, r.Stats.DroppedNonMonotonic, r.Stats.Rescaled, r.UpdatedAt,
		)
	}
	sb.WriteString(` ON CONFLICT (subject, condition, source) DO UPDATE SET
		run_id = EXCLUDED.run_id,
		blink_rate = EXCLUDED.blink_rate,
		fixation_duration = EXCLUDED.fixation_duration,
		saccade_amplitude = EXCLUDED.saccade_amplitude,
		velocity = EXCLUDED.velocity,
		blinks = EXCLUDED.blinks,
		samples = EXCLUDED.samples,
		lines = EXCLUDED.lines,
		rows_kept = EXCLUDED.rows_kept,
		dropped_malformed = EXCLUDED.dropped_malformed,
		dropped_non_monotonic = EXCLUDED.dropped_non_monotonic,
		rescaled = EXCLUDED.rescaled,
		updated_at = EXCLUDED.updated_at`)

	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgres(err, "upsert eog_features")
}

// where renders the filter predicates and appends their args
func where(f domain.Filter, args *[]any) string {
	arg := func(v any) string { *args = append(*args, v); return fmt.Sprintf("$%d", len(*args)) }
	var sb strings.Builder
	sb.WriteString("WHERE TRUE\n")
	if f.Condition.Valid() {
		sb.WriteString("  AND condition = " + arg(f.Condition.String()) + "\n")
	}
	if f.Subject != "" {
		sb.WriteString("  AND subject = " + arg(f.Subject) + "\n")
	}
	return sb.String()
}

// List implements Storage; rows come back in condition, subject, source order
func (s *pg) List(ctx context.Context, f domain.Filter) ([]domain.Stored, error) {
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	var sb strings.Builder
	sb.WriteString(`
		SELECT id::text, run_id::text, subject, condition, source,
			blink_rate, fixation_duration, saccade_amplitude, velocity, blinks, samples,
			lines, rows_kept, dropped_malformed, dropped_non_monotonic, rescaled, updated_at
		FROM eog_features
	`)
	sb.WriteString(where(f, &args))
	sb.WriteString("ORDER BY condition, subject, source\n")
	if f.Limit > 0 {
		sb.WriteString("LIMIT " + arg(f.Limit) + "\n")
	}
	if f.Offset > 0 {
		sb.WriteString("OFFSET " + arg(f.Offset))
	}

	out, err := store.Many(ctx, s.q, scanStored, sb.String(), args...)
	return out, perr.FromPostgres(err, "list eog_features")
}

// Count implements Storage
func (s *pg) Count(ctx context.Context, f domain.Filter) (int, error) {
	var args []any
	q := "SELECT count(*) FROM eog_features\n" + where(f, &args)
	n, err := store.Scalar[int64](ctx, s.q, q, args...)
	return int(n), perr.FromPostgres(err, "count eog_features")
}

// Records implements Storage; it returns every stored feature record
func (s *pg) Records(ctx context.Context) ([]features.Record, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (features.Record, error) {
		var (
			rec  features.Record
			cond string
		)
		if err := r.Scan(&rec.Subject, &cond, &rec.BlinkRate, &rec.FixationDuration,
			&rec.SaccadeAmplitude, &rec.Velocity, &rec.Blinks, &rec.Samples); err != nil {
			return rec, err
		}
		c, err := features.ParseCondition(cond)
		rec.Condition = c
		return rec, err
	}, `SELECT subject, condition, blink_rate, fixation_duration, saccade_amplitude, velocity, blinks, samples
		FROM eog_features ORDER BY condition, subject`)
	return out, perr.FromPostgres(err, "read eog_features")
}

func scanStored(r store.Row) (domain.Stored, error) {
	var (
		x    domain.Stored
		cond string
	)
	if err := r.Scan(
		&x.ID, &x.RunID, &x.Subject, &cond, &x.Source,
		&x.BlinkRate, &x.FixationDuration, &x.SaccadeAmplitude, &x.Velocity, &x.Blinks, &x.Samples,
		&x.Stats.Lines, &x.Stats.Rows, &x.Stats.DroppedMalformed, &x.Stats.DroppedNonMonotonic,
		&x.Stats.Rescaled, &x.UpdatedAt,
	); err != nil {
		return x, err
	}
	c, err := features.ParseCondition(cond)
	x.Condition = c
	return x, err
}
