package repo

import (
	"context"

	"eogfeat/internal/platform/store"
	"eogfeat/internal/services/features/domain"
)

// CHTable is the analytics sink table
const CHTable = "eog_features"

const chSchema = `
CREATE TABLE IF NOT EXISTS eog_features (
	id                String,
	run_id            String,
	subject           String,
	condition         LowCardinality(String),
	source            String,
	blink_rate        Float64,
	fixation_duration Nullable(Float64),
	saccade_amplitude Float64,
	velocity          Float64,
	blinks            UInt32,
	samples           UInt32,
	inserted_at       DateTime64(3)
) ENGINE = MergeTree
ORDER BY (condition, subject, inserted_at)`

// CH appends feature rows to ClickHouse; every run adds rows, nothing is updated
type CH struct {
	c store.Clickhouse
}

// NewCH wraps a clickhouse seam
func NewCH(c store.Clickhouse) *CH { return &CH{c: c} }

// EnsureSchema creates the sink table when missing
func (r *CH) EnsureSchema(ctx context.Context) error {
	return r.c.Exec(ctx, chSchema)
}

// Append batches xs into the sink table
func (r *CH) Append(ctx context.Context, xs []domain.Stored) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, x := range xs {
		rows = append(rows, []any{
			x.ID, x.RunID, x.Subject, x.Condition.String(), x.Source,
			x.BlinkRate, x.FixationDuration, x.SaccadeAmplitude, x.Velocity,
			uint32(x.Blinks), uint32(x.Samples), x.UpdatedAt,
		})
	}
	return r.c.Append(ctx, CHTable, rows)
}
