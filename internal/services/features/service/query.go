package service

import (
	"context"

	"eogfeat/internal/core/aggregate"
	"eogfeat/internal/modkit/repokit"
	perr "eogfeat/internal/platform/errors"
	dom "eogfeat/internal/services/features/domain"
	"eogfeat/internal/services/features/repo"
)

// QueryConfig for the query service
type QueryConfig struct {
	HardLimit int
}

// Query implements dom.ReaderPort against the Postgres feature table
type Query struct {
	DB     repokit.Queryer
	Binder repokit.Binder[repo.Storage]
	Cfg    QueryConfig
}

// NewQuery constructs a query service
func NewQuery(db repokit.Queryer, binder repokit.Binder[repo.Storage], cfg QueryConfig) *Query {
	if db == nil {
		panic("features.Query requires a non nil Queryer")
	}
	if binder == nil {
		panic("features.Query requires a non nil Repo binder")
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 100
	}
	return &Query{DB: db, Binder: binder, Cfg: cfg}
}

// List implements dom.ReaderPort; an unbootstrapped table reads as empty
func (s *Query) List(ctx context.Context, f dom.Filter) ([]dom.Stored, int, error) {
	if f.Limit <= 0 || f.Limit > s.Cfg.HardLimit {
		f.Limit = s.Cfg.HardLimit
	}
	f.Offset = max(f.Offset, 0)

	st := s.Binder.Bind(s.DB)
	total, err := st.Count(ctx, f)
	if perr.IsUndefinedTable(err) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	rows, err := st.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Summary implements dom.ReaderPort
func (s *Query) Summary(ctx context.Context) ([]aggregate.ConditionSummary, error) {
	recs, err := s.Binder.Bind(s.DB).Records(ctx)
	if perr.IsUndefinedTable(err) {
		return []aggregate.ConditionSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	return aggregate.Summarize(recs), nil
}

// Disabled implements dom.ReaderPort when no feature store is configured
type Disabled struct{}

// List implements dom.ReaderPort
func (Disabled) List(context.Context, dom.Filter) ([]dom.Stored, int, error) {
	return nil, 0, perr.Unavailablef("feature store is not configured")
}

// Summary implements dom.ReaderPort
func (Disabled) Summary(context.Context) ([]aggregate.ConditionSummary, error) {
	return nil, perr.Unavailablef("feature store is not configured")
}
