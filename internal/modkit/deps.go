package modkit

import (
	"eogfeat/internal/modkit/repokit"
	"eogfeat/internal/platform/config"
	"eogfeat/internal/platform/logger"
	"eogfeat/internal/platform/store"
)

// Deps holds core dependencies passed to modules; PG and CH are nil when the backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore copies the enabled seams of st into Deps
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
