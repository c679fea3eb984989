package store

import (
	"time"

	"eogfeat/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*; a backend is enabled when its DBURL is set
func FromEnv(root config.Conf, role string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")
	return Config{
		AppName: "eogfeat-" + role,
		PG: PGConfig{
			Enabled:        pgURL != "",
			URL:            pgURL,
			MaxConns:       int32(pg.MayPositiveInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			ConnectRetries: pg.MayPositiveInt("CONNECT_RETRIES", 20),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			ClientName: "eogfeat",
			ClientTag:  role,
		},
	}
}
