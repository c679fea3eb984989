// Command eogfeat extracts EOG features from a directory of recordings and
// writes one CSV table per condition plus a skip report
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"eogfeat/internal/adapters/ingest/recordings"
	"eogfeat/internal/adapters/table"
	"eogfeat/internal/core/aggregate"
	"eogfeat/internal/modkit"
	"eogfeat/internal/platform/config"
	"eogfeat/internal/platform/logger"
	"eogfeat/internal/platform/store"

	featuresmod "eogfeat/internal/services/features/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		fDir     = flag.String("dir", "", "directory holding the .txt recordings (or EOG_DIR)")
		fOut     = flag.String("out", "", "output directory for the tables (default: -dir)")
		fWorkers = flag.Int("workers", 0, "recordings processed concurrently (EOG_WORKERS)")
		fTimeout = flag.Duration("timeout", 0, "per recording timeout, 0 for none (EOG_RECORDING_TIMEOUT)")
		fPersist = flag.Bool("persist", false, "also write rows to the configured Postgres/ClickHouse")
		fSummary = flag.Bool("summary", false, "print per condition means after the run")
	)
	flag.Parse()

	// flags win over env
	if *fWorkers > 0 {
		mustSetEnv("EOG_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fTimeout > 0 {
		mustSetEnv("EOG_RECORDING_TIMEOUT", fTimeout.String())
	}
	mustSetEnv("EOG_DIR", *fDir)

	l := logger.Get()
	if err := run(*fOut, *fPersist, *fSummary); err != nil {
		l.Fatal().Err(err).Msg("eogfeat failed")
	}
}

func run(out string, persist, summary bool) error {
	root := config.New()
	l := logger.Named("batch")

	dir := root.Prefix("EOG_").MayString("DIR", "")
	if dir == "" {
		flag.Usage()
		return errors.New("-dir is required")
	}
	if out == "" {
		out = dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recs, ignored, err := recordings.Scan(dir)
	if err != nil {
		return err
	}
	for _, ig := range ignored {
		l.Warn().Str("file", ig.Name).Str("reason", ig.Reason).Msg("file ignored")
	}

	deps := modkit.Deps{Log: *l, Cfg: root}
	if persist {
		st, err := store.Open(ctx, store.FromEnv(root, "batch"), store.WithLogger(*l))
		if err != nil {
			return fmt.Errorf("store.Open failed: %w", err)
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
		deps = modkit.FromStore(*l, root, st)
	}

	m := featuresmod.New(deps)
	ports := m.Ports().(featuresmod.Ports)
	if persist {
		if ports.Schema == nil {
			return errors.New("-persist needs SERVICE_PGSQL_DBURL or SERVICE_CLICKHOUSE_DBURL")
		}
		if err := ports.Schema.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}

	res, runErr := ports.Runner.Run(ctx, recs)

	// tables are written even for an interrupted or unsaved run
	paths, err := table.WriteDir(out, res)
	if err != nil {
		return fmt.Errorf("write tables: %w", err)
	}

	fmt.Printf("run %s: %d recordings, %d extracted, %d skipped, %d files ignored\n",
		res.RunID, len(recs), len(res.Records), len(res.Skipped), len(ignored))
	for _, p := range paths {
		fmt.Println("wrote", p)
	}
	if summary {
		printSummary(os.Stdout, aggregate.Summarize(res.Features()))
	}
	return runErr
}

func printSummary(w io.Writer, sums []aggregate.ConditionSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CONDITION\tN\tBLINK RATE\tFIXATION\tSACCADE AMP\tVELOCITY")
	for _, s := range sums {
		fix := "-"
		if s.FixationDuration != nil {
			fix = strconv.FormatFloat(*s.FixationDuration, 'f', 4, 64)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%.4f\t%s\t%.4f\t%.4f\n",
			s.Condition.Tag(), s.N, s.BlinkRate, fix, s.SaccadeAmplitude, s.Velocity)
	}
	_ = tw.Flush()
}
