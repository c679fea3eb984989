// Package service provides the feature extraction service implementation
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"eogfeat/internal/core/pipeline"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/logger"
	dom "eogfeat/internal/services/features/domain"

	"github.com/google/uuid"
)

// Config for the runner
type Config struct {
	// Workers bounds how many recordings are processed at once
	Workers int
	// Timeout bounds one recording; zero means none
	Timeout time.Duration
}

// Runner implements dom.RunnerPort and dom.ExtractorPort over one pipeline
type Runner struct {
	Pipe   *pipeline.Pipeline
	Open   dom.Opener
	Writer dom.WriterPort
	Cfg    Config

	newID func() string
}

// NewRunner constructs a runner; writer may be nil when nothing is persisted
func NewRunner(pipe *pipeline.Pipeline, open dom.Opener, writer dom.WriterPort, cfg Config) *Runner {
	if pipe == nil {
		panic("features.Runner requires a non nil pipeline")
	}
	if open == nil {
		panic("features.Runner requires a non nil opener")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{Pipe: pipe, Open: open, Writer: writer, Cfg: cfg, newID: uuid.NewString}
}

type outcome struct {
	row  dom.Row
	err  error
	done bool
}

// Run implements dom.RunnerPort. A failing recording lands in Skipped and never stops the
// batch. On cancellation the recordings not yet started are skipped as canceled and the
// returned error carries the canceled code alongside the partial result.
func (s *Runner) Run(ctx context.Context, recs []dom.Recording) (dom.BatchResult, error) {
	res := dom.BatchResult{RunID: s.newID()}
	ctx = logger.WithRun(ctx, res.RunID)
	log := logger.C(ctx)
	start := time.Now()

	outs := make([]outcome, len(recs))
	w := min(s.Cfg.Workers, max(len(recs), 1))
	var wg sync.WaitGroup
	sem := make(chan struct{}, w)

launch:
	for i, rec := range recs {
		select {
		case <-ctx.Done():
			break launch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, rec dom.Recording) {
			defer func() { <-sem; wg.Done() }()
			row, err := s.extract(ctx, rec)
			outs[i] = outcome{row: row, err: err, done: true}
		}(i, rec)
	}
	wg.Wait()

	for i, o := range outs {
		rec := recs[i]
		err := o.err
		if !o.done {
			err = perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "recording not started")
		}
		if err != nil {
			sk := dom.Skipped{Recording: rec, Kind: perr.Kind(err), Reason: err.Error()}
			res.Skipped = append(res.Skipped, sk)
			log.Warn().
				Str("subject", rec.Subject).
				Str("condition", rec.Condition.String()).
				Str("path", rec.Source).
				Str("kind", sk.Kind).
				Err(err).
				Msg("recording skipped")
			continue
		}
		res.Records = append(res.Records, o.row)
	}

	log.Info().
		Int("recordings", len(recs)).
		Int("extracted", len(res.Records)).
		Int("skipped", len(res.Skipped)).
		Int("workers", w).
		Dur("took", time.Since(start)).
		Msg("batch finished")

	if err := ctx.Err(); err != nil {
		return res, perr.Wrap(err, perr.ErrorCodeCanceled, "run interrupted")
	}
	if s.Writer != nil && len(res.Records) > 0 {
		if err := s.Writer.Save(ctx, res.RunID, res.Records); err != nil {
			return res, perr.WithOp(err, "save")
		}
	}
	return res, nil
}

// ExtractOne implements dom.ExtractorPort; r is closed when it is an io.Closer
func (s *Runner) ExtractOne(ctx context.Context, rec dom.Recording, r io.Reader) (dom.Row, error) {
	ctx, cancel := s.scope(ctx, rec)
	defer cancel()
	return s.process(ctx, rec, r)
}

func (s *Runner) extract(ctx context.Context, rec dom.Recording) (dom.Row, error) {
	ctx, cancel := s.scope(ctx, rec)
	defer cancel()

	rc, err := s.Open(rec)
	if err != nil {
		if perr.CodeOf(err) == perr.ErrorCodeUnknown {
			err = perr.Wrapf(err, perr.ErrorCodeRead, "open %s", rec.Source)
		}
		return dom.Row{}, err
	}
	return s.process(ctx, rec, rc)
}

// scope tags ctx with the recording and applies the per recording timeout
func (s *Runner) scope(ctx context.Context, rec dom.Recording) (context.Context, context.CancelFunc) {
	ctx = logger.WithRecording(ctx, logger.Recording{
		Subject:   rec.Subject,
		Condition: rec.Condition.String(),
		Path:      rec.Source,
	})
	if s.Cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.Cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Runner) process(ctx context.Context, rec dom.Recording, r io.Reader) (dom.Row, error) {
	out, err := s.Pipe.Process(ctx, pipeline.Input{
		Subject:   rec.Subject,
		Condition: rec.Condition,
		Source:    rec.Source,
		Reader:    r,
	})
	if err != nil {
		return dom.Row{}, err
	}
	return dom.Row{Record: out.Record, Source: rec.Source, Stats: out.Stats}, nil
}
