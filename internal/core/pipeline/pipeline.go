// Package pipeline runs one recording through parsing, conditioning and feature extraction
package pipeline

import (
	"context"
	"io"
	"time"

	"eogfeat/internal/core/conditioner"
	"eogfeat/internal/core/features"
	"eogfeat/internal/core/recording"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/logger"
)

// Options groups the stage options; zero values take each stage's defaults
type Options struct {
	Recording   recording.Options
	Conditioner conditioner.Options
	Features    features.Options
}

// DefaultOptions returns the reference configuration
func DefaultOptions() Options {
	return Options{
		Recording:   recording.DefaultOptions(),
		Conditioner: conditioner.DefaultOptions(),
		Features:    features.Options{Limits: features.DefaultLimits(), Threshold: features.Dynamic{K: features.DefaultK}},
	}
}

// Params is the effective configuration, suitable for reporting
type Params struct {
	MetadataRows    int             `json:"metadata_rows"`
	MillisThreshold float64         `json:"ms_threshold"`
	FilterOrder     int             `json:"filter_order"`
	CutoffHz        float64         `json:"cutoff_hz"`
	SampleRateHz    float64         `json:"sample_rate_hz"`
	Threshold       string          `json:"threshold"`
	BlinkK          *float64        `json:"blink_k,omitempty"`
	FixedLevel      *float64        `json:"fixed_threshold,omitempty"`
	Limits          features.Limits `json:"limits"`
}

// Input is one recording to process. Reader is closed when it implements io.Closer.
type Input struct {
	Subject   string
	Condition features.Condition
	Source    string
	Reader    io.Reader
}

// Result carries the feature row and the cleaning counters
type Result struct {
	Record features.Record `json:"record"`
	Stats  recording.Stats `json:"stats"`
}

// Pipeline is immutable after New and safe for concurrent use
type Pipeline struct {
	rec  recording.Options
	cond *conditioner.Conditioner
	ex   *features.Extractor
}

// New validates options and designs the filter
func New(opts Options) (*Pipeline, error) {
	if opts.Recording == (recording.Options{}) {
		opts.Recording = recording.DefaultOptions()
	}
	if opts.Conditioner == (conditioner.Options{}) {
		opts.Conditioner = conditioner.DefaultOptions()
	}
	c, err := conditioner.New(opts.Conditioner)
	if err != nil {
		return nil, err
	}
	return &Pipeline{rec: opts.Recording, cond: c, ex: features.NewExtractor(opts.Features)}, nil
}

// Params reports the effective configuration
func (p *Pipeline) Params() Params {
	co := p.cond.Options()
	out := Params{
		MetadataRows:    p.rec.MetadataRows,
		MillisThreshold: p.rec.MillisThreshold,
		FilterOrder:     co.Order,
		CutoffHz:        co.CutoffHz,
		SampleRateHz:    co.SampleRateHz,
		Threshold:       p.ex.Thresholder().Name(),
		Limits:          p.ex.Limits(),
	}
	switch th := p.ex.Thresholder().(type) {
	case features.Dynamic:
		out.BlinkK = &th.K
	case features.Fixed:
		out.FixedLevel = &th.Level
	}
	return out
}

// Process runs every stage for one recording. Failures carry one of the
// read, degenerate signal, extraction or canceled codes.
func (p *Pipeline) Process(ctx context.Context, in Input) (res Result, err error) {
	if c, ok := in.Reader.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	if in.Reader == nil {
		return Result{}, perr.Readf("recording %q has no reader", in.Source)
	}
	log := logger.C(ctx)
	start := time.Now()

	if err := canceled(ctx); err != nil {
		return Result{}, err
	}
	series, stats, err := recording.Parse(in.Reader, p.rec)
	res.Stats = stats
	if err != nil {
		return res, classify(err, perr.ErrorCodeRead, "parse")
	}

	if err := canceled(ctx); err != nil {
		return res, err
	}
	sig, err := p.cond.Condition(series)
	if err != nil {
		return res, classify(err, perr.ErrorCodeExtraction, "condition")
	}

	if err := canceled(ctx); err != nil {
		return res, err
	}
	rec, err := p.ex.Extract(sig, in.Subject, in.Condition)
	if err != nil {
		return res, classify(err, perr.ErrorCodeExtraction, "extract")
	}
	res.Record = rec

	log.Debug().
		Int("rows", stats.Rows).
		Int("dropped", stats.DroppedMalformed+stats.DroppedNonMonotonic).
		Bool("rescaled", stats.Rescaled).
		Int("blinks", rec.Blinks).
		Dur("took", time.Since(start)).
		Msg("recording processed")
	return res, nil
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeCanceled, "recording abandoned")
	}
	return nil
}

// classify keeps domain codes and tags anything else with the stage's default
func classify(err error, def perr.ErrorCode, stage string) error {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeRead, perr.ErrorCodeDegenerateSignal, perr.ErrorCodeExtraction,
		perr.ErrorCodeInvalidArgument, perr.ErrorCodeCanceled:
		return perr.WithOp(err, stage)
	}
	return perr.WithOp(perr.Wrap(err, def, stage+" failed"), stage)
}
