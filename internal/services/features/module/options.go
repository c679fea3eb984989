package module

import (
	"time"

	"eogfeat/internal/core/conditioner"
	"eogfeat/internal/core/features"
	"eogfeat/internal/core/pipeline"
	"eogfeat/internal/core/recording"
	"eogfeat/internal/platform/config"
)

// Threshold modes accepted by EOG_THRESHOLD_MODE
const (
	ModeDynamic = "dynamic"
	ModeFixed   = "fixed"
)

// Options holds configuration settings for the features module
type Options struct {
	Pipeline pipeline.Options
	Workers  int
	Timeout  time.Duration

	// HardLimit caps one page of stored rows
	HardLimit int
}

// Option overrides one setting after the env has been read
type Option func(*Options)

// WithWorkers overrides EOG_WORKERS
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithTimeout overrides EOG_RECORDING_TIMEOUT
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithPipeline replaces the pipeline configuration wholesale
func WithPipeline(p pipeline.Options) Option { return func(o *Options) { o.Pipeline = p } }

// FromConfig reads configuration settings with the EOG_ prefix.
// A fixed threshold mode requires EOG_FIXED_THRESHOLD and panics without it.
func FromConfig(cfg config.Conf) Options {
	ec := cfg.Prefix("EOG_")

	var th features.Thresholder = features.Dynamic{K: ec.MayPositiveFloat64("BLINK_K", features.DefaultK)}
	if ec.MayEnum("THRESHOLD_MODE", ModeDynamic, ModeDynamic, ModeFixed) == ModeFixed {
		th = features.Fixed{Level: ec.MustFloat64("FIXED_THRESHOLD")}
	}

	lim := features.DefaultLimits()
	return Options{
		Pipeline: pipeline.Options{
			Recording: recording.Options{
				MetadataRows:    ec.MayInt("METADATA_ROWS", recording.DefaultMetadataRows),
				MillisThreshold: ec.MayPositiveFloat64("MS_THRESHOLD", recording.DefaultMillisThreshold),
			},
			Conditioner: conditioner.Options{
				Order:        ec.MayPositiveInt("FILTER_ORDER", conditioner.DefaultOrder),
				CutoffHz:     ec.MayPositiveFloat64("CUTOFF_HZ", conditioner.DefaultCutoffHz),
				SampleRateHz: ec.MayPositiveFloat64("SAMPLE_RATE_HZ", conditioner.DefaultSampleRateHz),
			},
			Features: features.Options{
				Limits: features.Limits{
					Baseline: ec.MayPositiveFloat64("BASELINE_MAX_S", lim.Baseline),
					Positive: ec.MayPositiveFloat64("POSITIVE_MAX_S", lim.Positive),
					Stress:   ec.MayPositiveFloat64("STRESS_MAX_S", lim.Stress),
				},
				Threshold: th,
			},
		},
		Workers:   ec.MayPositiveInt("WORKERS", 1),
		Timeout:   ec.MayDuration("RECORDING_TIMEOUT", 0),
		HardLimit: ec.MayPositiveInt("HARD_LIMIT", 100),
	}
}
