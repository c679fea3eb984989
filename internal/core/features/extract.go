// Package features derives blink, fixation, saccade and velocity statistics
// from a conditioned EOG recording
package features

import (
	"eogfeat/internal/core/conditioner"
	"eogfeat/internal/core/dsp"
	perr "eogfeat/internal/platform/errors"

	"gonum.org/v1/gonum/floats"
)

// Record is one row of the feature table.
// FixationDuration is nil when fewer than two blinks were detected.
type Record struct {
	Subject          string    `json:"subject"`
	Condition        Condition `json:"condition"`
	BlinkRate        float64   `json:"blink_rate"`
	FixationDuration *float64  `json:"fixation_duration"`
	SaccadeAmplitude float64   `json:"saccade_amplitude"`
	Velocity         float64   `json:"velocity"`
	Blinks           int       `json:"blinks"`
	Samples          int       `json:"samples"`
}

// Options configures an Extractor; zero fields take defaults
type Options struct {
	Limits    Limits
	Threshold Thresholder
}

// Extractor is stateless after construction and safe for concurrent use
type Extractor struct {
	limits    Limits
	threshold Thresholder
}

// NewExtractor fills defaults for unset options
func NewExtractor(opts Options) *Extractor {
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Threshold == nil {
		opts.Threshold = Dynamic{K: DefaultK}
	}
	return &Extractor{limits: opts.Limits, threshold: opts.Threshold}
}

// Limits returns the per-condition windows in use
func (e *Extractor) Limits() Limits { return e.limits }

// Thresholder returns the blink threshold strategy in use
func (e *Extractor) Thresholder() Thresholder { return e.threshold }

// Extract computes one Record over samples with time <= the condition window
func (e *Extractor) Extract(sig conditioner.Signal, subject string, cond Condition) (Record, error) {
	if !cond.Valid() {
		return Record{}, perr.WithField(perr.InvalidArgf("invalid condition %d", cond), "condition")
	}
	maxDur := e.limits.For(cond)
	if !(maxDur > 0) {
		return Record{}, perr.InvalidArgf("window for %s must be positive, got %g", cond, maxDur)
	}

	t, a, b := window(sig, maxDur)
	if len(t) < 2 {
		return Record{}, perr.Extractionf("only %d samples within %g s", len(t), maxDur)
	}

	thr, err := e.threshold.Threshold(a)
	if err != nil {
		return Record{}, perr.WithOp(err, "threshold")
	}
	events := DetectBlinks(a, thr)

	amp := dsp.Range(b)
	if dsp.IsFlat(amp, max(floats.Max(b), -floats.Min(b))) {
		return Record{}, perr.WithField(perr.Degeneratef("constant within %g s window", maxDur), "channel_b")
	}

	grad, err := dsp.Gradient(b, t)
	if err != nil {
		return Record{}, perr.WithOp(err, "gradient")
	}
	vel := floats.Norm(grad, 1) / float64(len(grad))

	rec := Record{
		Subject:          subject,
		Condition:        cond,
		BlinkRate:        float64(len(events)) / (maxDur / 60),
		FixationDuration: FixationDuration(t, events),
		SaccadeAmplitude: amp,
		Velocity:         vel,
		Blinks:           len(events),
		Samples:          len(t),
	}
	if !dsp.AllFinite(rec.BlinkRate, rec.SaccadeAmplitude, rec.Velocity) ||
		(rec.FixationDuration != nil && !dsp.AllFinite(*rec.FixationDuration)) {
		return Record{}, perr.Extractionf("non-finite feature value")
	}
	return rec, nil
}

// window keeps samples whose time is within [.., maxDur]
func window(sig conditioner.Signal, maxDur float64) (t, a, b []float64) {
	n := sig.Len()
	t = make([]float64, 0, n)
	a = make([]float64, 0, n)
	b = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if sig.Time[i] <= maxDur {
			t = append(t, sig.Time[i])
			a = append(a, sig.A[i])
			b = append(b, sig.B[i])
		}
	}
	return t, a, b
}

// DetectBlinks returns, for each rising edge of a over threshold, the index of the last
// sample still at or below it. A run already above threshold at index 0 is not an event.
// Crossings are not debounced, so ripple near the threshold can count one blink twice.
func DetectBlinks(a []float64, threshold float64) []int {
	var out []int
	for i := 1; i < len(a); i++ {
		if a[i] > threshold && !(a[i-1] > threshold) {
			out = append(out, i-1)
		}
	}
	return out
}

// FixationDuration is the mean gap between consecutive events, nil below two events
func FixationDuration(times []float64, events []int) *float64 {
	if len(events) < 2 {
		return nil
	}
	first, last := times[events[0]], times[events[len(events)-1]]
	v := (last - first) / float64(len(events)-1)
	return &v
}
