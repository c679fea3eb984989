package features

import (
	"eogfeat/internal/core/dsp"
	perr "eogfeat/internal/platform/errors"
)

// DefaultK is the number of standard deviations above the mean a blink must reach
const DefaultK = 3.0

// Thresholder picks the blink level for one windowed channel
type Thresholder interface {
	Threshold(a []float64) (float64, error)
	Name() string
}

// Dynamic recomputes mean + K*std from each recording.
// It calibrates itself per session, so amplitude drift between sessions moves the level.
type Dynamic struct{ K float64 }

// Threshold implements Thresholder
func (d Dynamic) Threshold(a []float64) (float64, error) {
	if len(a) < 2 {
		return 0, perr.Extractionf("threshold: need at least 2 samples, got %d", len(a))
	}
	mean, std := dsp.MeanStd(a)
	thr := mean + d.K*std
	if !dsp.AllFinite(thr) {
		return 0, perr.Extractionf("threshold: non-finite level")
	}
	return thr, nil
}

// Name implements Thresholder
func (Dynamic) Name() string { return "dynamic" }

// Fixed uses one global level for every recording
type Fixed struct{ Level float64 }

// Threshold implements Thresholder
func (f Fixed) Threshold([]float64) (float64, error) {
	if !dsp.AllFinite(f.Level) {
		return 0, perr.InvalidArgf("threshold: fixed level must be finite")
	}
	return f.Level, nil
}

// Name implements Thresholder
func (Fixed) Name() string { return "fixed" }
