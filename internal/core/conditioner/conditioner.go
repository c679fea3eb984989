// Package conditioner low-pass filters and z-scores both channels of a recording
package conditioner

import (
	"eogfeat/internal/core/dsp"
	"eogfeat/internal/core/recording"
	perr "eogfeat/internal/platform/errors"
)

// Defaults of the acquisition setup
const (
	DefaultOrder        = 4
	DefaultCutoffHz     = 30.0
	DefaultSampleRateHz = 1000.0
)

// Options fixes the filter design
type Options struct {
	Order        int
	CutoffHz     float64
	SampleRateHz float64
}

// DefaultOptions returns the 4th order 30 Hz design at 1 kHz
func DefaultOptions() Options {
	return Options{Order: DefaultOrder, CutoffHz: DefaultCutoffHz, SampleRateHz: DefaultSampleRateHz}
}

// Signal is a conditioned series: same time axis, filtered and normalized channels
type Signal struct {
	recording.Series
}

// Conditioner holds one filter design and is safe for concurrent use
type Conditioner struct {
	opts   Options
	coeffs dsp.Coeffs
}

// New designs the filter once
func New(opts Options) (*Conditioner, error) {
	c, err := dsp.Butterworth(opts.Order, opts.CutoffHz, opts.SampleRateHz)
	if err != nil {
		return nil, err
	}
	return &Conditioner{opts: opts, coeffs: c}, nil
}

// Options returns the design parameters
func (c *Conditioner) Options() Options { return c.opts }

// Coeffs returns the designed filter
func (c *Conditioner) Coeffs() dsp.Coeffs { return c.coeffs }

// Condition filters each channel with zero phase and z-scores it over the whole recording.
// The input is left untouched. A flat channel is a degenerate signal error.
func (c *Conditioner) Condition(s recording.Series) (Signal, error) {
	a, err := c.channel(s.A, "channel_a")
	if err != nil {
		return Signal{}, err
	}
	b, err := c.channel(s.B, "channel_b")
	if err != nil {
		return Signal{}, err
	}
	t := make([]float64, len(s.Time))
	copy(t, s.Time)
	return Signal{Series: recording.Series{Time: t, A: a, B: b}}, nil
}

func (c *Conditioner) channel(x []float64, name string) ([]float64, error) {
	filtered, err := dsp.FiltFilt(c.coeffs, x)
	if err != nil {
		return nil, perr.WithField(perr.WithOp(err, "filter"), name)
	}
	z, err := dsp.ZScore(filtered)
	if err != nil {
		return nil, perr.WithField(perr.WithOp(err, "zscore"), name)
	}
	return z, nil
}
