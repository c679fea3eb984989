package dsp

import (
	"math"

	perr "eogfeat/internal/platform/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FlatTolerance is the relative spread below which a channel is considered flat
const FlatTolerance = 1e-12

// MeanStd returns the mean and the sample (n-1) standard deviation of x.
// std is NaN for fewer than two values.
func MeanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], math.NaN()
	}
	return stat.MeanStdDev(x, nil)
}

// IsFlat reports whether a spread is zero relative to the signal level
func IsFlat(spread, level float64) bool {
	return !(spread > FlatTolerance*math.Max(1, math.Abs(level)))
}

// ZScore returns (x - mean) / std. A flat input is a degenerate signal error.
func ZScore(x []float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, perr.Extractionf("zscore: need at least 2 samples, got %d", len(x))
	}
	mean, std := MeanStd(x)
	if IsFlat(std, mean) {
		return nil, perr.Degeneratef("zscore: zero standard deviation (mean %g)", mean)
	}
	out := make([]float64, len(x))
	copy(out, x)
	floats.AddConst(-mean, out)
	floats.Scale(1/std, out)
	return out, nil
}

// Range returns max(x) - min(x); x must not be empty
func Range(x []float64) float64 { return floats.Max(x) - floats.Min(x) }

// AllFinite reports whether every value is neither NaN nor infinite
func AllFinite(x ...float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
