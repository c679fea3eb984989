package dsp

import perr "eogfeat/internal/platform/errors"

// Gradient returns dy/dt on a possibly irregular time axis.
// Interior points use the central difference over t[i+1]-t[i-1]; the ends are one sided.
func Gradient(y, t []float64) ([]float64, error) {
	n := len(y)
	if n != len(t) {
		return nil, perr.InvalidArgf("gradient: len(y)=%d != len(t)=%d", n, len(t))
	}
	if n < 2 {
		return nil, perr.Extractionf("gradient: need at least 2 samples, got %d", n)
	}
	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (t[1] - t[0])
	out[n-1] = (y[n-1] - y[n-2]) / (t[n-1] - t[n-2])
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (t[i+1] - t[i-1])
	}
	return out, nil
}
