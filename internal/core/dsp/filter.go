package dsp

import (
	perr "eogfeat/internal/platform/errors"

	"gonum.org/v1/gonum/mat"
)

// PadLen is the reflection length used by FiltFilt for filter c
func PadLen(c Coeffs) int { return 3 * len(c.A) }

// SteadyState returns the initial state for LFilter that corresponds to the
// step response steady state, so a constant input of 1 yields a constant output
func SteadyState(c Coeffs) ([]float64, error) {
	n := len(c.A) - 1
	if n < 1 || len(c.B) != len(c.A) {
		return nil, perr.InvalidArgf("steady state: need matching b/a of order >= 1")
	}
	// I - companion(a)^T: first column carries a[1:], superdiagonal carries -1
	m := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
		m.Set(i, 0, m.At(i, 0)+c.A[i+1])
		if i+1 < n {
			m.Set(i, i+1, -1)
		}
		rhs.SetVec(i, c.B[i+1]-c.A[i+1]*c.B[0])
	}
	var zi mat.VecDense
	if err := zi.SolveVec(m, rhs); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeExtraction, "steady state: singular system")
	}
	return zi.RawVector().Data, nil
}

// LFilter runs x through c once (direct form II transposed).
// zi, when non-nil, seeds the delay line and must have Order() elements.
func LFilter(c Coeffs, x, zi []float64) []float64 {
	n := len(c.A)
	if n < 2 {
		return scaled(x, c.B[0])
	}
	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for k, xv := range x {
		yv := c.B[0]*xv + z[0]
		for i := 0; i < n-2; i++ {
			z[i] = c.B[i+1]*xv + z[i+1] - c.A[i+1]*yv
		}
		z[n-2] = c.B[n-1]*xv - c.A[n-1]*yv
		y[k] = yv
	}
	return y
}

// FiltFilt applies c forward and backward for zero phase distortion.
// The signal is extended by odd reflection at both ends and each pass is
// seeded with the steady state scaled by its first sample.
func FiltFilt(c Coeffs, x []float64) ([]float64, error) {
	if c.Order() < 1 {
		return nil, perr.InvalidArgf("filtfilt: empty filter")
	}
	pad := PadLen(c)
	if len(x) <= pad {
		return nil, perr.Extractionf("filtfilt: insufficient samples (%d, need > %d)", len(x), pad)
	}
	zi, err := SteadyState(c)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, pad)
	y := LFilter(c, ext, scaled(zi, ext[0]))
	reverse(y)
	y = LFilter(c, y, scaled(zi, y[0]))
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[pad:pad+len(x)])
	return out, nil
}

func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}
	return ext
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
