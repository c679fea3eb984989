// Package dsp holds the numeric building blocks of the conditioning stage:
// Butterworth low-pass design, zero-phase filtering, z-scoring and gradients
package dsp

import (
	"math"
	"math/cmplx"

	perr "eogfeat/internal/platform/errors"
)

// Coeffs is a digital IIR transfer function with A[0] == 1
type Coeffs struct {
	B []float64
	A []float64
}

// Order returns the filter order
func (c Coeffs) Order() int { return len(c.A) - 1 }

// Butterworth designs a low-pass filter of the given order.
// The analog prototype is prewarped and mapped with the bilinear transform.
func Butterworth(order int, cutoffHz, sampleRateHz float64) (Coeffs, error) {
	if order < 1 {
		return Coeffs{}, perr.InvalidArgf("butterworth: order must be >= 1, got %d", order)
	}
	if !(sampleRateHz > 0) || math.IsInf(sampleRateHz, 0) {
		return Coeffs{}, perr.InvalidArgf("butterworth: sample rate must be positive, got %g", sampleRateHz)
	}
	nyq := sampleRateHz / 2
	if !(cutoffHz > 0 && cutoffHz < nyq) {
		return Coeffs{}, perr.InvalidArgf("butterworth: cutoff %g Hz outside (0, %g)", cutoffHz, nyq)
	}
	wn := cutoffHz / nyq

	// digital design runs at a normalized rate of 2 so the bilinear constant is 4
	const fs2 = 4.0
	warped := fs2 * math.Tan(math.Pi*wn/2)

	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		p := -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*order)))
		poles = append(poles, p*complex(warped, 0))
	}

	gain := math.Pow(warped, float64(order))
	den := complex(1, 0)
	zpoles := make([]complex128, len(poles))
	for i, p := range poles {
		zpoles[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	gain /= real(den)

	b := binomial(order)
	for i := range b {
		b[i] *= gain
	}
	ac := poly(zpoles)
	a := make([]float64, len(ac))
	for i, v := range ac {
		a[i] = real(v)
	}
	return Coeffs{B: b, A: a}, nil
}

// Response returns |H| at freqHz for a filter running at sampleRateHz
func (c Coeffs) Response(freqHz, sampleRateHz float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRateHz
	z := cmplx.Exp(complex(0, -w))
	return cmplx.Abs(horner(c.B, z) / horner(c.A, z))
}

// horner evaluates sum(p[k] * z^k)
func horner(p []float64, z complex128) complex128 {
	acc := complex(0, 0)
	for k := len(p) - 1; k >= 0; k-- {
		acc = acc*z + complex(p[k], 0)
	}
	return acc
}

// poly expands prod(x - r) into monic coefficients, highest power first
func poly(roots []complex128) []complex128 {
	out := make([]complex128, 1, len(roots)+1)
	out[0] = 1
	for _, r := range roots {
		out = append(out, 0)
		for i := len(out) - 1; i > 0; i-- {
			out[i] -= r * out[i-1]
		}
	}
	return out
}

// binomial returns the coefficients of (1 + x)^n
func binomial(n int) []float64 {
	out := make([]float64, n+1)
	out[0] = 1
	for k := 1; k <= n; k++ {
		out[k] = out[k-1] * float64(n-k+1) / float64(k)
	}
	return out
}
