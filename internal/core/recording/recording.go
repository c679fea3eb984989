// Package recording parses raw two-channel EOG exports into a cleaned time series.
//
// A recording is tab separated text: a fixed block of device metadata lines
// followed by rows of time, channel A and channel B. Rows that do not parse are
// dropped, time is forced strictly increasing and millisecond clocks are
// rescaled to seconds.
package recording

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	perr "eogfeat/internal/platform/errors"

	"gonum.org/v1/gonum/floats"
)

// Defaults of the recording device export
const (
	DefaultMetadataRows    = 27
	DefaultMillisThreshold = 10000.0
)

const maxLineBytes = 1 << 20

// Sample is one cleaned row
type Sample struct {
	Time float64
	A    float64
	B    float64
}

// Series is a column oriented sequence of samples sharing one time axis
type Series struct {
	Time []float64
	A    []float64
	B    []float64
}

// Len returns the number of samples
func (s Series) Len() int { return len(s.Time) }

// At returns sample i
func (s Series) At(i int) Sample { return Sample{Time: s.Time[i], A: s.A[i], B: s.B[i]} }

// Append adds a sample to the end of the series
func (s *Series) Append(x Sample) {
	s.Time = append(s.Time, x.Time)
	s.A = append(s.A, x.A)
	s.B = append(s.B, x.B)
}

// FromSamples builds a Series from row form
func FromSamples(xs []Sample) Series {
	s := Series{
		Time: make([]float64, 0, len(xs)),
		A:    make([]float64, 0, len(xs)),
		B:    make([]float64, 0, len(xs)),
	}
	for _, x := range xs {
		s.Append(x)
	}
	return s
}

// Options controls parsing
type Options struct {
	// MetadataRows is the number of leading lines skipped unconditionally
	MetadataRows int
	// MillisThreshold triggers the ms to s rescale when max(time) exceeds it
	MillisThreshold float64
}

// DefaultOptions returns the device defaults
func DefaultOptions() Options {
	return Options{MetadataRows: DefaultMetadataRows, MillisThreshold: DefaultMillisThreshold}
}

// Stats counts what happened to the lines of one recording
type Stats struct {
	Lines               int  `json:"lines"`
	Rows                int  `json:"rows"`
	DroppedMalformed    int  `json:"dropped_malformed"`
	DroppedNonMonotonic int  `json:"dropped_non_monotonic"`
	Rescaled            bool `json:"rescaled"`
}

// Parse reads r to the end and returns the cleaned series.
// It fails with a read error when r fails or no row survives cleaning.
func Parse(r io.Reader, opts Options) (Series, Stats, error) {
	var (
		out   Series
		st    Stats
		last  = math.Inf(-1)
		skip  = max(opts.MetadataRows, 0)
		lines = bufio.NewScanner(r)
	)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for lines.Scan() {
		st.Lines++
		if st.Lines <= skip {
			continue
		}
		x, ok := parseRow(lines.Text())
		if !ok {
			st.DroppedMalformed++
			continue
		}
		if !(x.Time > last) {
			st.DroppedNonMonotonic++
			continue
		}
		last = x.Time
		out.Append(x)
	}
	if err := lines.Err(); err != nil {
		return Series{}, st, perr.Wrap(err, perr.ErrorCodeRead, "read recording")
	}
	st.Rows = out.Len()
	if st.Rows == 0 {
		return Series{}, st, perr.Readf("no numeric rows after %d metadata lines (%d lines read)", skip, st.Lines)
	}

	threshold := opts.MillisThreshold
	if threshold <= 0 {
		threshold = DefaultMillisThreshold
	}
	st.Rescaled = NormalizeUnits(out.Time, threshold)
	return out, st, nil
}

// NormalizeUnits divides every time value by 1000 when max(times) > threshold.
// It reports whether the rescale happened. Series already in seconds are untouched.
func NormalizeUnits(times []float64, threshold float64) bool {
	if len(times) == 0 || !(floats.Max(times) > threshold) {
		return false
	}
	floats.Scale(1.0/1000, times)
	return true
}

// parseRow splits one data line into a sample; trailing empty fields are tolerated
func parseRow(line string) (Sample, bool) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	for len(fields) > 3 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) != 3 {
		return Sample{}, false
	}
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Sample{}, false
		}
		v[i] = n
	}
	return Sample{Time: v[0], A: v[1], B: v[2]}, true
}
