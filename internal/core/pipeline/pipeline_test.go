package pipeline

import (
	"context"
	"math"
	"strconv"
	"strings"
	"testing"

	"eogfeat/internal/core/features"
	perr "eogfeat/internal/platform/errors"
	kit "eogfeat/internal/platform/testkit"
)

// synthetic builds a 1 kHz export with a millisecond clock
func synthetic(seconds int, blinkAt []float64, flatB bool) string {
	var b strings.Builder
	for i := 0; i < 27; i++ {
		b.WriteString("Header\tline " + strconv.Itoa(i) + "\n")
	}
	n := seconds*1000 + 1
	for i := 0; i < n; i++ {
		t := float64(i) / 1000
		a := 0.1 * math.Sin(2*math.Pi*0.5*t)
		for _, at := range blinkAt {
			if t >= at && t < at+0.2 {
				a += 10
			}
		}
		ch := math.Sin(2 * math.Pi * 0.2 * t)
		if flatB {
			ch = 1.5
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatFloat(a, 'f', 6, 64))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatFloat(ch, 'f', 6, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

type trackingReader struct {
	*strings.Reader
	closed bool
}

func (r *trackingReader) Close() error { r.closed = true; return nil }

func mustNew(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestProcess_EndToEndBlinkRate(t *testing.T) {
	p := mustNew(t)
	r := &trackingReader{Reader: strings.NewReader(synthetic(120, []float64{10, 30, 50, 70, 90}, false))}

	res, err := p.Process(context.Background(), Input{Subject: "S01", Condition: features.Baseline, Reader: r})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !r.closed {
		t.Fatalf("reader not closed")
	}
	if !res.Stats.Rescaled || res.Stats.Rows != 120001 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	rec := res.Record
	if rec.Blinks != 5 {
		t.Fatalf("blinks = %d, want 5", rec.Blinks)
	}
	kit.MustClose(t, "blink rate", rec.BlinkRate, 2.5, 1e-12)
	if rec.FixationDuration == nil {
		t.Fatalf("fixation absent")
	}
	kit.MustClose(t, "fixation", *rec.FixationDuration, 20, 1e-2)
	if rec.SaccadeAmplitude <= 0 || rec.Velocity <= 0 {
		t.Fatalf("channel B features = %+v", rec)
	}
}

func TestProcess_SingleBlinkLeavesFixationAbsent(t *testing.T) {
	p := mustNew(t)
	res, err := p.Process(context.Background(), Input{
		Subject:   "S02",
		Condition: features.Baseline,
		Reader:    strings.NewReader(synthetic(20, []float64{5}, false)),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Record.Blinks != 1 || res.Record.FixationDuration != nil {
		t.Fatalf("record = %+v", res.Record)
	}
	kit.MustClose(t, "blink rate", res.Record.BlinkRate, 0.5, 1e-12)
}

func TestProcess_FailureKinds(t *testing.T) {
	p := mustNew(t)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		body string
		kind string
	}{
		{"unreadable", context.Background(), "not\ta\trecording\n", perr.KindRead},
		{"flat channel b", context.Background(), synthetic(5, nil, true), perr.KindDegenerate},
		{"too short to filter", context.Background(), synthetic(0, nil, false) + "1\t0.5\t0.2\n", perr.KindExtraction},
		{"canceled", canceled, synthetic(1, nil, false), perr.KindCanceled},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &trackingReader{Reader: strings.NewReader(c.body)}
			_, err := p.Process(c.ctx, Input{Subject: "S", Condition: features.Stress, Reader: r})
			if got := perr.Kind(err); got != c.kind {
				t.Fatalf("kind = %q (%v), want %q", got, err, c.kind)
			}
			if !r.closed {
				t.Fatalf("reader not closed on failure")
			}
		})
	}

	if _, err := p.Process(context.Background(), Input{Source: "x"}); perr.Kind(err) != perr.KindRead {
		t.Fatalf("nil reader err = %v", err)
	}
}

func TestParams(t *testing.T) {
	p := mustNew(t)
	got := p.Params()
	if got.FilterOrder != 4 || got.CutoffHz != 30 || got.SampleRateHz != 1000 || got.MetadataRows != 27 {
		t.Fatalf("params = %+v", got)
	}
	if got.Threshold != "dynamic" || got.BlinkK == nil || *got.BlinkK != 3 || got.FixedLevel != nil {
		t.Fatalf("threshold params = %+v", got)
	}

	fixed, err := New(Options{Features: features.Options{Threshold: features.Fixed{Level: 2}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if fp := fixed.Params(); fp.Threshold != "fixed" || fp.FixedLevel == nil || *fp.FixedLevel != 2 || fp.Limits != features.DefaultLimits() {
		t.Fatalf("fixed params = %+v", fp)
	}
}
