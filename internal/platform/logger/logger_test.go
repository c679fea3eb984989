package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "eogfeat/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

func TestInit_Get_Named_C_Scopes(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:       "info",
		Format:      "console",
		Service:     "eogfeat",
		Component:   "root",
		Writer:      &buf,
		WithCaller:  true,
		SampleEvery: 2,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	// re-sample to N=1 so every line is emitted
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rp := &rv
	rp.Info().Str("k", "v").Msg("root-msg")

	nv := Named("pipeline").Sample(&zerolog.BasicSampler{N: 1})
	np := &nv
	np.Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-123")
	ctx = WithRun(ctx, "run-9")
	ctx = WithRecording(ctx, Recording{Subject: "S01", Condition: "STRESSED", Path: "/data/S01 STRESSED.txt"})
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cp := &cv
	cp.Warn().Msg("recording-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "recording-msg")
	kit.MustContain(t, out, "component=")
	kit.MustContain(t, out, "pipeline")
	kit.MustContain(t, out, "request_id=")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "run_id=")
	kit.MustContain(t, out, "run-9")
	kit.MustContain(t, out, "subject=")
	kit.MustContain(t, out, "S01")
	kit.MustContain(t, out, "condition=")
	kit.MustContain(t, out, "STRESSED")
	kit.MustContain(t, out, "build=")
	kit.MustContain(t, out, "service=")
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestWith_EmptyValuesLeaveContext(t *testing.T) {
	base := context.Background()
	if WithRequest(base, "") != base {
		t.Fatalf("empty request id should not wrap ctx")
	}
	if WithRun(base, "") != base {
		t.Fatalf("empty run id should not wrap ctx")
	}
	v := C(base).Sample(&zerolog.BasicSampler{N: 1})
	p := &v
	p.Debug().Msg("no-fields")
}
