package main

import (
	"bytes"
	"testing"

	"eogfeat/internal/core/aggregate"
	"eogfeat/internal/core/features"
	kit "eogfeat/internal/platform/testkit"
)

func TestPrintSummary(t *testing.T) {
	fix := 2.0
	sums := aggregate.Summarize([]features.Record{
		{Subject: "S01", Condition: features.Baseline, BlinkRate: 1, FixationDuration: &fix},
		{Subject: "S01", Condition: features.Stress, BlinkRate: 3},
	})
	var buf bytes.Buffer
	printSummary(&buf, sums)

	out := buf.String()
	kit.MustContain(t, out, "CONDITION")
	kit.MustContain(t, out, "NORMAL")
	kit.MustContain(t, out, "2.0000")
	kit.MustContain(t, out, "STRESSED")
}
