// Package aggregate reduces feature rows to per-condition means
package aggregate

import (
	"eogfeat/internal/core/features"

	"gonum.org/v1/gonum/stat"
)

// ConditionSummary holds the mean of each feature over the subjects of one condition.
// FixationDuration is nil when no row carried a value.
type ConditionSummary struct {
	Condition        features.Condition `json:"condition"`
	N                int                `json:"n"`
	FixationN        int                `json:"fixation_n"`
	BlinkRate        float64            `json:"blink_rate"`
	FixationDuration *float64           `json:"fixation_duration"`
	SaccadeAmplitude float64            `json:"saccade_amplitude"`
	Velocity         float64            `json:"velocity"`
}

// Summarize groups rows by condition in Baseline, Positive, Stress order.
// Conditions without rows are omitted. Absent fixation values are skipped, not counted as zero.
func Summarize(rows []features.Record) []ConditionSummary {
	type cols struct{ blink, fix, amp, vel []float64 }
	by := make(map[features.Condition]*cols, 3)
	for _, r := range rows {
		c, ok := by[r.Condition]
		if !ok {
			c = &cols{}
			by[r.Condition] = c
		}
		c.blink = append(c.blink, r.BlinkRate)
		c.amp = append(c.amp, r.SaccadeAmplitude)
		c.vel = append(c.vel, r.Velocity)
		if r.FixationDuration != nil {
			c.fix = append(c.fix, *r.FixationDuration)
		}
	}

	out := make([]ConditionSummary, 0, len(by))
	for _, cond := range features.Conditions() {
		c, ok := by[cond]
		if !ok {
			continue
		}
		s := ConditionSummary{
			Condition:        cond,
			N:                len(c.blink),
			FixationN:        len(c.fix),
			BlinkRate:        stat.Mean(c.blink, nil),
			SaccadeAmplitude: stat.Mean(c.amp, nil),
			Velocity:         stat.Mean(c.vel, nil),
		}
		if len(c.fix) > 0 {
			m := stat.Mean(c.fix, nil)
			s.FixationDuration = &m
		}
		out = append(out, s)
	}
	return out
}

// Delta is the change of each mean feature from one condition to another
type Delta struct {
	From             features.Condition `json:"from"`
	To               features.Condition `json:"to"`
	BlinkRate        float64            `json:"blink_rate"`
	FixationDuration *float64           `json:"fixation_duration"`
	SaccadeAmplitude float64            `json:"saccade_amplitude"`
	Velocity         float64            `json:"velocity"`
}

// Against returns to-minus-baseline deltas for every non-baseline summary
func Against(base features.Condition, sums []ConditionSummary) []Delta {
	var ref *ConditionSummary
	for i := range sums {
		if sums[i].Condition == base {
			ref = &sums[i]
		}
	}
	if ref == nil {
		return nil
	}
	var out []Delta
	for _, s := range sums {
		if s.Condition == base {
			continue
		}
		d := Delta{
			From:             base,
			To:               s.Condition,
			BlinkRate:        s.BlinkRate - ref.BlinkRate,
			SaccadeAmplitude: s.SaccadeAmplitude - ref.SaccadeAmplitude,
			Velocity:         s.Velocity - ref.Velocity,
		}
		if s.FixationDuration != nil && ref.FixationDuration != nil {
			v := *s.FixationDuration - *ref.FixationDuration
			d.FixationDuration = &v
		}
		out = append(out, d)
	}
	return out
}
