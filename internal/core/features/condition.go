package features

import (
	"strings"

	perr "eogfeat/internal/platform/errors"
)

// Condition is the recording protocol a session was captured under
type Condition uint8

// Known conditions; the zero value is invalid
const (
	Baseline Condition = iota + 1
	Positive
	Stress
)

var conditionNames = [...]struct{ name, tag string }{
	Baseline: {"BASELINE", "NORMAL"},
	Positive: {"POSITIVE", "HAPPY"},
	Stress:   {"STRESS", "STRESSED"},
}

// Conditions lists every valid condition in table order
func Conditions() []Condition { return []Condition{Baseline, Positive, Stress} }

// Valid reports whether c is a known condition
func (c Condition) Valid() bool { return c >= Baseline && c <= Stress }

// String returns the canonical name (BASELINE, POSITIVE, STRESS)
func (c Condition) String() string {
	if !c.Valid() {
		return "UNKNOWN"
	}
	return conditionNames[c].name
}

// Tag returns the filename and table tag (NORMAL, HAPPY, STRESSED)
func (c Condition) Tag() string {
	if !c.Valid() {
		return ""
	}
	return conditionNames[c].tag
}

// ParseCondition accepts a canonical name or a tag, case-insensitively
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	for _, c := range Conditions() {
		if strings.EqualFold(s, c.String()) || strings.EqualFold(s, c.Tag()) {
			return c, nil
		}
	}
	return 0, perr.WithField(perr.InvalidArgf("unknown condition %q", s), "condition")
}

// MarshalText encodes the canonical name
func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, perr.InvalidArgf("invalid condition %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything ParseCondition does
func (c *Condition) UnmarshalText(b []byte) error {
	v, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Limits holds the analysis window length per condition, in seconds
type Limits struct {
	Baseline float64 `json:"baseline_s"`
	Positive float64 `json:"positive_s"`
	Stress   float64 `json:"stress_s"`
}

// DefaultLimits returns the protocol durations: 120 s baseline, 180 s otherwise
func DefaultLimits() Limits { return Limits{Baseline: 120, Positive: 180, Stress: 180} }

// For returns the window for c, or 0 for an invalid condition
func (l Limits) For(c Condition) float64 {
	switch c {
	case Baseline:
		return l.Baseline
	case Positive:
		return l.Positive
	case Stress:
		return l.Stress
	}
	return 0
}
