package config

import (
	"testing"
	"time"

	kit "eogfeat/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	eog := New().Prefix("EOG_")
	if got := eog.key("WORKERS"); got != "EOG_WORKERS" {
		t.Fatalf("key() = %q, want %q", got, "EOG_WORKERS")
	}
	nested := eog.Prefix("FILTER_")
	if got := nested.key("ORDER"); got != "EOG_FILTER_ORDER" {
		t.Fatalf("nested key() = %q, want %q", got, "EOG_FILTER_ORDER")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  eogfeat ")
	if got := c.MustString("NAME"); got != "eogfeat" {
		t.Fatalf("MustString = %q, want %q", got, "eogfeat")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustFloat64(t *testing.T) {
	c := New().Prefix("F_")
	t.Setenv("F_CUTOFF", " 30.5 ")
	if got := c.MustFloat64("CUTOFF"); got != 30.5 {
		t.Fatalf("MustFloat64 = %v, want 30.5", got)
	}
	t.Setenv("F_BAD", "abc")
	kit.MustPanic(t, func() { _ = c.MustFloat64("BAD") })
	t.Setenv("F_INF", "+Inf")
	kit.MustPanic(t, func() { _ = c.MustFloat64("INF") })
	kit.MustPanic(t, func() { _ = c.MustFloat64("MISSING") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_B", "y")
	c.Require("A", "B")
	kit.MustPanic(t, func() { c.Require("A", "C") })

	t.Setenv("REQ_WS", "   ")
	kit.MustPanic(t, func() { c.Require("WS") })
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_DIR", " /data ")
	if got := c.MayString("DIR", "x"); got != "/data" {
		t.Fatalf("MayString value = %q, want %q", got, "/data")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 27); got != 27 {
		t.Fatalf("MayInt default = %d, want 27", got)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want 7", got)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want 3", got)
	}
}

func TestMayPositiveInt(t *testing.T) {
	c := New().Prefix("PI_")
	t.Setenv("PI_ZERO", "0")
	if got := c.MayPositiveInt("ZERO", 4); got != 4 {
		t.Fatalf("MayPositiveInt zero -> default = %d, want 4", got)
	}
	t.Setenv("PI_OK", "2")
	if got := c.MayPositiveInt("OK", 4); got != 2 {
		t.Fatalf("MayPositiveInt ok = %d, want 2", got)
	}
}

func TestMayFloat64(t *testing.T) {
	c := New().Prefix("FL_")
	if got := c.MayFloat64("MISSING", 3); got != 3 {
		t.Fatalf("MayFloat64 default = %v", got)
	}
	t.Setenv("FL_OK", "2.5")
	if got := c.MayFloat64("OK", 3); got != 2.5 {
		t.Fatalf("MayFloat64 ok = %v", got)
	}
	t.Setenv("FL_NAN", "NaN")
	if got := c.MayFloat64("NAN", 3); got != 3 {
		t.Fatalf("MayFloat64 NaN -> default = %v", got)
	}
	t.Setenv("FL_NEG", "-1")
	if got := c.MayPositiveFloat64("NEG", 1000); got != 1000 {
		t.Fatalf("MayPositiveFloat64 negative -> default = %v", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if !c.MayBool("MISSING", true) {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if !c.MayBool("T", false) {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if c.MayBool("BAD", false) {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("DUR_")
	if got := c.MayDuration("MISS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("MayDuration default expected")
	}
	t.Setenv("DUR_OK", "150ms")
	if got := c.MayDuration("OK", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration ok = %v, want %v", got, 150*time.Millisecond)
	}
	t.Setenv("DUR_BAD", "nope")
	if got := c.MayDuration("BAD", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration bad -> default expected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " NORMAL, HAPPY , ,STRESSED ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"NORMAL", "HAPPY", "STRESSED"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	t.Setenv("CSV_EMPTY", " , ,")
	if got := c.MayCSV("EMPTY", []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "dynamic", "dynamic", "fixed"); got != "dynamic" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_MODE", "Fixed")
	if got := c.MayEnum("MODE", "dynamic", "dynamic", "fixed"); got != "fixed" {
		t.Fatalf("MayEnum allowed value = %q, want fixed", got)
	}
	t.Setenv("E_BAD", "adaptive")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "dynamic", "dynamic", "fixed") })
	if got := c.MayEnum("MISSING", "", "dynamic"); got != "" {
		t.Fatalf("MayEnum with empty def = %q, want empty", got)
	}
}
