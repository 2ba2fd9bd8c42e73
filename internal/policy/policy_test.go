package policy_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"gradeline/internal/config"
	"gradeline/internal/deadline"
	"gradeline/internal/policy"
)

var zone = time.FixedZone("CST", -6*3600)

func newPolicy(t *testing.T) policy.Policy {
	t.Helper()
	cfg := config.Default()
	return policy.New(cfg, deadline.Clock{Location: zone})
}

func at(t *testing.T, spec string) *time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(config.DeadlineLayout, spec, zone)
	if err != nil {
		t.Fatalf("parse %q: %v", spec, err)
	}
	return &ts
}

func TestOneDayLate(t *testing.T) {
	// lab01.py is due 2026-03-07 23:59.
	p := newPolicy(t)
	final, msgs, err := p.Apply(18, []string{"lab01.py"}, at(t, "2026-03-08 10:00"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 17 {
		t.Fatalf("final = %d, want 17", final)
	}
	if len(msgs) != 2 || !strings.Contains(msgs[0], "1 day(s) late") {
		t.Fatalf("messages = %v", msgs)
	}
	if !strings.Contains(msgs[1], "-1") {
		t.Fatalf("summary = %q", msgs[1])
	}
}

func TestForfeitureAfterSevenDays(t *testing.T) {
	p := newPolicy(t)
	final, msgs, err := p.Apply(18, []string{"lab01.py"}, at(t, "2026-03-20 00:00"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 0 {
		t.Fatalf("final = %d, want 0", final)
	}
	if !strings.Contains(msgs[0], ">7 days late") {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestUnknownTimestampPassesThrough(t *testing.T) {
	p := newPolicy(t)
	final, msgs, err := p.Apply(15, []string{"lab01.py"}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 15 {
		t.Fatalf("final = %d, want 15", final)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "no late penalty applied") {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestOnTime(t *testing.T) {
	p := newPolicy(t)
	final, msgs, err := p.Apply(20, []string{"lab01.py"}, at(t, "2026-03-07 23:59"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 20 {
		t.Fatalf("final = %d, want 20", final)
	}
	if msgs[0] != "lab01.py: on time" {
		t.Fatalf("messages = %v", msgs)
	}
	if msgs[len(msgs)-1] != "no late deduction applied" {
		t.Fatalf("summary = %q", msgs[len(msgs)-1])
	}
}

func TestDeductionsSumAcrossUnits(t *testing.T) {
	// Submitted 2026-03-15 10:00: lab01 (due 03-07) is 8 days late and
	// forfeited; lab02 (due 03-14) is 1 day late.
	p := newPolicy(t)
	final, msgs, err := p.Apply(30, []string{"lab02.py", "lab01.py"}, at(t, "2026-03-15 10:00"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 30-20-1 {
		t.Fatalf("final = %d, want 9", final)
	}
	// Units must be reported in sorted order regardless of input order.
	if !strings.HasPrefix(msgs[0], "lab01.py:") || !strings.HasPrefix(msgs[1], "lab02.py:") {
		t.Fatalf("messages = %v", msgs)
	}
	if !strings.Contains(msgs[2], "-21") {
		t.Fatalf("summary = %q", msgs[2])
	}
}

func TestFinalNeverNegative(t *testing.T) {
	p := newPolicy(t)
	final, _, err := p.Apply(3, []string{"lab01.py"}, at(t, "2026-06-01 00:00"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if final != 0 {
		t.Fatalf("final = %d, want 0", final)
	}
}

func TestMonotoneInLateness(t *testing.T) {
	p := newPolicy(t)
	due := at(t, "2026-03-07 23:59")
	prev := 1 << 30
	for days := 0; days <= 10; days++ {
		submitted := due.Add(time.Duration(days) * 25 * time.Hour)
		final, _, err := p.Apply(18, []string{"lab01.py"}, &submitted)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if final > prev {
			t.Fatalf("final score increased with lateness: %d -> %d", prev, final)
		}
		if final < 0 {
			t.Fatalf("negative final score %d", final)
		}
		prev = final
	}
}

func TestDeterministic(t *testing.T) {
	p := newPolicy(t)
	when := at(t, "2026-03-09 08:30")
	f1, m1, err := p.Apply(18, []string{"lab02.py", "lab01.py"}, when)
	if err != nil {
		t.Fatal(err)
	}
	f2, m2, err := p.Apply(18, []string{"lab01.py", "lab02.py"}, when)
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 || !reflect.DeepEqual(m1, m2) {
		t.Fatalf("policy not deterministic: (%d,%v) vs (%d,%v)", f1, m1, f2, m2)
	}
}

func TestMissingDeadlineIsConfigurationError(t *testing.T) {
	p := newPolicy(t)
	if _, _, err := p.Apply(18, []string{"lab99.py"}, at(t, "2026-03-08 10:00")); err == nil {
		t.Fatalf("expected configuration error for unknown unit")
	}
}
