package deadline_test

import (
	"testing"
	"time"

	"gradeline/internal/deadline"
)

var zone = time.FixedZone("CST", -6*3600)

func TestParseDeadline(t *testing.T) {
	clock := deadline.Clock{Location: zone}
	due, err := clock.ParseDeadline("2026-03-07 23:59")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 3, 7, 23, 59, 0, 0, zone)
	if !due.Equal(want) {
		t.Fatalf("got %v, want %v", due, want)
	}
}

func TestParseDeadlineRejectsWrongFormat(t *testing.T) {
	clock := deadline.Clock{Location: zone}
	for _, spec := range []string{"2026-03-07", "03/07/2026 23:59", "2026-03-07T23:59", "tomorrow", ""} {
		if _, err := clock.ParseDeadline(spec); err == nil {
			t.Errorf("expected format error for %q", spec)
		}
	}
}

func TestDaysLate(t *testing.T) {
	clock := deadline.Clock{Location: zone}
	due := time.Date(2026, 3, 7, 23, 59, 0, 0, zone)
	cases := []struct {
		submitted time.Time
		want      int
	}{
		{due.Add(-48 * time.Hour), 0},
		{due, 0},
		{due.Add(time.Minute), 1},    // any overage counts as a day
		{due.Add(10 * time.Hour), 1}, // partial day rounds up
		{due.Add(24 * time.Hour), 2}, // one whole day elapsed starts day two
		{due.Add(25 * time.Hour), 2},
		{due.Add(7 * 24 * time.Hour).Add(time.Hour), 8},
		{due.Add(30 * 24 * time.Hour).Add(time.Minute), 31},
	}
	for _, c := range cases {
		if got := clock.DaysLate(c.submitted, due); got != c.want {
			t.Errorf("DaysLate(due+%v) = %d, want %d", c.submitted.Sub(due), got, c.want)
		}
	}
}
