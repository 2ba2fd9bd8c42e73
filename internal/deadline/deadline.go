// Package deadline converts configured deadline specs into instants and
// measures lateness in whole days.
package deadline

import (
	"fmt"
	"time"

	"gradeline/internal/config"
)

// Clock interprets deadlines in one civil timezone. The location is injected
// so tests can grade against synthetic zones.
type Clock struct {
	Location *time.Location
}

// ParseDeadline interprets a "YYYY-MM-DD HH:MM" string as local time in the
// clock's timezone.
func (c Clock) ParseDeadline(spec string) (time.Time, error) {
	t, err := time.ParseInLocation(config.DeadlineLayout, spec, c.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("deadline %q does not match %q: %w", spec, config.DeadlineLayout, err)
	}
	return t, nil
}

// DaysLate returns how many whole days submitted is past deadline. On-time
// submissions return 0; any positive overage counts as at least one day, so
// a partial day is rounded up.
func (c Clock) DaysLate(submitted, deadline time.Time) int {
	delta := submitted.Sub(deadline)
	if delta <= 0 {
		return 0
	}
	return int(delta/(24*time.Hour)) + 1
}
