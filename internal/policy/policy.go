// Package policy converts a raw earned score into a final score under the
// deadline-based late-penalty rules.
package policy

import (
	"fmt"
	"sort"
	"time"

	"gradeline/internal/config"
	"gradeline/internal/deadline"
)

// Policy is a pure function over an immutable config snapshot. Given the same
// inputs it always produces the same final score and messages.
type Policy struct {
	Clock         deadline.Clock
	Deadlines     map[string]string
	ZeroAfterDays int
	UnitMaxPoints int
}

// New builds a Policy from course config and an injected clock.
func New(cfg *config.Config, clock deadline.Clock) Policy {
	deadlines := make(map[string]string, len(cfg.Units))
	for name, u := range cfg.Units {
		deadlines[name] = u.Deadline
	}
	return Policy{
		Clock:         clock,
		Deadlines:     deadlines,
		ZeroAfterDays: cfg.Policy.ZeroAfterDays,
		UnitMaxPoints: cfg.Policy.UnitMaxPoints,
	}
}

// Apply computes the final score for the touched units. A nil submittedAt is
// the unknown-timestamp state: the earned score passes through untouched.
// Lateness accrues 1 point per day through ZeroAfterDays, then the whole unit
// is forfeited. The final score never goes negative.
func (p Policy) Apply(earned int, touched []string, submittedAt *time.Time) (int, []string, error) {
	if submittedAt == nil {
		return earned, []string{"could not read submission timestamp; no late penalty applied"}, nil
	}

	units := append([]string(nil), touched...)
	sort.Strings(units)

	deduction := 0
	var messages []string
	for _, unit := range units {
		spec, ok := p.Deadlines[unit]
		if !ok {
			return 0, nil, fmt.Errorf("no deadline configured for %s", unit)
		}
		due, err := p.Clock.ParseDeadline(spec)
		if err != nil {
			return 0, nil, err
		}
		dlate := p.Clock.DaysLate(*submittedAt, due)
		switch {
		case dlate == 0:
			messages = append(messages, fmt.Sprintf("%s: on time", unit))
		case dlate <= p.ZeroAfterDays:
			deduction += dlate
			messages = append(messages, fmt.Sprintf("%s: %d day(s) late, -%d", unit, dlate, dlate))
		default:
			deduction += p.UnitMaxPoints
			messages = append(messages, fmt.Sprintf("%s: >%d days late, 0 for unit", unit, p.ZeroAfterDays))
		}
	}

	final := earned - deduction
	if final < 0 {
		final = 0
	}
	if deduction > 0 {
		messages = append(messages, fmt.Sprintf("total late deduction: -%d", deduction))
	} else {
		messages = append(messages, "no late deduction applied")
	}
	return final, messages, nil
}
