package changeset

import (
	"fmt"
	"strings"
)

// ForbiddenZoneError means the change set touches a protected area. It is
// absolute: one offending path rejects the whole run.
type ForbiddenZoneError struct {
	Paths []string
}

func (e *ForbiddenZoneError) Error() string {
	return "forbidden changes detected (do not modify autograder/workflow areas):" + itemize(e.Paths)
}

// OutOfZoneError means a path falls outside the submissions area.
type OutOfZoneError struct {
	Zone  string
	Paths []string
}

func (e *OutOfZoneError) Error() string {
	return fmt.Sprintf("changes outside %s/ are not allowed:%s", e.Zone, itemize(e.Paths))
}

// MalformedPathError means an in-zone path has fewer than three segments.
type MalformedPathError struct {
	Zone  string
	Paths []string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("invalid path(s), expected %s/<ID>/<file>:%s", e.Zone, itemize(e.Paths))
}

// MultipleParticipantsError means the change set spans participant folders.
type MultipleParticipantsError struct {
	Participants []string
}

func (e *MultipleParticipantsError) Error() string {
	return fmt.Sprintf("change set modifies %d participant folders, exactly one is allowed: %s",
		len(e.Participants), strings.Join(e.Participants, ", "))
}

// UnknownParticipantError means the single participant folder is not a valid
// identifier.
type UnknownParticipantError struct {
	ID      string
	Lowest  string
	Highest string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("invalid participant folder %s; expected %s .. %s", e.ID, e.Lowest, e.Highest)
}

// NoUnitTouchedError means no graded-unit file appears in the change set.
type NoUnitTouchedError struct {
	Expected []string
}

func (e *NoUnitTouchedError) Error() string {
	return "no graded unit file detected; expected one of: " + strings.Join(e.Expected, ", ")
}

func itemize(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}
