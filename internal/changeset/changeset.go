// Package changeset partitions a change set's paths into a single accepted
// participant and the graded units they touched, or a typed rejection.
package changeset

import (
	"sort"
	"strings"

	"gradeline/internal/config"
	"gradeline/internal/domain"
	"gradeline/internal/identity"
)

// Classifier applies the submission zone rules to a list of changed paths.
// Check order is load-bearing: zone and ownership violations must abort
// before any per-unit logic runs.
type Classifier struct {
	ForbiddenPrefixes []string
	SubmissionsDir    string
	Units             map[string]struct{}
	Identity          identity.Validator
}

// New builds a Classifier from course config.
func New(cfg *config.Config) Classifier {
	units := make(map[string]struct{}, len(cfg.Units))
	for name := range cfg.Units {
		units[name] = struct{}{}
	}
	return Classifier{
		ForbiddenPrefixes: cfg.ForbiddenPrefixes,
		SubmissionsDir:    cfg.Submissions.Dir,
		Units:             units,
		Identity: identity.Validator{
			Prefix: cfg.Identity.Prefix,
			Min:    cfg.Identity.Min,
			Max:    cfg.Identity.Max,
		},
	}
}

// Classify inspects the ordered changed paths and either accepts exactly one
// participant with a non-empty touched-unit set or rejects with a typed error.
func (c Classifier) Classify(paths []string) (domain.Classification, error) {
	var forbidden []string
	for _, p := range paths {
		for _, prefix := range c.ForbiddenPrefixes {
			if strings.HasPrefix(p, prefix) {
				forbidden = append(forbidden, p)
				break
			}
		}
	}
	if len(forbidden) > 0 {
		return domain.Classification{}, &ForbiddenZoneError{Paths: forbidden}
	}

	zone := c.SubmissionsDir + "/"
	var outside []string
	for _, p := range paths {
		if !strings.HasPrefix(p, zone) {
			outside = append(outside, p)
		}
	}
	if len(outside) > 0 {
		return domain.Classification{}, &OutOfZoneError{Zone: c.SubmissionsDir, Paths: outside}
	}

	students := map[string]struct{}{}
	touched := map[string]struct{}{}
	var malformed []string
	for _, p := range paths {
		parts := strings.Split(p, "/")
		if len(parts) < 3 {
			malformed = append(malformed, p)
			continue
		}
		students[parts[1]] = struct{}{}
		file := parts[len(parts)-1]
		if _, ok := c.Units[file]; ok {
			touched[file] = struct{}{}
		}
	}
	if len(malformed) > 0 {
		return domain.Classification{}, &MalformedPathError{Zone: c.SubmissionsDir, Paths: malformed}
	}
	if len(students) != 1 {
		return domain.Classification{}, &MultipleParticipantsError{Participants: sortedKeys(students)}
	}

	var studentID string
	for id := range students {
		studentID = id
	}
	if !c.Identity.Valid(studentID) {
		lo, hi := c.Identity.Example()
		return domain.Classification{}, &UnknownParticipantError{ID: studentID, Lowest: lo, Highest: hi}
	}
	if len(touched) == 0 {
		return domain.Classification{}, &NoUnitTouchedError{Expected: sortedKeys(c.Units)}
	}
	return domain.Classification{StudentID: studentID, Units: sortedKeys(touched)}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
