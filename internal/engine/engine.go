// Package engine sequences one grading run against the external
// collaborators: version control, the check suite, event metadata, and the
// ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gradeline/internal/changeset"
	"gradeline/internal/config"
	"gradeline/internal/deadline"
	"gradeline/internal/domain"
	"gradeline/internal/event"
	"gradeline/internal/events"
	"gradeline/internal/ledger"
	"gradeline/internal/policy"
	"gradeline/internal/suite"
	"gradeline/internal/vcs"
)

// Engine owns the lifecycle of a single grading run. Collaborators are
// injected so the sequencing can be exercised with scripted runners.
type Engine struct {
	Config *config.Config
	Clock  deadline.Clock
	Git    vcs.Git
	Suite  suite.Suite
	Ledger ledger.Ledger
	Events *events.Writer
	// RepoDir is the checkout root holding the submissions area.
	RepoDir string
	// EventPath points at the triggering event's metadata payload; empty
	// means the submission instant is unknown.
	EventPath string
	Out       io.Writer
	Now       func() time.Time
}

// Options are per-run parameters.
type Options struct {
	BaseRef        string
	TimeoutSeconds int
}

// ExitError carries the process exit code for a fatal run condition.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) printf(format string, args ...any) {
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// Grade runs one grading pass: classify the change set, run the scoped check
// suite, apply the late policy, report, and record. A nil error with an empty
// report means there was nothing to grade.
func (e Engine) Grade(ctx context.Context, opts Options) (domain.RunReport, error) {
	runID := uuid.NewString()
	report := domain.RunReport{RunID: runID}

	changed, err := e.Git.ChangedFiles(ctx, opts.BaseRef)
	if err != nil {
		return report, e.fatal(ctx, runID, "", "failed.vcs", err)
	}
	if len(changed) == 0 {
		e.printf("No changes detected. Nothing to grade.\n")
		return report, nil
	}

	cls, err := changeset.New(e.Config).Classify(changed)
	if err != nil {
		return report, e.fatal(ctx, runID, "", "rejected."+rejectionKind(err), err)
	}
	report.StudentID = cls.StudentID
	report.Units = cls.Units

	// Fail closed before any check runs if a touched unit lacks a usable
	// deadline.
	for _, unit := range cls.Units {
		u, ok := e.Config.Units[unit]
		if !ok {
			err := fmt.Errorf("no deadline configured for %s; add it under units in %s", unit, config.Path(e.RepoDir))
			return report, e.fatal(ctx, runID, cls.StudentID, "failed.config", err)
		}
		if _, err := e.Clock.ParseDeadline(u.Deadline); err != nil {
			return report, e.fatal(ctx, runID, cls.StudentID, "failed.config",
				fmt.Errorf("unit %s: %w; fix it under units in %s", unit, err, config.Path(e.RepoDir)))
		}
	}

	studentDir := filepath.Join(e.RepoDir, e.Config.Submissions.Dir, cls.StudentID)
	if _, err := os.Stat(studentDir); err != nil {
		err := fmt.Errorf("participant folder does not exist: %s", studentDir)
		return report, e.fatal(ctx, runID, cls.StudentID, "rejected.missing_folder", err)
	}

	e.printf("Student: %s\n", cls.StudentID)
	e.printf("Graded unit(s) changed: %s\n", strings.Join(cls.Units, ", "))

	refs := make([]string, 0, len(cls.Units))
	for _, unit := range cls.Units {
		refs = append(refs, e.Config.Units[unit].Suite)
	}
	scope := suite.Scope{
		StudentID:      cls.StudentID,
		StudentDir:     studentDir,
		Units:          cls.Units,
		SuiteRefs:      refs,
		TimeoutSeconds: opts.TimeoutSeconds,
	}
	if err := e.Suite.Run(ctx, scope); err != nil {
		return report, e.fatal(ctx, runID, cls.StudentID, "failed.suite", err)
	}

	score, err := suite.ReadResults(filepath.Join(studentDir, e.Config.Submissions.ResultsFile))
	if err != nil {
		return report, e.fatal(ctx, runID, cls.StudentID, "failed.results", err)
	}
	report.Earned = score.Earned
	report.MaxPoints = score.Max

	loc := e.Clock.Location
	submittedAt, err := event.SubmittedAt(e.EventPath, loc)
	if err != nil {
		return report, e.fatal(ctx, runID, cls.StudentID, "failed.event", err)
	}

	final, messages, err := policy.New(e.Config, e.Clock).Apply(score.Earned, cls.Units, submittedAt)
	if err != nil {
		return report, e.fatal(ctx, runID, cls.StudentID, "failed.config", err)
	}
	report.FinalScore = final
	report.Messages = messages

	var submittedStr string
	if submittedAt != nil {
		submittedStr = submittedAt.Format(time.RFC3339)
		e.printf("Submitted (change set updated): %s\n", submittedAt.Format("2006-01-02 15:04 MST"))
	}
	report.SubmittedAt = submittedStr
	for _, msg := range messages {
		e.printf(" - %s\n", msg)
	}
	e.printf("FINAL SCORE: %d/%d\n", final, score.Max)

	entries := make([]domain.LedgerEntry, 0, len(cls.Units))
	for _, unit := range cls.Units {
		entries = append(entries, domain.LedgerEntry{
			StudentID:   cls.StudentID,
			Unit:        unit,
			FinalScore:  final,
			MaxPoints:   score.Max,
			SubmittedAt: submittedStr,
		})
	}
	if err := e.Ledger.Append(entries); err != nil {
		return report, e.fatal(ctx, runID, cls.StudentID, "failed.ledger", err)
	}

	e.record(ctx, runID, cls.StudentID, "graded", events.Payload{
		"units":       cls.Units,
		"earned":      score.Earned,
		"final_score": final,
		"max_points":  score.Max,
	})
	return report, nil
}

// fatal records the failed run and wraps err with its process exit code.
func (e Engine) fatal(ctx context.Context, runID, studentID, verdict string, err error) error {
	e.record(ctx, runID, studentID, verdict, events.Payload{"error": err.Error()})
	return &ExitError{Code: exitCode(err), Err: err}
}

// record appends to the audit log; audit failures never gate grading.
func (e Engine) record(ctx context.Context, runID, studentID, verdict string, payload events.Payload) {
	if e.Events == nil {
		return
	}
	w := *e.Events
	if w.Now == nil {
		w.Now = e.now
	}
	if err := w.Append(ctx, runID, studentID, verdict, payload); err != nil {
		e.printf("warning: run log append failed: %v\n", err)
	}
}

// exitCode mirrors the failing collaborator's status where available.
func exitCode(err error) int {
	var cmdErr *vcs.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		return cmdErr.ExitCode
	}
	var suiteErr *suite.ExitError
	if errors.As(err, &suiteErr) && suiteErr.ExitCode != 0 {
		return suiteErr.ExitCode
	}
	return 1
}

func rejectionKind(err error) string {
	switch err.(type) {
	case *changeset.ForbiddenZoneError:
		return "forbidden_zone"
	case *changeset.OutOfZoneError:
		return "out_of_zone"
	case *changeset.MalformedPathError:
		return "malformed_path"
	case *changeset.MultipleParticipantsError:
		return "multiple_participants"
	case *changeset.UnknownParticipantError:
		return "unknown_participant"
	case *changeset.NoUnitTouchedError:
		return "no_unit_touched"
	default:
		return "unknown"
	}
}
