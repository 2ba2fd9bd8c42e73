package changeset_test

import (
	"errors"
	"testing"

	"gradeline/internal/changeset"
	"gradeline/internal/config"
)

func newClassifier(t *testing.T) changeset.Classifier {
	t.Helper()
	return changeset.New(config.Default())
}

func TestAcceptsSingleParticipant(t *testing.T) {
	c := newClassifier(t)
	cls, err := c.Classify([]string{
		"submissions/PY102001007/lab01.py",
		"submissions/PY102001007/lab02.py",
		"submissions/PY102001007/notes.txt", // not a graded unit, silently ignored
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if cls.StudentID != "PY102001007" {
		t.Fatalf("student = %q", cls.StudentID)
	}
	if len(cls.Units) != 2 || cls.Units[0] != "lab01.py" || cls.Units[1] != "lab02.py" {
		t.Fatalf("units = %v", cls.Units)
	}
}

func TestForbiddenZoneShortCircuits(t *testing.T) {
	c := newClassifier(t)
	// The forbidden path must win even though other paths are also invalid.
	_, err := c.Classify([]string{
		"autograder/grade_config.py",
		"src/main.py",
		"submissions/PY102001007/lab01.py",
	})
	var forbidden *changeset.ForbiddenZoneError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenZoneError, got %v", err)
	}
	if len(forbidden.Paths) != 1 || forbidden.Paths[0] != "autograder/grade_config.py" {
		t.Fatalf("paths = %v", forbidden.Paths)
	}
}

func TestWorkflowAreaIsForbidden(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{".github/workflows/grade.yml"})
	var forbidden *changeset.ForbiddenZoneError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenZoneError, got %v", err)
	}
}

func TestOutOfZoneRejectsRegardlessOfOtherPaths(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{
		"submissions/PY102001007/lab01.py",
		"README.md",
	})
	var outside *changeset.OutOfZoneError
	if !errors.As(err, &outside) {
		t.Fatalf("expected OutOfZoneError, got %v", err)
	}
	if len(outside.Paths) != 1 || outside.Paths[0] != "README.md" {
		t.Fatalf("paths = %v", outside.Paths)
	}
}

func TestMalformedPath(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{"submissions/stray.py"})
	var malformed *changeset.MalformedPathError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedPathError, got %v", err)
	}
}

func TestMultipleParticipants(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{
		"submissions/PY102001007/lab01.py",
		"submissions/PY102001008/lab01.py",
	})
	var multi *changeset.MultipleParticipantsError
	if !errors.As(err, &multi) {
		t.Fatalf("expected MultipleParticipantsError, got %v", err)
	}
	if len(multi.Participants) != 2 {
		t.Fatalf("participants = %v", multi.Participants)
	}
}

func TestUnknownParticipant(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{"submissions/PY102001999/lab01.py"})
	var unknown *changeset.UnknownParticipantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownParticipantError, got %v", err)
	}
	if unknown.ID != "PY102001999" {
		t.Fatalf("id = %q", unknown.ID)
	}
}

func TestNoUnitTouched(t *testing.T) {
	c := newClassifier(t)
	_, err := c.Classify([]string{"submissions/PY102001007/helpers.py"})
	var none *changeset.NoUnitTouchedError
	if !errors.As(err, &none) {
		t.Fatalf("expected NoUnitTouchedError, got %v", err)
	}
	if len(none.Expected) == 0 {
		t.Fatalf("expected unit names in error")
	}
}

func TestNestedSubmissionFileMatchesByFinalSegment(t *testing.T) {
	c := newClassifier(t)
	cls, err := c.Classify([]string{"submissions/PY102001007/extra/lab03.py"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(cls.Units) != 1 || cls.Units[0] != "lab03.py" {
		t.Fatalf("units = %v", cls.Units)
	}
}
