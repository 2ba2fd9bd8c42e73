// Package suite invokes the external check suite and reads back its results
// artifact.
package suite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gradeline/internal/domain"
	"gradeline/internal/execx"
)

// Scope carries the execution context exported to the check suite so it can
// locate submitted code and persist its raw results.
type Scope struct {
	StudentID      string
	StudentDir     string
	Units          []string
	SuiteRefs      []string
	TimeoutSeconds int
}

// Suite runs the configured check-suite command scoped to the touched units.
// The suite's assertion outcomes are its own business; only the exit status
// and the results artifact cross this boundary.
type Suite struct {
	Runner execx.Runner
	Dir    string
	// Command is the check-suite command line, e.g. ["pytest", "-q"].
	Command []string
}

// ExitError reports a check-suite invocation that returned a failure status.
// The status propagates as the process exit code.
type ExitError struct {
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("check suite exited with status %d", e.ExitCode)
}

// Run executes the check suite for the scope's units.
func (s Suite) Run(ctx context.Context, scope Scope) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("check-suite command not configured")
	}
	args := append([]string(nil), s.Command[1:]...)
	args = append(args, scope.SuiteRefs...)
	if scope.TimeoutSeconds > 0 {
		args = append(args, fmt.Sprintf("--timeout=%d", scope.TimeoutSeconds))
	}
	res, err := s.Runner.Run(ctx, execx.CommandSpec{
		Name: s.Command[0],
		Args: args,
		Dir:  s.Dir,
		Env: []string{
			"STUDENT_ID=" + scope.StudentID,
			"STUDENT_DIR=" + scope.StudentDir,
			"LABS_TOUCHED=" + strings.Join(scope.Units, ","),
		},
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ExitError{ExitCode: res.ExitCode}
	}
	return nil
}

// ReadResults reads the earned/max summary the suite wrote for this
// participant.
func ReadResults(path string) (domain.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Score{}, fmt.Errorf("results file %s not found; did the check suite write it?", path)
		}
		return domain.Score{}, fmt.Errorf("read results file: %w", err)
	}
	var score domain.Score
	if err := json.Unmarshal(data, &score); err != nil {
		return domain.Score{}, fmt.Errorf("results file %s: %w", path, err)
	}
	return score, nil
}
