// Package execx is the narrow capability boundary around external commands.
// The orchestrator core only sees Runner, so tests can script collaborator
// output without spawning processes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandSpec describes one external command invocation.
type CommandSpec struct {
	Name string
	Args []string
	Dir  string
	// Env lists extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// Result captures what the command produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command and reports its output and exit status. A nonzero
// exit is returned in Result, not as an error; errors mean the command could
// not run at all.
type Runner interface {
	Run(ctx context.Context, spec CommandSpec) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, spec CommandSpec) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", spec.Name, err)
	}
	return res, nil
}

// FakeRunner replays scripted results keyed by the joined command line and
// records every invocation. Unscripted commands fail.
type FakeRunner struct {
	Results map[string]Result
	Calls   []CommandSpec
}

func (f *FakeRunner) Run(_ context.Context, spec CommandSpec) (Result, error) {
	f.Calls = append(f.Calls, spec)
	key := CommandLine(spec)
	res, ok := f.Results[key]
	if !ok {
		return Result{}, fmt.Errorf("no scripted result for %q", key)
	}
	return res, nil
}

// CommandLine renders a spec's name and args as one lookup key.
func CommandLine(spec CommandSpec) string {
	return strings.Join(append([]string{spec.Name}, spec.Args...), " ")
}
