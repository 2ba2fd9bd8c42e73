// Package vcs lists the changed paths of a change set via git.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"gradeline/internal/execx"
)

// Git is the version-control collaborator. Fetch or diff failures are fatal
// to the run and carry git's own exit status.
type Git struct {
	Runner execx.Runner
	Dir    string
}

// ChangedFiles returns the ordered paths changed between origin/<baseRef>
// and the current state.
func (g Git) ChangedFiles(ctx context.Context, baseRef string) ([]string, error) {
	if _, err := g.run(ctx, "fetch", "origin", baseRef); err != nil {
		return nil, err
	}
	out, err := g.run(ctx, "diff", "--name-only", fmt.Sprintf("origin/%s...HEAD", baseRef))
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

func (g Git) run(ctx context.Context, args ...string) (string, error) {
	spec := execx.CommandSpec{Name: "git", Args: args, Dir: g.Dir}
	res, err := g.Runner.Run(ctx, spec)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &CommandError{Line: execx.CommandLine(spec), ExitCode: res.ExitCode, Output: res.Stdout + res.Stderr}
	}
	return res.Stdout, nil
}

// CommandError reports a collaborator command that exited nonzero.
type CommandError struct {
	Line     string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed (exit %d): %s", e.ExitCode, e.Line)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}
