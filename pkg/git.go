package versionbumper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes external commands in a working directory.
type Runner interface {
	// Run executes the command with the operator's terminal attached.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run streams the command's output to the runner's writers. Failures are
// reported as *ExternalCommandError.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return commandError(name, args, err, "")
	}
	return nil
}

// Output captures standard output; standard error is kept for the error detail.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", commandError(name, args, err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

func commandError(name string, args []string, err error, stderr string) error {
	ce := &ExternalCommandError{
		Args:     append([]string{name}, args...),
		ExitCode: -1,
		Stderr:   stderr,
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}
	return ce
}

// Git runs the git and git-flow commands the release workflow needs.
type Git struct {
	Runner Runner
}

// NewGit returns a Git backed by r.
func NewGit(r Runner) *Git {
	return &Git{Runner: r}
}

func (g *Git) run(ctx context.Context, args ...string) error {
	return g.Runner.Run(ctx, "git", args...)
}

func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	return g.Runner.Output(ctx, "git", args...)
}

// CheckAvailable verifies that git is installed.
func (g *Git) CheckAvailable(ctx context.Context) error {
	if _, err := g.output(ctx, "--version"); err != nil {
		return fmt.Errorf("git is not available on the system: %w", err)
	}
	return nil
}

// HasUnstagedChanges reports whether the working tree differs from the index.
func (g *Git) HasUnstagedChanges(ctx context.Context) (bool, error) {
	_, err := g.output(ctx, "diff", "--exit-code", "--quiet")
	if err == nil {
		return false, nil
	}
	var ce *ExternalCommandError
	if errors.As(err, &ce) && ce.ExitCode == 1 {
		return true, nil
	}
	return false, err
}

// ReleaseBranches lists local branches named release/*.
func (g *Git) ReleaseBranches(ctx context.Context) ([]string, error) {
	out, err := g.output(ctx, "branch", "--list", "release/*")
	if err != nil {
		return nil, err
	}
	return parseBranchList(out), nil
}

func parseBranchList(out string) []string {
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "* "))
		if name != "" {
			branches = append(branches, name)
		}
	}
	return branches
}

// CurrentBranch returns the abbreviated name of HEAD.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StartRelease creates release/<version> with git flow.
func (g *Git) StartRelease(ctx context.Context, version string) error {
	return g.run(ctx, "flow", "release", "start", version)
}

// DeleteRelease force-deletes release/<version> with git flow.
func (g *Git) DeleteRelease(ctx context.Context, version string) error {
	return g.run(ctx, "flow", "release", "delete", version, "-f")
}

// FinishRelease merges the release branch and pushes the production branch.
func (g *Git) FinishRelease(ctx context.Context, version, message string) error {
	return g.run(ctx, "flow", "release", "finish", version, "-m", message, "--pushproduction")
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	return g.run(ctx, append([]string{"add"}, paths...)...)
}

// Commit commits the index with message.
func (g *Git) Commit(ctx context.Context, message string) error {
	return g.run(ctx, "commit", "-m", message)
}

// Push pushes ref to remote.
func (g *Git) Push(ctx context.Context, remote, ref string) error {
	return g.run(ctx, "push", remote, ref)
}

// UnpushedCount counts commits on branch that remote/branch does not have.
func (g *Git) UnpushedCount(ctx context.Context, remote, branch string) (int, error) {
	out, err := g.output(ctx, "rev-list", "--count", remote+"/"+branch+".."+branch)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing rev-list count %q: %w", out, err)
	}
	return n, nil
}

// RemoteURL returns the configured URL of remote.
func (g *Git) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := g.output(ctx, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
