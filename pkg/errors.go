package versionbumper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAborted is returned when the operator declines a confirmation that the
// release cannot continue without.
var ErrAborted = errors.New("aborted by operator")

// FileNotFoundError reports a missing project or changelog file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s", e.Path)
}

// MalformedVersionError reports a version value that is not MAJOR.MINOR.PATCH.
type MalformedVersionError struct {
	Value string
	Err   error
}

func (e *MalformedVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed version %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("malformed version %q", e.Value)
}

func (e *MalformedVersionError) Unwrap() error { return e.Err }

// VersionNotFoundError reports a project file without a version line.
type VersionNotFoundError struct {
	Path string
	Err  error
}

func (e *VersionNotFoundError) Error() string {
	if e.Path == "" {
		return "could not find version"
	}
	return fmt.Sprintf("could not find version in %s", e.Path)
}

func (e *VersionNotFoundError) Unwrap() error { return e.Err }

// InvalidBumpKindError reports a bump kind outside major, minor and patch.
type InvalidBumpKindError struct {
	Kind string
}

func (e *InvalidBumpKindError) Error() string {
	return fmt.Sprintf("unknown bump type %q (want major, minor or patch)", e.Kind)
}

// ExternalCommandError reports a command that exited non-zero or could not start.
type ExternalCommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalCommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v, detail: %s", cmd, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", cmd, e.Err)
}

func (e *ExternalCommandError) Unwrap() error { return e.Err }

// UnstagedChangesError is the pre-flight guard tripped by a dirty working tree.
// Nothing has been modified when it is returned.
type UnstagedChangesError struct{}

func (e *UnstagedChangesError) Error() string {
	return "there are unstaged changes; commit or stash them before continuing"
}

// ReleaseBranchesError is returned when stale release branches must be kept.
type ReleaseBranchesError struct {
	Branches []string
}

func (e *ReleaseBranchesError) Error() string {
	return fmt.Sprintf("cannot proceed with existing release branches: %s", strings.Join(e.Branches, ", "))
}

// NotOnReleaseBranchError is returned when finishing a release from the wrong branch.
type NotOnReleaseBranchError struct {
	Want string
	Got  string
}

func (e *NotOnReleaseBranchError) Error() string {
	return fmt.Sprintf("you are not on the release branch %s (current branch: %s)", e.Want, e.Got)
}
