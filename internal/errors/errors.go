// Package errors provides sentinel errors and custom error types for the branchflow application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrMergeConflict indicates that a merge or cherry-pick stopped on conflicts
	ErrMergeConflict = errors.New("merge conflict")

	// ErrNoCompletionTag indicates that a branch has no completion tag yet.
	// This is a normal gate-closed outcome, not a failure.
	ErrNoCompletionTag = errors.New("no completion tag")

	// ErrNoReleaseBranch indicates that no release branch exists to resolve
	// a hotfix against
	ErrNoReleaseBranch = errors.New("no release branch")

	// ErrNoDevelopmentBranch indicates that no development branch exists to
	// propagate a hotfix into
	ErrNoDevelopmentBranch = errors.New("no development branch")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")
)

// NoReleaseBranchError reports that a hotfix could not resolve a parent
// release branch from its name or from the remote.
type NoReleaseBranchError struct {
	HotfixBranch string
}

func (e *NoReleaseBranchError) Error() string {
	return fmt.Sprintf("no release branch exists to receive hotfix %s", e.HotfixBranch)
}

// Is returns true if the target error is ErrNoReleaseBranch
func (e *NoReleaseBranchError) Is(target error) bool {
	return target == ErrNoReleaseBranch
}

// NewNoReleaseBranchError creates a new NoReleaseBranchError
func NewNoReleaseBranchError(hotfixBranch string) *NoReleaseBranchError {
	return &NoReleaseBranchError{HotfixBranch: hotfixBranch}
}

// GatewayError wraps a failed version-control operation with the name of the
// operation that failed, so callers can report exactly how far automation got.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway operation %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError
func NewGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
