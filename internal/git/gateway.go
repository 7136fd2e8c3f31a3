package git

import "context"

// MergeStrategy selects how a merge is performed.
type MergeStrategy int

const (
	// MergeNoFastForward merges with --no-ff, always creating a merge commit.
	MergeNoFastForward MergeStrategy = iota
	// MergeTrialNoCommit performs a non-committing trial merge that is
	// aborted unconditionally after the outcome is observed. The working
	// tree is byte-identical before and after, whatever the result.
	MergeTrialNoCommit
)

// Gateway is the capability interface the promotion engine issues commands
// through. Implementations own all repository state; callers never hold a
// long-lived handle. A conflicted merge or cherry-pick is reported as an
// error matching errors.ErrMergeConflict, distinct from plain failure.
//
// This allows the engine and the conflict detector to be tested against an
// in-memory fake without invoking real version-control tooling.
type Gateway interface {
	// FetchAll updates all remote-tracking refs from the remote.
	FetchAll(ctx context.Context) error

	// ListRemoteBranches returns the names of remote branches starting
	// with prefix (names are returned without the remote qualifier).
	ListRemoteBranches(ctx context.Context, prefix string) ([]string, error)

	// ListRemoteTags returns tag names on the remote matching pattern.
	// The query goes to the remote directly so that a tag pushed moments
	// ago is visible immediately.
	ListRemoteTags(ctx context.Context, pattern string) ([]string, error)

	// Checkout checks out ref and resets it to its remote-tracking state
	// when one exists.
	Checkout(ctx context.Context, ref string) error

	// CreateBranch creates branch name at from without checking it out.
	CreateBranch(ctx context.Context, name, from string) error

	// Push pushes ref (branch or tag) to the remote.
	Push(ctx context.Context, ref string) error

	// Tag creates an annotated tag name at target.
	Tag(ctx context.Context, name, target, message string) error

	// Merge merges source into target using the given strategy. Target is
	// checked out as a side effect. Conflicts match errors.ErrMergeConflict;
	// for MergeNoFastForward a conflicted merge is aborted before returning.
	Merge(ctx context.Context, source, target string, strategy MergeStrategy) error

	// CherryPick applies commit on top of onto. On conflict the working
	// tree is left with conflict markers in place and the returned error
	// matches errors.ErrMergeConflict; callers that did not want the
	// conflicted state must call AbortCherryPick.
	CherryPick(ctx context.Context, commit, onto string) error

	// AbortCherryPick abandons an in-progress conflicted cherry-pick,
	// restoring the working tree.
	AbortCherryPick(ctx context.Context) error

	// StageAllAndCommit stages everything and records a commit, falling
	// back to an empty placeholder commit when nothing is stageable.
	StageAllAndCommit(ctx context.Context, message string) error

	// DiffUnmergedPaths returns the paths currently in conflict.
	DiffUnmergedPaths(ctx context.Context) ([]string, error)

	// CurrentHeadCommit resolves ref to a commit SHA.
	CurrentHeadCommit(ctx context.Context, ref string) (string, error)
}
