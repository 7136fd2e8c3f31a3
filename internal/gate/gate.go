// Package gate decides whether a branch is cleared for promotion, and
// resolves the release and development branches a hotfix propagates into.
//
// Promotion is gated on an explicit human sign-off: a tag named
// "<branch>-complete" in the remote tag namespace. The gate queries the
// remote fresh on every call; a tag pushed seconds ago must flip the
// result immediately, so nothing here is cached.
package gate

import (
	"context"
	"fmt"

	"branchflow.dev/branchflow/internal/branch"
	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/git"
)

// IsComplete reports whether the branch has its completion tag. Master is
// never gated.
func IsComplete(ctx context.Context, desc branch.Descriptor, gw git.Gateway) (bool, error) {
	if desc.Kind == branch.Master {
		return true, nil
	}

	want := desc.CompletionTagName()
	tags, err := gw.ListRemoteTags(ctx, want)
	if err != nil {
		return false, err
	}
	for _, tag := range tags {
		if tag == want {
			return true, nil
		}
	}
	return false, nil
}

// TagCommand returns the literal command the operator runs to mark the
// branch complete.
func TagCommand(desc branch.Descriptor, remote string) string {
	tag := desc.CompletionTagName()
	return fmt.Sprintf("git tag %s && git push %s %s", tag, remote, tag)
}

// ResolveParentRelease returns the release branch a hotfix merges into.
// A release token in the hotfix name wins; otherwise the numerically
// highest release branch on the remote is used. No release branch at all
// is a fatal configuration error.
func ResolveParentRelease(ctx context.Context, desc branch.Descriptor, gw git.Gateway) (branch.Descriptor, error) {
	if desc.ParentReleaseID > 0 {
		return branch.Classify(desc.ParentReleaseName()), nil
	}

	latest, ok, err := latestBySequence(ctx, gw, "r", branch.Release)
	if err != nil {
		return branch.Descriptor{}, err
	}
	if !ok {
		return branch.Descriptor{}, bferrors.NewNoReleaseBranchError(desc.RawName)
	}
	return latest, nil
}

// ResolveCurrentDevBranch returns the development branch with the highest
// sequence number on the remote. Highest sequence wins, matching the
// original pipeline's behavior when several development branches are open.
func ResolveCurrentDevBranch(ctx context.Context, gw git.Gateway) (branch.Descriptor, error) {
	latest, ok, err := latestBySequence(ctx, gw, "d", branch.Development)
	if err != nil {
		return branch.Descriptor{}, err
	}
	if !ok {
		return branch.Descriptor{}, bferrors.ErrNoDevelopmentBranch
	}
	return latest, nil
}

// latestBySequence lists remote branches under prefix, keeps those that
// classify as kind and returns the one with the highest sequence number.
func latestBySequence(ctx context.Context, gw git.Gateway, prefix string, kind branch.Kind) (branch.Descriptor, bool, error) {
	names, err := gw.ListRemoteBranches(ctx, prefix)
	if err != nil {
		return branch.Descriptor{}, false, err
	}

	var best branch.Descriptor
	found := false
	for _, name := range names {
		d := branch.Classify(name)
		if d.Kind != kind {
			continue
		}
		if !found || d.SequenceID > best.SequenceID {
			best = d
			found = true
		}
	}
	return best, found, nil
}
