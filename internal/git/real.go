package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	bferrors "branchflow.dev/branchflow/internal/errors"
)

// RealGateway implements Gateway against an on-disk repository. Read-side
// queries go through go-git; anything that rewrites history shells out to
// the git binary so the behavior matches what an operator would see running
// the same commands by hand.
type RealGateway struct {
	repo   *gogit.Repository
	runner *CommandRunner
	remote string
}

// NewGateway opens the repository at repoRoot and returns a Gateway that
// talks to the given remote.
func NewGateway(repoRoot, remote string) (*RealGateway, error) {
	repo, err := gogit.PlainOpen(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", repoRoot, err)
	}
	return &RealGateway{
		repo:   repo,
		runner: NewCommandRunner(repoRoot),
		remote: remote,
	}, nil
}

// FetchAll updates remote-tracking refs and prunes deleted branches.
func (g *RealGateway) FetchAll(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, "fetch", g.remote, "--prune"); err != nil {
		return bferrors.NewGatewayError("fetch-all", err)
	}
	return nil
}

// ListRemoteBranches returns remote branch names starting with prefix.
func (g *RealGateway) ListRemoteBranches(_ context.Context, prefix string) ([]string, error) {
	refs, err := g.repo.References()
	if err != nil {
		return nil, bferrors.NewGatewayError("list-remote-branches", err)
	}
	defer refs.Close()

	remotePrefix := fmt.Sprintf("refs/remotes/%s/", g.remote)
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if !strings.HasPrefix(name, remotePrefix) {
			return nil
		}
		short := strings.TrimPrefix(name, remotePrefix)
		if short == "HEAD" {
			return nil
		}
		if strings.HasPrefix(short, prefix) {
			names = append(names, short)
		}
		return nil
	})
	if err != nil {
		return nil, bferrors.NewGatewayError("list-remote-branches", err)
	}
	return names, nil
}

// ListRemoteTags queries the remote directly so that freshly pushed tags
// are visible without a fetch.
func (g *RealGateway) ListRemoteTags(ctx context.Context, pattern string) ([]string, error) {
	args := []string{"ls-remote", "--tags", g.remote}
	if pattern != "" {
		args = append(args, pattern)
	}
	lines, err := g.runner.RunLines(ctx, args...)
	if err != nil {
		return nil, bferrors.NewGatewayError("list-remote-tags", err)
	}

	var tags []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		name := strings.TrimPrefix(fields[1], "refs/tags/")
		// Skip peeled entries for annotated tags
		if strings.HasSuffix(name, "^{}") {
			continue
		}
		tags = append(tags, name)
	}
	return tags, nil
}

// Checkout checks out ref and, when a remote-tracking branch exists, resets
// it to the remote state.
func (g *RealGateway) Checkout(ctx context.Context, ref string) error {
	if _, err := g.runner.Run(ctx, "checkout", ref); err != nil {
		return bferrors.NewGatewayError("checkout", err)
	}

	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", g.remote, ref)
	if _, err := g.repo.Reference(plumbing.ReferenceName(remoteRef), true); err != nil {
		return nil // no remote-tracking branch, local state is authoritative
	}
	if _, err := g.runner.Run(ctx, "reset", "--hard", fmt.Sprintf("%s/%s", g.remote, ref)); err != nil {
		return bferrors.NewGatewayError("checkout", err)
	}
	return nil
}

// CreateBranch creates branch name at from without checking it out.
func (g *RealGateway) CreateBranch(ctx context.Context, name, from string) error {
	if _, err := g.runner.Run(ctx, "branch", name, from); err != nil {
		return bferrors.NewGatewayError("create-branch", err)
	}
	return nil
}

// Push pushes a branch or tag to the remote.
func (g *RealGateway) Push(ctx context.Context, ref string) error {
	if _, err := g.runner.Run(ctx, "push", g.remote, ref); err != nil {
		return bferrors.NewGatewayError("push", err)
	}
	return nil
}

// Tag creates an annotated tag.
func (g *RealGateway) Tag(ctx context.Context, name, target, message string) error {
	if _, err := g.runner.Run(ctx, "tag", "-a", name, target, "-m", message); err != nil {
		return bferrors.NewGatewayError("tag", err)
	}
	return nil
}

// Merge merges source into target. See Gateway for strategy semantics.
func (g *RealGateway) Merge(ctx context.Context, source, target string, strategy MergeStrategy) error {
	if err := g.Checkout(ctx, target); err != nil {
		return err
	}

	switch strategy {
	case MergeTrialNoCommit:
		_, err := g.runner.Run(ctx, "merge", "--no-commit", "--no-ff", source)
		// The trial must leave nothing behind regardless of outcome.
		// merge --abort fails harmlessly when the merge never started
		// (e.g. "already up to date").
		_, _ = g.runner.Run(ctx, "merge", "--abort")
		if err != nil {
			if isConflict(err) {
				return bferrors.NewGatewayError("merge",
					fmt.Errorf("trial merge of %s into %s: %w", source, target, bferrors.ErrMergeConflict))
			}
			return bferrors.NewGatewayError("merge", err)
		}
		return nil

	case MergeNoFastForward:
		message := fmt.Sprintf("Merge %s into %s", source, target)
		_, err := g.runner.Run(ctx, "merge", "--no-ff", "-m", message, source)
		if err != nil {
			if isConflict(err) {
				_, _ = g.runner.Run(ctx, "merge", "--abort")
				return bferrors.NewGatewayError("merge",
					fmt.Errorf("merge of %s into %s: %w", source, target, bferrors.ErrMergeConflict))
			}
			return bferrors.NewGatewayError("merge", err)
		}
		return nil

	default:
		return bferrors.NewGatewayError("merge", fmt.Errorf("unknown merge strategy %d", strategy))
	}
}

// CherryPick applies commit on top of onto. A conflicted cherry-pick leaves
// its markers in the working tree; see Gateway.
func (g *RealGateway) CherryPick(ctx context.Context, commit, onto string) error {
	if err := g.Checkout(ctx, onto); err != nil {
		return err
	}
	if _, err := g.runner.Run(ctx, "cherry-pick", commit); err != nil {
		if isConflict(err) {
			return bferrors.NewGatewayError("cherry-pick",
				fmt.Errorf("cherry-pick of %s onto %s: %w", commit, onto, bferrors.ErrMergeConflict))
		}
		return bferrors.NewGatewayError("cherry-pick", err)
	}
	return nil
}

// AbortCherryPick abandons an in-progress conflicted cherry-pick.
func (g *RealGateway) AbortCherryPick(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, "cherry-pick", "--abort"); err != nil {
		return bferrors.NewGatewayError("cherry-pick-abort", err)
	}
	return nil
}

// StageAllAndCommit stages everything and commits, falling back to an empty
// placeholder commit when there is nothing to record.
func (g *RealGateway) StageAllAndCommit(ctx context.Context, message string) error {
	if _, err := g.runner.Run(ctx, "add", "-A"); err != nil {
		return bferrors.NewGatewayError("stage-all", err)
	}
	if _, err := g.runner.Run(ctx, "commit", "--no-verify", "-m", message); err != nil {
		if _, err := g.runner.Run(ctx, "commit", "--allow-empty", "--no-verify", "-m", message); err != nil {
			return bferrors.NewGatewayError("commit", err)
		}
	}
	return nil
}

// DiffUnmergedPaths returns the paths currently in conflict.
func (g *RealGateway) DiffUnmergedPaths(ctx context.Context) ([]string, error) {
	lines, err := g.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, bferrors.NewGatewayError("diff-unmerged-paths", err)
	}
	return lines, nil
}

// CurrentHeadCommit resolves ref to a commit SHA.
func (g *RealGateway) CurrentHeadCommit(_ context.Context, ref string) (string, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", bferrors.NewGatewayError("current-head-commit", err)
	}
	return hash.String(), nil
}

// isConflict reports whether a git command failure was a merge or
// cherry-pick conflict rather than a plain failure.
func isConflict(err error) bool {
	var cmdErr *bferrors.GitCommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	out := cmdErr.Stdout + cmdErr.Stderr
	return strings.Contains(out, "CONFLICT") ||
		strings.Contains(out, "Automatic merge failed") ||
		strings.Contains(out, "could not apply")
}
