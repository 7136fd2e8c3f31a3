// Package testhelpers provides shared test infrastructure: an in-memory
// version-control gateway and a scratch git repository builder.
package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/git"
)

// FakeGateway is an in-memory git.Gateway. Branch content is modeled by an
// opaque head SHA; every operation is appended to Ops so tests can assert
// exactly what ran and in what order.
type FakeGateway struct {
	mu sync.Mutex

	// Branches maps local branch names to head SHAs.
	Branches map[string]string
	// RemoteBranches maps remote branch names to head SHAs.
	RemoteBranches map[string]string
	// Tags and RemoteTags map tag names to target SHAs.
	Tags       map[string]string
	RemoteTags map[string]string

	// Head is the currently checked-out ref.
	Head string

	// Ops records every gateway call in order.
	Ops []string

	// FailOn injects an error for an operation, keyed by "op" or "op arg".
	FailOn map[string]error

	// conflicts marks a source SHA as conflicting with a branch tip,
	// keyed "sha@tip".
	conflicts map[string]bool
	// Unmerged is what DiffUnmergedPaths reports during a conflicted pick.
	Unmerged []string

	commitSeq   int
	pendingPick bool
}

// NewFakeGateway returns a gateway seeded with a master branch present on
// the remote.
func NewFakeGateway() *FakeGateway {
	g := &FakeGateway{
		Branches:       map[string]string{},
		RemoteBranches: map[string]string{},
		Tags:           map[string]string{},
		RemoteTags:     map[string]string{},
		FailOn:         map[string]error{},
		conflicts:      map[string]bool{},
	}
	sha := g.newSha()
	g.Branches["master"] = sha
	g.RemoteBranches["master"] = sha
	g.Head = "master"
	return g
}

func (g *FakeGateway) newSha() string {
	g.commitSeq++
	return fmt.Sprintf("sha%04d", g.commitSeq)
}

// SeedBranch creates a branch with a fresh head on both local and remote
// and returns its SHA.
func (g *FakeGateway) SeedBranch(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	sha := g.newSha()
	g.Branches[name] = sha
	g.RemoteBranches[name] = sha
	return sha
}

// SeedRemoteTag records a tag that exists on the remote.
func (g *FakeGateway) SeedRemoteTag(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RemoteTags[name] = g.newSha()
}

// MarkConflict declares that applying sourceSha to any branch currently at
// targetBranch's tip conflicts, reporting the given unmerged paths.
func (g *FakeGateway) MarkConflict(sourceSha, targetBranch string, paths ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conflicts[sourceSha+"@"+g.Branches[targetBranch]] = true
	g.Unmerged = paths
}

// OpLog returns the recorded operations joined by newlines, for readable
// failure output.
func (g *FakeGateway) OpLog() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return strings.Join(g.Ops, "\n")
}

func (g *FakeGateway) record(op string) {
	g.Ops = append(g.Ops, op)
}

func (g *FakeGateway) injected(op string, args ...string) error {
	if len(args) > 0 {
		if err, ok := g.FailOn[op+" "+args[0]]; ok {
			return err
		}
	}
	if err, ok := g.FailOn[op]; ok {
		return err
	}
	return nil
}

// resolve maps a ref (branch, tag or raw SHA) to a SHA.
func (g *FakeGateway) resolve(ref string) (string, bool) {
	if sha, ok := g.Branches[ref]; ok {
		return sha, true
	}
	if sha, ok := g.RemoteBranches[ref]; ok {
		return sha, true
	}
	if sha, ok := g.Tags[ref]; ok {
		return sha, true
	}
	if strings.HasPrefix(ref, "sha") {
		return ref, true
	}
	return "", false
}

func conflictErr(op, detail string) error {
	return bferrors.NewGatewayError(op, fmt.Errorf("%s: %w", detail, bferrors.ErrMergeConflict))
}

// FetchAll records the fetch; remote state in the fake is always current.
func (g *FakeGateway) FetchAll(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("fetch-all")
	return g.injected("fetch-all")
}

func (g *FakeGateway) ListRemoteBranches(_ context.Context, prefix string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("list-remote-branches " + prefix)
	if err := g.injected("list-remote-branches"); err != nil {
		return nil, err
	}
	var names []string
	for name := range g.RemoteBranches {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (g *FakeGateway) ListRemoteTags(_ context.Context, pattern string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("list-remote-tags " + pattern)
	if err := g.injected("list-remote-tags"); err != nil {
		return nil, err
	}
	var names []string
	for name := range g.RemoteTags {
		if pattern == "" || name == pattern {
			names = append(names, name)
		}
	}
	return names, nil
}

func (g *FakeGateway) Checkout(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("checkout " + ref)
	if err := g.injected("checkout", ref); err != nil {
		return err
	}
	if _, ok := g.Branches[ref]; !ok {
		sha, ok := g.RemoteBranches[ref]
		if !ok {
			return bferrors.NewGatewayError("checkout", fmt.Errorf("%s: %w", ref, bferrors.ErrBranchNotFound))
		}
		g.Branches[ref] = sha
	}
	g.Head = ref
	return nil
}

func (g *FakeGateway) CreateBranch(_ context.Context, name, from string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("create-branch %s %s", name, from))
	if err := g.injected("create-branch", name); err != nil {
		return err
	}
	sha, ok := g.resolve(from)
	if !ok {
		return bferrors.NewGatewayError("create-branch", fmt.Errorf("%s: %w", from, bferrors.ErrBranchNotFound))
	}
	g.Branches[name] = sha
	return nil
}

func (g *FakeGateway) Push(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("push " + ref)
	if err := g.injected("push", ref); err != nil {
		return err
	}
	if sha, ok := g.Branches[ref]; ok {
		g.RemoteBranches[ref] = sha
		return nil
	}
	if sha, ok := g.Tags[ref]; ok {
		g.RemoteTags[ref] = sha
		return nil
	}
	return bferrors.NewGatewayError("push", fmt.Errorf("%s: %w", ref, bferrors.ErrBranchNotFound))
}

func (g *FakeGateway) Tag(_ context.Context, name, target, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("tag %s %s", name, target))
	if err := g.injected("tag", name); err != nil {
		return err
	}
	sha, ok := g.resolve(target)
	if !ok {
		return bferrors.NewGatewayError("tag", fmt.Errorf("%s: %w", target, bferrors.ErrBranchNotFound))
	}
	g.Tags[name] = sha
	return nil
}

func (g *FakeGateway) Merge(_ context.Context, source, target string, strategy git.MergeStrategy) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sourceSha, ok := g.resolve(source)
	if !ok {
		return bferrors.NewGatewayError("merge", fmt.Errorf("%s: %w", source, bferrors.ErrBranchNotFound))
	}
	targetSha, ok := g.Branches[target]
	if !ok {
		if targetSha, ok = g.RemoteBranches[target]; ok {
			g.Branches[target] = targetSha
		} else {
			return bferrors.NewGatewayError("merge", fmt.Errorf("%s: %w", target, bferrors.ErrBranchNotFound))
		}
	}
	g.Head = target

	conflicted := g.conflicts[sourceSha+"@"+targetSha]

	switch strategy {
	case git.MergeTrialNoCommit:
		g.record(fmt.Sprintf("trial-merge %s %s", source, target))
		g.record("abort-merge")
		if err := g.injected("trial-merge", source); err != nil {
			return err
		}
		if conflicted {
			return conflictErr("merge", fmt.Sprintf("trial merge of %s into %s", source, target))
		}
		return nil
	default:
		g.record(fmt.Sprintf("merge --no-ff %s %s", source, target))
		if err := g.injected("merge", source); err != nil {
			return err
		}
		if conflicted {
			g.record("abort-merge")
			return conflictErr("merge", fmt.Sprintf("merge of %s into %s", source, target))
		}
		g.Branches[target] = g.newSha()
		return nil
	}
}

func (g *FakeGateway) CherryPick(_ context.Context, commit, onto string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("cherry-pick %s %s", commit, onto))
	if err := g.injected("cherry-pick", onto); err != nil {
		return err
	}
	tip, ok := g.Branches[onto]
	if !ok {
		return bferrors.NewGatewayError("cherry-pick", fmt.Errorf("%s: %w", onto, bferrors.ErrBranchNotFound))
	}
	g.Head = onto
	if g.conflicts[commit+"@"+tip] {
		g.pendingPick = true
		return conflictErr("cherry-pick", fmt.Sprintf("cherry-pick of %s onto %s", commit, onto))
	}
	g.Branches[onto] = g.newSha()
	return nil
}

func (g *FakeGateway) AbortCherryPick(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("cherry-pick-abort")
	g.pendingPick = false
	return g.injected("cherry-pick-abort")
}

func (g *FakeGateway) StageAllAndCommit(_ context.Context, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("stage-all-and-commit " + message)
	if err := g.injected("stage-all-and-commit"); err != nil {
		return err
	}
	g.pendingPick = false
	g.Branches[g.Head] = g.newSha()
	return nil
}

func (g *FakeGateway) DiffUnmergedPaths(_ context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("diff-unmerged-paths")
	if err := g.injected("diff-unmerged-paths"); err != nil {
		return nil, err
	}
	if !g.pendingPick {
		return []string{}, nil
	}
	return append([]string{}, g.Unmerged...), nil
}

func (g *FakeGateway) CurrentHeadCommit(_ context.Context, ref string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("current-head-commit " + ref)
	if err := g.injected("current-head-commit", ref); err != nil {
		return "", err
	}
	sha, ok := g.resolve(ref)
	if !ok {
		return "", bferrors.NewGatewayError("current-head-commit", fmt.Errorf("%s: %w", ref, bferrors.ErrBranchNotFound))
	}
	return sha, nil
}
