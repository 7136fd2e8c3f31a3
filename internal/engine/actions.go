package engine

import (
	"fmt"

	"branchflow.dev/branchflow/internal/branch"
)

// Action is the promotion decision for a single branch event. Exactly one
// action is selected per event; actions are never queued or batched.
type Action interface {
	isAction()
	// Describe returns a one-line human-readable form, used by dry runs.
	Describe() string
}

// CreateRelease cuts a release branch from a completed development branch.
type CreateRelease struct {
	FromDev   branch.Descriptor
	ReleaseID int
}

func (CreateRelease) isAction() {}

func (a CreateRelease) Describe() string {
	return fmt.Sprintf("create release branch r%d from %s", a.ReleaseID, a.FromDev.RawName)
}

// MergeToMaster tags a completed release and merges it into master.
type MergeToMaster struct {
	FromBranch branch.Descriptor
}

func (MergeToMaster) isAction() {}

func (a MergeToMaster) Describe() string {
	return fmt.Sprintf("tag %s and merge it into master", a.FromBranch.RawName)
}

// PropagateHotfix ships a completed hotfix into its parent release and the
// current development branch.
type PropagateHotfix struct {
	HotfixBranch  branch.Descriptor
	ParentRelease branch.Descriptor
}

func (PropagateHotfix) isAction() {}

func (a PropagateHotfix) Describe() string {
	return fmt.Sprintf("propagate %s into %s and the current development branch",
		a.HotfixBranch.RawName, a.ParentRelease.RawName)
}

// AwaitReleaseCompletion records that a hotfix's parent release is not yet
// marked complete; the master merge happens through the release's own event
// once it is tagged.
type AwaitReleaseCompletion struct {
	ParentRelease branch.Descriptor
}

func (AwaitReleaseCompletion) isAction() {}

func (a AwaitReleaseCompletion) Describe() string {
	return fmt.Sprintf("wait for %s to be marked complete", a.ParentRelease.RawName)
}

// Noop is the decision for branches with nothing to promote.
type Noop struct {
	Reason string
}

func (Noop) isAction() {}

func (a Noop) Describe() string {
	return "nothing to do: " + a.Reason
}
