// Package propagate delivers a hotfix commit into a development branch,
// detecting conflicts with a trial merge and materializing a resolution
// branch when the change does not apply cleanly.
package propagate

import (
	"context"
	"errors"
	"fmt"

	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/output"
)

// Outcome is the terminal state of a propagation attempt.
type Outcome int

const (
	// OutcomeApplied means the commit was cherry-picked onto the target
	// and pushed.
	OutcomeApplied Outcome = iota
	// OutcomeConflict means the commit conflicts with the target; a
	// resolution branch was pushed for human remediation and the target
	// itself was not mutated.
	OutcomeConflict
	// OutcomeFailed means a version-control operation failed for a reason
	// other than a conflict. Needs manual follow-up; nothing is retried.
	OutcomeFailed
)

// ConflictReport describes a detected conflict and where a human can go to
// resolve it.
type ConflictReport struct {
	SourceRef        string   `json:"sourceRef"`
	TargetBranch     string   `json:"targetBranch"`
	ConflictingPaths []string `json:"conflictingPaths"`
	ResolutionBranch string   `json:"resolutionBranch"`
}

// Result is the three-outcome result of Propagate.
type Result struct {
	Outcome Outcome
	Report  *ConflictReport
	Err     error
}

// Applied returns a clean-application result.
func Applied() Result {
	return Result{Outcome: OutcomeApplied}
}

// ConflictDetected returns a conflict result carrying the report.
func ConflictDetected(report *ConflictReport) Result {
	return Result{Outcome: OutcomeConflict, Report: report}
}

// Failed returns a failure result carrying the underlying error.
func Failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}

// ResolutionBranchName returns the deterministic name of the resolution
// branch for a pipeline run.
func ResolutionBranchName(runID string) string {
	return "merge-hotfix-to-dev-" + runID
}

// Detector performs trial merges and materializes resolution branches. It
// is stateless; the caller supplies a distinct runID per pipeline execution
// so resolution branch names never collide.
type Detector struct {
	gw    git.Gateway
	splog *output.Splog
}

// NewDetector creates a Detector over the given gateway.
func NewDetector(gw git.Gateway, splog *output.Splog) *Detector {
	return &Detector{gw: gw, splog: splog}
}

// Propagate integrates sourceCommit into targetBranch.
//
// A non-committing trial merge decides the path: clean trials are followed
// by a real cherry-pick (keeping history linear on development branches)
// and a push; conflicted trials leave the target untouched and instead push
// a resolution branch seeded with the conflicting cherry-pick. The trial
// itself never leaves residue on the target, whatever the outcome.
func (d *Detector) Propagate(ctx context.Context, sourceCommit, targetBranch, runID string) Result {
	if err := d.gw.Checkout(ctx, targetBranch); err != nil {
		return Failed(err)
	}

	trialErr := d.gw.Merge(ctx, sourceCommit, targetBranch, git.MergeTrialNoCommit)
	if trialErr == nil {
		return d.applyClean(ctx, sourceCommit, targetBranch)
	}
	if !errors.Is(trialErr, bferrors.ErrMergeConflict) {
		return Failed(trialErr)
	}

	d.splog.Debug("trial merge of %s into %s conflicted, building resolution branch", sourceCommit, targetBranch)
	return d.materializeResolution(ctx, sourceCommit, targetBranch, runID)
}

func (d *Detector) applyClean(ctx context.Context, sourceCommit, targetBranch string) Result {
	if err := d.gw.CherryPick(ctx, sourceCommit, targetBranch); err != nil {
		if errors.Is(err, bferrors.ErrMergeConflict) {
			// The trial merge was clean but the pick still stopped on a
			// conflict. Restore the target before surfacing.
			_ = d.gw.AbortCherryPick(ctx)
		}
		return Failed(err)
	}
	if err := d.gw.Push(ctx, targetBranch); err != nil {
		return Failed(err)
	}
	return Applied()
}

// materializeResolution creates the resolution branch at the target's tip,
// seeds it with the conflicting cherry-pick, commits whatever is stageable
// (an empty placeholder if nothing is) and pushes unconditionally. A pushed
// branch with visible conflicts is the deliverable.
func (d *Detector) materializeResolution(ctx context.Context, sourceCommit, targetBranch, runID string) Result {
	resolution := ResolutionBranchName(runID)

	if err := d.gw.CreateBranch(ctx, resolution, targetBranch); err != nil {
		return Failed(err)
	}

	var paths []string
	pickErr := d.gw.CherryPick(ctx, sourceCommit, resolution)
	switch {
	case pickErr == nil:
		// The pick applied on the resolution branch even though the merge
		// would not; the branch already carries the change.
	case errors.Is(pickErr, bferrors.ErrMergeConflict):
		unmerged, err := d.gw.DiffUnmergedPaths(ctx)
		if err != nil {
			return Failed(err)
		}
		paths = unmerged

		message := fmt.Sprintf("Seed conflict resolution: %s onto %s", sourceCommit, targetBranch)
		if err := d.gw.StageAllAndCommit(ctx, message); err != nil {
			return Failed(err)
		}
	default:
		return Failed(pickErr)
	}

	if err := d.gw.Push(ctx, resolution); err != nil {
		return Failed(err)
	}

	return ConflictDetected(&ConflictReport{
		SourceRef:        sourceCommit,
		TargetBranch:     targetBranch,
		ConflictingPaths: paths,
		ResolutionBranch: resolution,
	})
}
