package engine

import (
	"context"
	"errors"
	"fmt"

	"branchflow.dev/branchflow/internal/branch"
	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/gate"
	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/notify"
	"branchflow.dev/branchflow/internal/propagate"
)

// executePropagateHotfix runs the dual-propagation protocol:
//
//  1. Tag the hotfix head as the immutable record of what shipped.
//  2. Merge the hotfix into its parent release and push. The release line
//     is the primary target; failure here is fatal to the whole action.
//  3. Re-check the parent release's gate: already complete means the
//     release goes to master right now, otherwise the master merge waits
//     for the release's own event.
//  4. Propagate into the current development branch. This path is
//     independent of steps 2-3 and never rolls them back.
func (e *Engine) executePropagateHotfix(ctx context.Context, a PropagateHotfix, runID string) error {
	hotfix := a.HotfixBranch
	parent := a.ParentRelease

	if err := e.gw.Checkout(ctx, hotfix.RawName); err != nil {
		return err
	}

	shipTag := fmt.Sprintf("hotfix-%s-%s", hotfix.ShortName(), e.timestamp())
	if err := e.gw.Tag(ctx, shipTag, hotfix.RawName, fmt.Sprintf("Hotfix %s shipped", hotfix.RawName)); err != nil {
		return err
	}
	if err := e.gw.Push(ctx, shipTag); err != nil {
		return err
	}

	if err := e.gw.Merge(ctx, hotfix.RawName, parent.RawName, git.MergeNoFastForward); err != nil {
		return err
	}
	if err := e.gw.Push(ctx, parent.RawName); err != nil {
		return err
	}

	var releaseErr error
	complete, err := gate.IsComplete(ctx, parent, e.gw)
	switch {
	case err != nil:
		releaseErr = err
	case complete:
		releaseErr = e.executeMergeToMaster(ctx, MergeToMaster{FromBranch: parent})
	default:
		e.notifier.Emit(notify.AwaitingReleaseCompletion{
			ParentRelease: parent.RawName,
			TagCommand:    gate.TagCommand(parent, e.remote),
		})
	}

	devErr := e.propagateToDev(ctx, hotfix, runID)

	if releaseErr != nil {
		return releaseErr
	}
	return devErr
}

// propagateToDev delivers the hotfix head into the development branch with
// the highest sequence number on the remote.
func (e *Engine) propagateToDev(ctx context.Context, hotfix branch.Descriptor, runID string) error {
	dev, err := gate.ResolveCurrentDevBranch(ctx, e.gw)
	if err != nil {
		if errors.Is(err, bferrors.ErrNoDevelopmentBranch) {
			e.notifier.Emit(notify.PropagationFailed{Err: err.Error()})
		}
		return err
	}

	sha, err := e.gw.CurrentHeadCommit(ctx, hotfix.RawName)
	if err != nil {
		return err
	}

	result := e.detector.Propagate(ctx, sha, dev.RawName, runID)
	switch result.Outcome {
	case propagate.OutcomeApplied:
		e.notifier.Emit(notify.HotfixPropagated{TargetDev: dev.RawName})
		return nil
	case propagate.OutcomeConflict:
		// A pushed resolution branch plus this event is the deliverable;
		// a conflict is a handled outcome, not a failure.
		e.notifier.Emit(notify.ConflictDetected{Report: result.Report})
		return nil
	default:
		e.notifier.Emit(notify.PropagationFailed{TargetDev: dev.RawName, Err: result.Err.Error()})
		return result.Err
	}
}
