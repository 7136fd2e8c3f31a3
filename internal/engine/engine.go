// Package engine implements the branch-promotion state machine: it
// classifies an inbound branch event, checks the completion gate, decides
// exactly one promotion action and executes it through the version-control
// gateway, emitting one structured event per decision point.
package engine

import (
	"context"
	"fmt"
	"time"

	"branchflow.dev/branchflow/internal/branch"
	"branchflow.dev/branchflow/internal/gate"
	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/notify"
	"branchflow.dev/branchflow/internal/output"
	"branchflow.dev/branchflow/internal/propagate"
)

// artifactTimestampFormat is the timestamp embedded in release and hotfix
// ship tags.
const artifactTimestampFormat = "20060102.150405"

// Engine drives promotion actions. One engine processes one event at a
// time; the underlying working tree is a serially shared resource, so the
// caller serializes access per repository.
type Engine struct {
	gw       git.Gateway
	notifier notify.Notifier
	splog    *output.Splog
	detector *propagate.Detector
	remote   string
	now      func() time.Time
}

// NewEngine creates an engine over the given gateway and notifier.
func NewEngine(gw git.Gateway, notifier notify.Notifier, splog *output.Splog, remote string) *Engine {
	return &Engine{
		gw:       gw,
		notifier: notifier,
		splog:    splog,
		detector: propagate.NewDetector(gw, splog),
		remote:   remote,
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests to make artifact
// tag names deterministic.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) timestamp() string {
	return e.now().Format(artifactTimestampFormat)
}

// ProcessEvent handles one branch event end to end: fetch, classify, gate,
// decide, execute. A closed gate emits a TagReminder and returns nil; the
// event is handled-but-incomplete, not an error.
func (e *Engine) ProcessEvent(ctx context.Context, branchName, runID string) error {
	if err := e.gw.FetchAll(ctx); err != nil {
		return err
	}

	desc := branch.Classify(branchName)
	e.splog.Debug("classified %s as %s", branchName, desc.Kind)

	if desc.Kind != branch.Unknown && desc.Kind != branch.Master {
		complete, err := gate.IsComplete(ctx, desc, e.gw)
		if err != nil {
			return err
		}
		if !complete {
			e.notifier.Emit(notify.TagReminder{
				BranchKind: desc.Kind.String(),
				BranchName: desc.RawName,
				TagCommand: gate.TagCommand(desc, e.remote),
			})
			return nil
		}
	}

	action, err := e.Decide(ctx, desc)
	if err != nil {
		return err
	}
	return e.Execute(ctx, action, runID)
}

// Decide selects the promotion action for a branch whose gate is open.
// For hotfixes the parent release is resolved here, exactly once per
// event and before any mutation, so a resolution failure halts the action
// with the repository untouched.
func (e *Engine) Decide(ctx context.Context, desc branch.Descriptor) (Action, error) {
	switch desc.Kind {
	case branch.Development:
		return CreateRelease{FromDev: desc, ReleaseID: desc.SequenceID}, nil
	case branch.Release:
		return MergeToMaster{FromBranch: desc}, nil
	case branch.Hotfix:
		parent, err := gate.ResolveParentRelease(ctx, desc, e.gw)
		if err != nil {
			return nil, err
		}
		return PropagateHotfix{HotfixBranch: desc, ParentRelease: parent}, nil
	case branch.Master:
		return Noop{Reason: "master is the terminal stage"}, nil
	default:
		return Noop{Reason: fmt.Sprintf("branch %s matches no lifecycle grammar", desc.RawName)}, nil
	}
}

// Execute performs the action's side effects. Nothing is retried and
// partial progress is never rolled back: every sub-step that succeeded
// stays durable so a human resuming after a failure sees exactly how far
// automation got.
func (e *Engine) Execute(ctx context.Context, action Action, runID string) error {
	switch a := action.(type) {
	case CreateRelease:
		return e.executeCreateRelease(ctx, a)
	case MergeToMaster:
		return e.executeMergeToMaster(ctx, a)
	case PropagateHotfix:
		return e.executePropagateHotfix(ctx, a, runID)
	case AwaitReleaseCompletion:
		e.notifier.Emit(notify.AwaitingReleaseCompletion{
			ParentRelease: a.ParentRelease.RawName,
			TagCommand:    gate.TagCommand(a.ParentRelease, e.remote),
		})
		return nil
	case Noop:
		e.splog.Info("%s", a.Describe())
		return nil
	default:
		return fmt.Errorf("unhandled action type %T", action)
	}
}

// executeCreateRelease cuts r{n} from the current head of d{n} and pushes it.
func (e *Engine) executeCreateRelease(ctx context.Context, a CreateRelease) error {
	releaseName := a.FromDev.ReleaseName()

	if err := e.gw.Checkout(ctx, a.FromDev.RawName); err != nil {
		return err
	}
	if err := e.gw.CreateBranch(ctx, releaseName, a.FromDev.RawName); err != nil {
		return err
	}
	if err := e.gw.Push(ctx, releaseName); err != nil {
		return err
	}

	e.notifier.Emit(notify.ReleaseCreated{FromDev: a.FromDev.RawName, NewRelease: releaseName})
	return nil
}

// executeMergeToMaster creates the immutable release tag, merges the
// release into master without fast-forward, and pushes master.
func (e *Engine) executeMergeToMaster(ctx context.Context, a MergeToMaster) error {
	release := a.FromBranch.RawName
	tagName := fmt.Sprintf("release-%s-%s", release, e.timestamp())

	if err := e.gw.Checkout(ctx, release); err != nil {
		return err
	}
	if err := e.gw.Tag(ctx, tagName, release, fmt.Sprintf("Release %s", release)); err != nil {
		return err
	}
	if err := e.gw.Push(ctx, tagName); err != nil {
		return err
	}
	if err := e.gw.Merge(ctx, release, "master", git.MergeNoFastForward); err != nil {
		return err
	}
	if err := e.gw.Push(ctx, "master"); err != nil {
		return err
	}

	e.notifier.Emit(notify.ReleaseDeployed{ReleaseBranch: release, TagName: tagName})
	return nil
}
