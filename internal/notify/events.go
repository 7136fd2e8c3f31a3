// Package notify defines the structured events the promotion engine emits
// at every decision point, and the notifier implementations that forward
// them to external consumers.
package notify

import (
	"fmt"
	"strings"

	"branchflow.dev/branchflow/internal/propagate"
)

// EventKind identifies an event in the promotion catalogue.
type EventKind string

const (
	KindTagReminder               EventKind = "tag_reminder"
	KindReleaseCreated            EventKind = "release_created"
	KindReleaseDeployed           EventKind = "release_deployed"
	KindAwaitingReleaseCompletion EventKind = "awaiting_release_completion"
	KindHotfixPropagated          EventKind = "hotfix_propagated"
	KindConflictDetected          EventKind = "conflict_detected"
	KindPropagationFailed         EventKind = "propagation_failed"
)

// Event is a single structured promotion event. Summary returns the
// human-readable form, which always carries literal, copy-pasteable
// next-step instructions where there are any.
type Event interface {
	Kind() EventKind
	Summary() string
}

// TagReminder tells the operator exactly which tag to create before the
// branch can be promoted.
type TagReminder struct {
	BranchKind string `json:"branchKind"`
	BranchName string `json:"branchName"`
	TagCommand string `json:"tagCommand"`
}

func (e TagReminder) Kind() EventKind { return KindTagReminder }

func (e TagReminder) Summary() string {
	return fmt.Sprintf("Branch %s (%s) is not marked complete. To promote it, run:\n  %s",
		e.BranchName, e.BranchKind, e.TagCommand)
}

// ReleaseCreated reports a new release branch cut from a development branch.
type ReleaseCreated struct {
	FromDev    string `json:"fromDev"`
	NewRelease string `json:"newRelease"`
}

func (e ReleaseCreated) Kind() EventKind { return KindReleaseCreated }

func (e ReleaseCreated) Summary() string {
	return fmt.Sprintf("Created release branch %s from %s", e.NewRelease, e.FromDev)
}

// ReleaseDeployed reports a release branch merged to master and tagged.
type ReleaseDeployed struct {
	ReleaseBranch string `json:"releaseBranch"`
	TagName       string `json:"tagName"`
}

func (e ReleaseDeployed) Kind() EventKind { return KindReleaseDeployed }

func (e ReleaseDeployed) Summary() string {
	return fmt.Sprintf("Merged %s into master (tagged %s)", e.ReleaseBranch, e.TagName)
}

// AwaitingReleaseCompletion reports that a hotfix landed in its parent
// release, which is not yet marked complete. Informational, not an error.
type AwaitingReleaseCompletion struct {
	ParentRelease string `json:"parentRelease"`
	TagCommand    string `json:"tagCommand"`
}

func (e AwaitingReleaseCompletion) Kind() EventKind { return KindAwaitingReleaseCompletion }

func (e AwaitingReleaseCompletion) Summary() string {
	return fmt.Sprintf("Hotfix merged into %s; master merge waits until the release is marked complete:\n  %s",
		e.ParentRelease, e.TagCommand)
}

// HotfixPropagated reports a hotfix cleanly applied to the current
// development branch.
type HotfixPropagated struct {
	TargetDev string `json:"targetDev"`
}

func (e HotfixPropagated) Kind() EventKind { return KindHotfixPropagated }

func (e HotfixPropagated) Summary() string {
	return fmt.Sprintf("Hotfix propagated to development branch %s", e.TargetDev)
}

// ConflictDetected reports a hotfix that conflicts with the development
// branch, resolved by pushing a resolution branch for human remediation.
type ConflictDetected struct {
	Report *propagate.ConflictReport `json:"report"`
}

func (e ConflictDetected) Kind() EventKind { return KindConflictDetected }

func (e ConflictDetected) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hotfix conflicts with %s. Resolve on branch %s:\n  git fetch && git checkout %s",
		e.Report.TargetBranch, e.Report.ResolutionBranch, e.Report.ResolutionBranch)
	if len(e.Report.ConflictingPaths) > 0 {
		fmt.Fprintf(&b, "\nConflicting paths:")
		for _, p := range e.Report.ConflictingPaths {
			fmt.Fprintf(&b, "\n  %s", p)
		}
	}
	return b.String()
}

// PropagationFailed reports a hotfix-to-development propagation that failed
// for a reason other than a conflict. Needs manual follow-up.
type PropagationFailed struct {
	TargetDev string `json:"targetDev"`
	Err       string `json:"error"`
}

func (e PropagationFailed) Kind() EventKind { return KindPropagationFailed }

func (e PropagationFailed) Summary() string {
	return fmt.Sprintf("Failed to propagate hotfix to %s: %s", e.TargetDev, e.Err)
}
