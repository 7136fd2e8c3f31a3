// Package branch classifies branch names into typed descriptors.
//
// The lifecycle grammar is fixed and case-sensitive: "master", development
// branches "d<n>", release branches "r<n>", and hotfix branches
// "hotfix/<anything>".
package branch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies where a branch sits in the promotion lifecycle.
type Kind int

const (
	// Unknown is any branch name that matches no lifecycle grammar.
	Unknown Kind = iota
	// Development is a d<n> branch.
	Development
	// Release is an r<n> branch.
	Release
	// Hotfix is a hotfix/* branch.
	Hotfix
	// Master is the production branch.
	Master
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Development:
		return "development"
	case Release:
		return "release"
	case Hotfix:
		return "hotfix"
	case Master:
		return "master"
	default:
		return "unknown"
	}
}

// HotfixPrefix is the namespace prefix for hotfix branches.
const HotfixPrefix = "hotfix/"

var (
	developmentRegex  = regexp.MustCompile(`^d(\d+)$`)
	releaseRegex      = regexp.MustCompile(`^r(\d+)$`)
	releaseTokenRegex = regexp.MustCompile(`r(\d+)`)
)

// Descriptor is an immutable classification of a single branch name.
// A zero ParentReleaseID on a Hotfix descriptor means the parent release
// could not be resolved from the name and must be filled in by the
// fallback lookup (gate.ResolveParentRelease).
type Descriptor struct {
	RawName         string
	Kind            Kind
	SequenceID      int
	ParentReleaseID int
}

// Classify parses a branch name into a Descriptor. It is a pure function
// over the name string and never touches the repository.
func Classify(name string) Descriptor {
	if name == "master" {
		return Descriptor{RawName: name, Kind: Master}
	}

	if m := developmentRegex.FindStringSubmatch(name); m != nil {
		seq, _ := strconv.Atoi(m[1])
		return Descriptor{RawName: name, Kind: Development, SequenceID: seq}
	}

	if m := releaseRegex.FindStringSubmatch(name); m != nil {
		seq, _ := strconv.Atoi(m[1])
		return Descriptor{RawName: name, Kind: Release, SequenceID: seq}
	}

	if rest, ok := strings.CutPrefix(name, HotfixPrefix); ok && rest != "" {
		d := Descriptor{RawName: name, Kind: Hotfix}
		if m := releaseTokenRegex.FindStringSubmatch(rest); m != nil {
			d.ParentReleaseID, _ = strconv.Atoi(m[1])
		}
		return d
	}

	return Descriptor{RawName: name, Kind: Unknown}
}

// ShortName returns the branch name without the hotfix/ prefix for Hotfix
// descriptors, and the raw name for everything else.
func (d Descriptor) ShortName() string {
	if d.Kind == Hotfix {
		return strings.TrimPrefix(d.RawName, HotfixPrefix)
	}
	return d.RawName
}

// CompletionTagName returns the tag name that marks this branch as ready
// for promotion.
func (d Descriptor) CompletionTagName() string {
	return d.RawName + "-complete"
}

// ReleaseName returns the release branch name a development branch promotes
// into, e.g. d7 -> r7. Only meaningful for Development descriptors.
func (d Descriptor) ReleaseName() string {
	return fmt.Sprintf("r%d", d.SequenceID)
}

// ParentReleaseName returns the branch name of the hotfix's parent release.
// Only meaningful for Hotfix descriptors with a resolved ParentReleaseID.
func (d Descriptor) ParentReleaseName() string {
	return fmt.Sprintf("r%d", d.ParentReleaseID)
}
