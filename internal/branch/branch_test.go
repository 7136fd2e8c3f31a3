package branch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"branchflow.dev/branchflow/internal/branch"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected branch.Descriptor
	}{
		{"master", branch.Descriptor{RawName: "master", Kind: branch.Master}},
		{"d1", branch.Descriptor{RawName: "d1", Kind: branch.Development, SequenceID: 1}},
		{"d42", branch.Descriptor{RawName: "d42", Kind: branch.Development, SequenceID: 42}},
		{"r1", branch.Descriptor{RawName: "r1", Kind: branch.Release, SequenceID: 1}},
		{"r207", branch.Descriptor{RawName: "r207", Kind: branch.Release, SequenceID: 207}},
		{"hotfix/r1-login-fix", branch.Descriptor{RawName: "hotfix/r1-login-fix", Kind: branch.Hotfix, ParentReleaseID: 1}},
		{"hotfix/fix-for-r12", branch.Descriptor{RawName: "hotfix/fix-for-r12", Kind: branch.Hotfix, ParentReleaseID: 12}},
		{"hotfix/login-fix", branch.Descriptor{RawName: "hotfix/login-fix", Kind: branch.Hotfix}},
		// Near misses must stay unknown
		{"d1x", branch.Descriptor{RawName: "d1x", Kind: branch.Unknown}},
		{"dev1", branch.Descriptor{RawName: "dev1", Kind: branch.Unknown}},
		{"d", branch.Descriptor{RawName: "d", Kind: branch.Unknown}},
		{"r", branch.Descriptor{RawName: "r", Kind: branch.Unknown}},
		{"R1", branch.Descriptor{RawName: "R1", Kind: branch.Unknown}},
		{"hotfix/", branch.Descriptor{RawName: "hotfix/", Kind: branch.Unknown}},
		{"hotfix", branch.Descriptor{RawName: "hotfix", Kind: branch.Unknown}},
		{"Master", branch.Descriptor{RawName: "Master", Kind: branch.Unknown}},
		{"feature/login", branch.Descriptor{RawName: "feature/login", Kind: branch.Unknown}},
		{"", branch.Descriptor{RawName: "", Kind: branch.Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, branch.Classify(tt.name))
		})
	}
}

func TestClassifyHotfixFirstReleaseTokenWins(t *testing.T) {
	d := branch.Classify("hotfix/r3-then-r9")
	require.Equal(t, branch.Hotfix, d.Kind)
	require.Equal(t, 3, d.ParentReleaseID)
}

func TestShortName(t *testing.T) {
	require.Equal(t, "r1-login-fix", branch.Classify("hotfix/r1-login-fix").ShortName())
	require.Equal(t, "d3", branch.Classify("d3").ShortName())
}

func TestDerivedNames(t *testing.T) {
	dev := branch.Classify("d7")
	require.Equal(t, "r7", dev.ReleaseName())
	require.Equal(t, "d7-complete", dev.CompletionTagName())

	hotfix := branch.Classify("hotfix/r2-crash")
	require.Equal(t, "r2", hotfix.ParentReleaseName())
	require.Equal(t, "hotfix/r2-crash-complete", hotfix.CompletionTagName())
}
