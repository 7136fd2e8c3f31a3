package propagate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/output"
	"branchflow.dev/branchflow/internal/propagate"
	"branchflow.dev/branchflow/testhelpers"
)

func newDetector(gw *testhelpers.FakeGateway) *propagate.Detector {
	return propagate.NewDetector(gw, output.NewSplog(false))
}

func TestPropagateCleanApply(t *testing.T) {
	gw := testhelpers.NewFakeGateway()
	devSha := gw.SeedBranch("d3")
	hotfixSha := gw.SeedBranch("hotfix/r1-fix")

	result := newDetector(gw).Propagate(context.Background(), hotfixSha, "d3", "run1")

	require.Equal(t, propagate.OutcomeApplied, result.Outcome, gw.OpLog())
	require.Nil(t, result.Report)
	require.NoError(t, result.Err)

	// The pick advanced d3 and the new tip was pushed.
	require.NotEqual(t, devSha, gw.Branches["d3"])
	require.Equal(t, gw.Branches["d3"], gw.RemoteBranches["d3"])

	require.Equal(t, []string{
		"checkout d3",
		"trial-merge " + hotfixSha + " d3",
		"abort-merge",
		"cherry-pick " + hotfixSha + " d3",
		"push d3",
	}, gw.Ops)
}

func TestPropagateConflictMaterializesResolutionBranch(t *testing.T) {
	gw := testhelpers.NewFakeGateway()
	devSha := gw.SeedBranch("d3")
	hotfixSha := gw.SeedBranch("hotfix/r1-fix")
	gw.MarkConflict(hotfixSha, "d3", "pkg/auth/login.go", "pkg/auth/session.go")

	result := newDetector(gw).Propagate(context.Background(), hotfixSha, "d3", "run42")

	require.Equal(t, propagate.OutcomeConflict, result.Outcome, gw.OpLog())
	require.NotNil(t, result.Report)
	require.Equal(t, hotfixSha, result.Report.SourceRef)
	require.Equal(t, "d3", result.Report.TargetBranch)
	require.Equal(t, "merge-hotfix-to-dev-run42", result.Report.ResolutionBranch)
	require.Equal(t, []string{"pkg/auth/login.go", "pkg/auth/session.go"}, result.Report.ConflictingPaths)

	// The development branch itself is untouched, locally and on the remote.
	require.Equal(t, devSha, gw.Branches["d3"])
	require.Equal(t, devSha, gw.RemoteBranches["d3"])

	// The resolution branch carries the seeded resolution commit and was
	// pushed for human remediation.
	require.NotEqual(t, devSha, gw.Branches["merge-hotfix-to-dev-run42"])
	require.Contains(t, gw.RemoteBranches, "merge-hotfix-to-dev-run42")
}

func TestPropagateTrialLeavesNoResidue(t *testing.T) {
	gw := testhelpers.NewFakeGateway()
	gw.SeedBranch("d3")
	hotfixSha := gw.SeedBranch("hotfix/r1-fix")
	gw.MarkConflict(hotfixSha, "d3", "pkg/auth/login.go")

	newDetector(gw).Propagate(context.Background(), hotfixSha, "d3", "run1")

	// Every trial merge is immediately aborted, conflict or not.
	for i, op := range gw.Ops {
		if op == "trial-merge "+hotfixSha+" d3" {
			require.Less(t, i+1, len(gw.Ops), gw.OpLog())
			require.Equal(t, "abort-merge", gw.Ops[i+1], gw.OpLog())
		}
	}
}

func TestPropagatePushFailure(t *testing.T) {
	gw := testhelpers.NewFakeGateway()
	gw.SeedBranch("d3")
	hotfixSha := gw.SeedBranch("hotfix/r1-fix")
	pushErr := errors.New("remote hung up")
	gw.FailOn["push d3"] = pushErr

	result := newDetector(gw).Propagate(context.Background(), hotfixSha, "d3", "run1")

	require.Equal(t, propagate.OutcomeFailed, result.Outcome)
	require.ErrorIs(t, result.Err, pushErr)
	require.Nil(t, result.Report)
}

func TestPropagateTrialFailureIsNotAConflict(t *testing.T) {
	gw := testhelpers.NewFakeGateway()
	devSha := gw.SeedBranch("d3")
	hotfixSha := gw.SeedBranch("hotfix/r1-fix")
	trialErr := errors.New("index locked")
	gw.FailOn["trial-merge"] = trialErr

	result := newDetector(gw).Propagate(context.Background(), hotfixSha, "d3", "run1")

	require.Equal(t, propagate.OutcomeFailed, result.Outcome)
	require.ErrorIs(t, result.Err, trialErr)
	require.NotErrorIs(t, result.Err, bferrors.ErrMergeConflict)

	// A failed trial must not create a resolution branch.
	require.NotContains(t, gw.Branches, "merge-hotfix-to-dev-run1")
	require.Equal(t, devSha, gw.Branches["d3"])
}

func TestResolutionBranchName(t *testing.T) {
	require.Equal(t, "merge-hotfix-to-dev-20240102030405", propagate.ResolutionBranchName("20240102030405"))
}
