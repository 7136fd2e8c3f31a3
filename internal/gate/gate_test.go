package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"branchflow.dev/branchflow/internal/branch"
	bferrors "branchflow.dev/branchflow/internal/errors"
	"branchflow.dev/branchflow/internal/gate"
	"branchflow.dev/branchflow/testhelpers"
)

func TestIsComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("tag present", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d3")
		gw.SeedRemoteTag("d3-complete")

		complete, err := gate.IsComplete(ctx, branch.Classify("d3"), gw)
		require.NoError(t, err)
		require.True(t, complete)
	})

	t.Run("tag absent", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d3")

		complete, err := gate.IsComplete(ctx, branch.Classify("d3"), gw)
		require.NoError(t, err)
		require.False(t, complete)
	})

	t.Run("other branch tag does not open the gate", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d3")
		gw.SeedRemoteTag("d2-complete")

		complete, err := gate.IsComplete(ctx, branch.Classify("d3"), gw)
		require.NoError(t, err)
		require.False(t, complete)
	})

	t.Run("master is never gated", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()

		complete, err := gate.IsComplete(ctx, branch.Classify("master"), gw)
		require.NoError(t, err)
		require.True(t, complete)
		// Master must not touch the remote at all.
		require.Empty(t, gw.Ops)
	})

	t.Run("queries the remote every call", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("r1")

		desc := branch.Classify("r1")
		complete, err := gate.IsComplete(ctx, desc, gw)
		require.NoError(t, err)
		require.False(t, complete)

		gw.SeedRemoteTag("r1-complete")
		complete, err = gate.IsComplete(ctx, desc, gw)
		require.NoError(t, err)
		require.True(t, complete)
	})
}

func TestTagCommand(t *testing.T) {
	cmd := gate.TagCommand(branch.Classify("r2"), "origin")
	require.Equal(t, "git tag r2-complete && git push origin r2-complete", cmd)
}

func TestResolveParentRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("release token in the name wins", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("r1")
		gw.SeedBranch("r5")

		parent, err := gate.ResolveParentRelease(ctx, branch.Classify("hotfix/r1-login-fix"), gw)
		require.NoError(t, err)
		require.Equal(t, "r1", parent.RawName)
		// Name-based resolution must not hit the remote.
		require.Empty(t, gw.Ops)
	})

	t.Run("falls back to the highest release branch", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("r2")
		gw.SeedBranch("r10")
		gw.SeedBranch("r9")

		parent, err := gate.ResolveParentRelease(ctx, branch.Classify("hotfix/login-fix"), gw)
		require.NoError(t, err)
		require.Equal(t, "r10", parent.RawName)
	})

	t.Run("no release branch is a fatal error", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d1")

		_, err := gate.ResolveParentRelease(ctx, branch.Classify("hotfix/login-fix"), gw)
		require.ErrorIs(t, err, bferrors.ErrNoReleaseBranch)

		var nrb *bferrors.NoReleaseBranchError
		require.True(t, errors.As(err, &nrb))
		require.Equal(t, "hotfix/login-fix", nrb.HotfixBranch)
	})
}

func TestResolveCurrentDevBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("highest sequence wins", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d3")
		gw.SeedBranch("d12")
		gw.SeedBranch("d7")

		dev, err := gate.ResolveCurrentDevBranch(ctx, gw)
		require.NoError(t, err)
		require.Equal(t, "d12", dev.RawName)
	})

	t.Run("ignores lookalike branches", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()
		gw.SeedBranch("d2")
		gw.SeedBranch("dev99")
		gw.SeedBranch("d3x")

		dev, err := gate.ResolveCurrentDevBranch(ctx, gw)
		require.NoError(t, err)
		require.Equal(t, "d2", dev.RawName)
	})

	t.Run("no development branch", func(t *testing.T) {
		gw := testhelpers.NewFakeGateway()

		_, err := gate.ResolveCurrentDevBranch(ctx, gw)
		require.ErrorIs(t, err, bferrors.ErrNoDevelopmentBranch)
	})
}
