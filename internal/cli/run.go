package cli

import (
	"time"

	"github.com/spf13/cobra"

	"branchflow.dev/branchflow/internal/branch"
	"branchflow.dev/branchflow/internal/config"
	"branchflow.dev/branchflow/internal/gate"
	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/runtime"
)

func newRunCmd() *cobra.Command {
	var runID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [branch]",
		Short: "Process a branch event through the promotion lifecycle",
		Long: `Run classifies the branch, checks its completion gate and executes the
promotion action it selects: cutting a release from a completed development
branch, merging a completed release to master, or propagating a completed
hotfix into its release line and the active development branch.

Defaults to the current branch when no branch is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := runtime.NewContext(cmd.Context(), debugFlag)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Close() }()

			branchName := ""
			if len(args) > 0 {
				branchName = args[0]
			} else {
				branchName, err = git.CurrentBranch(ctx.RepoRoot)
				if err != nil {
					return err
				}
			}

			if dryRun {
				return dryRunEvent(ctx, branchName)
			}

			if runID == "" {
				runID = time.Now().Format("20060102150405")
			}

			// The working tree is serially shared; one action per repo.
			lock, err := runtime.AcquireRepoLock(config.LockPath(ctx.RepoRoot))
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			return ctx.Engine.ProcessEvent(ctx.Context, branchName, runID)
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "distinct identifier for this pipeline run (names the resolution branch on conflicts)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decide the promotion action without executing it")

	return cmd
}

// dryRunEvent reports what run would do, mutating nothing.
func dryRunEvent(ctx *runtime.Context, branchName string) error {
	if err := ctx.Gateway.FetchAll(ctx.Context); err != nil {
		return err
	}

	desc := branch.Classify(branchName)
	ctx.Splog.Info("Branch %s classifies as %s", desc.RawName, desc.Kind)

	if desc.Kind != branch.Unknown && desc.Kind != branch.Master {
		complete, err := gate.IsComplete(ctx.Context, desc, ctx.Gateway)
		if err != nil {
			return err
		}
		if !complete {
			ctx.Splog.Info("Gate closed: would remind the operator to run\n  %s",
				gate.TagCommand(desc, ctx.Config.Remote))
			return nil
		}
		ctx.Splog.Info("Gate open: %s exists", desc.CompletionTagName())
	}

	action, err := ctx.Engine.Decide(ctx.Context, desc)
	if err != nil {
		return err
	}
	ctx.Splog.Info("Would %s", action.Describe())
	return nil
}
