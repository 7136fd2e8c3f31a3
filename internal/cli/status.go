package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"branchflow.dev/branchflow/internal/branch"
	"branchflow.dev/branchflow/internal/gate"
	"branchflow.dev/branchflow/internal/output"
	"branchflow.dev/branchflow/internal/runtime"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List lifecycle branches on the remote and their completion-gate state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.NewContext(cmd.Context(), debugFlag)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Close() }()

			if err := ctx.Gateway.FetchAll(ctx.Context); err != nil {
				return err
			}

			names, err := ctx.Gateway.ListRemoteBranches(ctx.Context, "")
			if err != nil {
				return err
			}
			sort.Strings(names)

			for _, name := range names {
				desc := branch.Classify(name)
				switch desc.Kind {
				case branch.Unknown:
					continue
				case branch.Master:
					ctx.Splog.Info("%s  (%s)", output.BranchStyle(name), desc.Kind)
					continue
				}

				complete, err := gate.IsComplete(ctx.Context, desc, ctx.Gateway)
				if err != nil {
					return err
				}
				state := output.DimStyle("awaiting " + desc.CompletionTagName())
				if complete {
					state = "complete"
				}
				ctx.Splog.Info("%s  (%s, %s)", output.BranchStyle(name), desc.Kind, state)
			}
			return nil
		},
	}
}
