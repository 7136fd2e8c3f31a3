package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"branchflow.dev/branchflow/internal/branch"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <branch>",
		Short: "Show how a branch name classifies in the promotion lifecycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := branch.Classify(args[0])

			fmt.Printf("branch: %s\n", desc.RawName)
			fmt.Printf("kind:   %s\n", desc.Kind)
			switch desc.Kind {
			case branch.Development, branch.Release:
				fmt.Printf("sequence: %d\n", desc.SequenceID)
				fmt.Printf("completion tag: %s\n", desc.CompletionTagName())
			case branch.Hotfix:
				if desc.ParentReleaseID > 0 {
					fmt.Printf("parent release: %s\n", desc.ParentReleaseName())
				} else {
					fmt.Printf("parent release: unresolved (falls back to latest r* branch)\n")
				}
				fmt.Printf("completion tag: %s\n", desc.CompletionTagName())
			}
			return nil
		},
	}
}
