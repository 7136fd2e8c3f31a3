// Package cli defines the branchflow command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var debugFlag bool

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "branchflow",
		Short: "Branchflow automates branch promotion through the GitFlow lifecycle",
		Long: `Branchflow automates promotion of branches through a GitFlow-like
lifecycle (development -> release -> master), gated on explicit completion
tags, and propagates hotfixes into both the release line and the active
development line without silently losing them.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}
