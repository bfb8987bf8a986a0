// Package main provides the entry point for the proxyvet CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for proxyvet.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxyvet",
		Short: "Anonymity checker for free proxy relays",
		Long: `Proxyvet harvests free proxy relays from public list sources and
classifies each one by whether it hides the client's real address.

Every candidate is probed through itself: a request to an IP echo oracle
reveals which address the relay exposes, and a header echo oracle reveals
whether the relay forwards the client's address in proxy headers. Relays
verified anonymous are stored for reuse.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
