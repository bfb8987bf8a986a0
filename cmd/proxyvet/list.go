package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/database"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored anonymous relays",
		Long: `List prints the relays verified anonymous by previous check runs,
most recently checked first.

Examples:
  # List stored relays
  proxyvet list

  # Bare endpoints only, ready to pipe into other tools
  proxyvet list --quiet

  # Show run history instead
  proxyvet list --runs 10`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().BoolP("quiet", "q", false,
		"Print bare endpoints only, one per line")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().Int("runs", 0,
		"Show the N most recent run records instead of relays")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	runs, err := cmd.Flags().GetInt("runs")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no relay store found (run 'proxyvet check' first): %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runs > 0 {
		return listRuns(ctx, cmd, store, runs, jsonOut)
	}
	return listRelays(ctx, cmd, store, quiet, jsonOut)
}

// listRelays prints the stored relays.
func listRelays(ctx context.Context, cmd *cobra.Command, store *database.Store, quiet, jsonOut bool) error {
	relays, err := store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored relays: %w", err)
	}

	out := cmd.OutOrStdout()

	if jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(relays)
	}

	if quiet {
		for _, relay := range relays {
			fmt.Fprintln(out, relay.Endpoint)
		}
		return nil
	}

	if len(relays) == 0 {
		fmt.Fprintln(out, "No relays stored. Run 'proxyvet check' to harvest and verify some.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tEXIT\tLAST CHECKED\tNOTE")
	for _, relay := range relays {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			relay.Endpoint,
			strings.Join(relay.OriginIPs, ","),
			relay.LastChecked.Format("2006-01-02 15:04"),
			relay.Reason,
		)
	}
	return w.Flush()
}

// listRuns prints the run history.
func listRuns(ctx context.Context, cmd *cobra.Command, store *database.Store, limit int, jsonOut bool) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}

	out := cmd.OutOrStdout()

	if jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tDURATION\tCANDIDATES\tANONYMOUS\tTRANSPARENT\tFAILED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
			run.Candidates,
			run.Anonymous,
			run.Transparent,
			run.Failed,
		)
	}
	return w.Flush()
}
