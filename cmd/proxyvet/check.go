package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/database"
	"github.com/mkosuda/proxyvet/internal/log"
	"github.com/mkosuda/proxyvet/internal/model"
	"github.com/mkosuda/proxyvet/internal/oracle"
	"github.com/mkosuda/proxyvet/internal/probe"
	"github.com/mkosuda/proxyvet/internal/relay"
	"github.com/mkosuda/proxyvet/internal/report"
	"github.com/mkosuda/proxyvet/internal/runner"
	"github.com/mkosuda/proxyvet/internal/source"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Harvest proxy relays and classify their anonymity",
		Long: `Check harvests candidate relays from the configured list sources,
deduplicates them, and probes each one through itself.

The probe is two-staged. First the relay fetches an IP echo oracle: if the
response carries our real address or more than one address, the relay is
transparent. Then the relay fetches a header echo oracle: if any known
proxy header carries our real address, the relay is transparent. Relays
passing both stages are anonymous and saved to the local store.

Examples:
  # Harvest the built-in sources and classify everything found
  proxyvet check

  # Re-verify the relays already in the store
  proxyvet check --from-store

  # Faster, more aggressive run
  proxyvet check --workers 50 --timeout 5s

  # Machine-readable output
  proxyvet check --json -o results.json

Sources file (.proxyvet) example:
  sources:
    - name: mylist
      url: https://example.com/proxies.txt
      kind: plain
    - name: geonode
      url: https://proxylist.geonode.com/api/proxy-list?limit=200
      kind: geonode`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	// Probe behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each probe request through a relay")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent probes")
	cmd.Flags().String("oracle", config.DefaultOriginOracleURL,
		"IP echo oracle URL")
	cmd.Flags().String("headers-oracle", "",
		"Header echo oracle URL (default: derived from --oracle)")

	// Harvest flags
	cmd.Flags().Duration("source-delay", config.DefaultSourceDelay,
		"Delay between list source fetches")
	cmd.Flags().StringP("config", "c", "",
		"Sources file path (default: .proxyvet in current or home directory)")

	// Store flags
	cmd.Flags().Bool("from-store", false,
		"Probe the stored relays instead of harvesting sources")
	cmd.Flags().Bool("no-store", false,
		"Do not persist results (mutually exclusive with --from-store)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCheck(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.OriginOracleURL, err = cmd.Flags().GetString("oracle")
	if err != nil {
		return nil, err
	}

	cfg.HeadersOracleURL, err = cmd.Flags().GetString("headers-oracle")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.SourceDelay, err = cmd.Flags().GetDuration("source-delay")
	if err != nil {
		return nil, err
	}

	cfg.SourcesFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the sources file. If the user explicitly specified a path,
	// error when it is missing; otherwise fall back to the built-in
	// source set.
	explicitPath := cfg.SourcesFilePath != ""
	sourcesPath := config.FindSourcesFile(cfg.SourcesFilePath)

	if sourcesPath != "" {
		cfg.Sources, err = config.LoadSourcesFile(sourcesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load sources file %s: %w", sourcesPath, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("sources file not found: %s", cfg.SourcesFilePath)
	}

	cfg.FromStore, err = cmd.Flags().GetBool("from-store")
	if err != nil {
		return nil, err
	}

	cfg.NoStore, err = cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir = config.XDGDataDir()
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCheck executes the full classification run.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startedAt := time.Now()

	// The store is needed to read candidates in --from-store mode and to
	// persist results unless --no-store was given.
	var store *database.Store
	if cfg.FromStore || !cfg.NoStore {
		var err error
		store, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Gather the candidate set.
	candidates, sources, err := gatherCandidates(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Probing %d candidate relays (workers: %d)...\n", len(candidates), cfg.Workers)

	factory := relay.NewClientFactory(cfg.Timeout)
	oracleClient := oracle.NewClient(cfg.OriginOracleURL, cfg.HeadersOracle(), cfg.UserAgent)

	// Resolve our real address directly, without a relay. The run
	// continues in degraded mode when the oracle is unreachable.
	identity := oracle.NewResolver(oracleClient, factory.Direct(), logger).Resolve(ctx)
	if !identity.Known() {
		fmt.Fprintln(os.Stderr, "Warning: could not resolve own address; identity-based checks disabled for this run")
	}

	// Collect anonymous relays for the report while forwarding them to
	// the store.
	sink := &collectingSink{}
	if store != nil && !cfg.NoStore {
		sink.forward = store
	}

	r := runner.New(
		probe.New(oracleClient, factory, logger),
		runner.WithConcurrency(cfg.Workers),
		runner.WithSink(sink),
		runner.WithLogger(logger),
	)

	counters, runErr := r.Run(ctx, candidates, identity)
	finishedAt := time.Now()

	summary := report.NewSummary(startedAt, finishedAt, identity, sources, len(candidates), counters)
	summary.Relays = sink.collected()

	if store != nil && !cfg.NoStore {
		record := database.RunRecord{
			StartedAt:   startedAt,
			FinishedAt:  finishedAt,
			Candidates:  int64(len(candidates)),
			Anonymous:   counters.Anonymous,
			Transparent: counters.Transparent,
			Failed:      counters.Failed,
		}
		if err := store.SaveRun(ctx, record); err != nil {
			logger.Error("failed to save run record", "error", err)
		}
	}

	if err := outputReport(cfg, summary); err != nil {
		return err
	}

	return runErr
}

// gatherCandidates returns the deduplicated candidate set and the number
// of sources harvested (zero in --from-store mode).
func gatherCandidates(ctx context.Context, cfg *config.Config, store *database.Store, logger *slog.Logger) ([]model.Endpoint, int, error) {
	if cfg.FromStore {
		candidates, err := store.Endpoints(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read stored relays: %w", err)
		}
		logger.Info("re-verifying stored relays", "candidates", len(candidates))
		return candidates, 0, nil
	}

	specs := cfg.Sources.Specs()
	fmt.Printf("Harvesting %d list sources...\n", len(specs))

	httpc := &http.Client{Timeout: cfg.Timeout}
	harvester := source.NewHarvester(specs, httpc, cfg.UserAgent, cfg.SourceDelay, logger)

	candidates, err := harvester.Harvest(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("harvest failed: %w", err)
	}
	return candidates, len(specs), nil
}

// collectingSink records anonymous relays for the report and forwards
// them to the store when one is configured.
type collectingSink struct {
	forward runner.Sink

	mu     sync.Mutex
	relays []model.ProbeResult
}

// Put records the result and forwards it.
func (s *collectingSink) Put(ctx context.Context, result model.ProbeResult) error {
	s.mu.Lock()
	s.relays = append(s.relays, result)
	s.mu.Unlock()

	if s.forward != nil {
		return s.forward.Put(ctx, result)
	}
	return nil
}

// collected returns the recorded relays in endpoint order.
func (s *collectingSink) collected() []model.ProbeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	relays := make([]model.ProbeResult, len(s.relays))
	copy(relays, s.relays)
	sort.Slice(relays, func(i, j int) bool { return relays[i].Endpoint < relays[j].Endpoint })
	return relays
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, summary *report.Summary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
