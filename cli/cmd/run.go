package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/stratalog-io/welldex/adapter"
	"github.com/stratalog-io/welldex/adapter/redis"
	"github.com/stratalog-io/welldex/adapter/webhook"
	"github.com/stratalog-io/welldex/cli/config"
	"github.com/stratalog-io/welldex/deck"
	"github.com/stratalog-io/welldex/engine"
	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/policy"
	"github.com/stratalog-io/welldex/store"
	"github.com/stratalog-io/welldex/types"
)

// defaultDataset is the Lode dataset ID used when the config does not
// name one.
const defaultDataset = "welldex"

// RunCommand returns the run command.
// This is the only command that executes work.
func RunCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "deck",
			Usage: "Path to input deck file (YAML)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to welldex.yaml config file",
		},
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run ID (default: random UUID)",
		},
		&cli.IntFlag{
			Name:  "attempt",
			Usage: "Attempt number (starts at 1)",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "parent-run-id",
			Usage: "Parent run ID (required for retries)",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Worker pool width (0 = CPU count)",
		},
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "Engineering parameter override as key=value (repeatable)",
		},
		// Policy flags
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Record-emission policy: strict or buffered",
		},
		&cli.IntFlag{
			Name:  "buffer-records",
			Usage: "Max buffered records (buffered policy)",
		},
		&cli.Int64Flag{
			Name:  "buffer-bytes",
			Usage: "Max buffer size in bytes (buffered policy)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Compute the run but persist nothing",
		},
		// Solver hand-off
		&cli.StringFlag{
			Name:  "solver-stream",
			Usage: "Path for the framed control stream (\"-\" = stdout)",
		},
		// Result reporting
		&cli.StringFlag{
			Name:  "report",
			Usage: "Path for the run report JSON (\"-\" = stderr)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress result output",
		},
	}
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:   "run",
		Usage:  "Execute a completion run (the only execution entrypoint)",
		Flags:  flags,
		Action: runAction,
	}
}

// policyChoice holds parsed policy configuration.
type policyChoice struct {
	name       string
	maxRecords int
	maxBytes   int64
	dryRun     bool
}

// storageChoice holds parsed storage configuration.
type storageChoice struct {
	dataset  string
	backend  string // "fs" or "s3"
	path     string // fs: directory, s3: bucket/prefix
	region   string
	endpoint string
	// pathStyle forces path-style S3 addressing (config file only).
	pathStyle bool
}

func runAction(c *cli.Context) error {
	// Load config file; flags override every config value.
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("config: %v", err), engine.ExitCodeConfigError)
		}
		cfg = loaded
	}

	deckPath := firstNonEmpty(c.String("deck"), cfg.Deck)
	if deckPath == "" {
		return cli.Exit("a deck is required: pass --deck or set deck in the config file", engine.ExitCodeConfigError)
	}

	ps, err := buildParams(cfg, c.StringSlice("param"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("params: %v", err), engine.ExitCodeConfigError)
	}

	runMeta := buildRunMeta(c)

	d, err := deck.Load(deckPath)
	if err != nil {
		outcome := engine.ClassifyError(err, "")
		return cli.Exit(fmt.Sprintf("deck: %v", err), engine.ExitCode(outcome.Status))
	}
	runMeta.DeckID = d.DeckID

	choice := policyChoice{
		name:       firstNonEmpty(c.String("policy"), cfg.Policy.Name, "strict"),
		maxRecords: firstPositiveInt(c.Int("buffer-records"), cfg.Policy.BufferRecords),
		maxBytes:   firstPositiveInt64(c.Int64("buffer-bytes"), cfg.Policy.BufferBytes),
		dryRun:     c.Bool("dry-run"),
	}
	if err := validatePolicyConfig(choice); err != nil {
		return cli.Exit(fmt.Sprintf("invalid policy config: %v", err), engine.ExitCodeConfigError)
	}

	storage := storageChoice{
		dataset:   firstNonEmpty(cfg.Storage.Dataset, defaultDataset),
		backend:   firstNonEmpty(c.String("storage-backend"), cfg.Storage.Backend, "fs"),
		path:      firstNonEmpty(c.String("storage-path"), cfg.Storage.Path),
		region:    firstNonEmpty(c.String("storage-region"), cfg.Storage.Region),
		endpoint:  firstNonEmpty(c.String("storage-endpoint"), cfg.Storage.Endpoint),
		pathStyle: cfg.Storage.S3PathStyle,
	}

	// Start time is "now"; it derives the storage partition day.
	startTime := time.Now()
	day := store.DeriveDay(startTime)

	collector := metrics.NewCollector(choice.name, storage.backend, d.DeckID, runMeta.RunID)

	pol, err := buildPolicy(choice, storage, d.DeckID, day, runMeta.RunID, collector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create policy: %v", err), engine.ExitCodeConfigError)
	}
	defer func() { _ = pol.Close() }()

	adp, err := buildAdapter(cfg.Adapter)
	if err != nil {
		return cli.Exit(fmt.Sprintf("adapter: %v", err), engine.ExitCodeConfigError)
	}
	if adp != nil {
		defer func() { _ = adp.Close() }()
	}

	solverOut, closeSolver, err := openSolverStream(firstNonEmpty(c.String("solver-stream"), cfg.Solver.Stream))
	if err != nil {
		return cli.Exit(fmt.Sprintf("solver stream: %v", err), engine.ExitCodeConfigError)
	}
	if closeSolver != nil {
		defer closeSolver()
	}

	runner, err := engine.NewRunner(&engine.RunConfig{
		Deck:         d,
		Params:       ps,
		RunMeta:      runMeta,
		Policy:       pol,
		Parallel:     firstPositiveInt(c.Int("parallel"), cfg.Parallel),
		Collector:    collector,
		Adapter:      adp,
		SolverOutput: solverOut,
		StoragePath:  storage.path,
		Day:          day,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create runner: %v", err), engine.ExitCodeConfigError)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := runner.Execute(ctx)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	report := engine.BuildRunReport(result, collector.Snapshot(), choice.name)

	if path := c.String("report"); path != "" {
		if err := engine.WriteRunReport(report, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write run report: %v\n", err)
		}
	}

	if !c.Bool("quiet") {
		printRunResult(result, report, choice)
	}

	return cli.Exit("", engine.ExitCode(result.Outcome.Status))
}

// buildParams merges config-file parameters with --param overrides.
func buildParams(cfg *config.Config, overrides []string) (*params.Set, error) {
	ps, err := cfg.BuildParams()
	if err != nil {
		return nil, err
	}

	known := make(map[params.Key]struct{})
	for _, key := range params.Keys() {
		known[key] = struct{}{}
	}

	for _, override := range overrides {
		name, raw, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", override)
		}
		key := params.Key(name)
		if _, found := known[key]; !found {
			return nil, fmt.Errorf("unknown engineering parameter %q", name)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, raw)
		}
		ps.Put(key, value)
	}

	return ps, nil
}

func buildRunMeta(c *cli.Context) *types.RunMeta {
	runID := c.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}

	runMeta := &types.RunMeta{
		RunID:   runID,
		Attempt: c.Int("attempt"),
	}
	if parentRunID := c.String("parent-run-id"); parentRunID != "" {
		runMeta.ParentRunID = &parentRunID
	}
	return runMeta
}

func validatePolicyConfig(choice policyChoice) error {
	if choice.dryRun {
		if choice.maxRecords > 0 || choice.maxBytes > 0 {
			fmt.Fprintf(os.Stderr, "Warning: buffer flags ignored for dry runs\n")
		}
		return nil
	}

	switch choice.name {
	case "strict":
		if choice.maxRecords > 0 || choice.maxBytes > 0 {
			fmt.Fprintf(os.Stderr, "Warning: buffer flags ignored for strict policy\n")
		}
		return nil

	case "buffered":
		if choice.maxRecords <= 0 && choice.maxBytes <= 0 {
			return fmt.Errorf("buffered policy requires --buffer-records > 0 or --buffer-bytes > 0")
		}
		return nil

	default:
		return fmt.Errorf("invalid policy: %s (must be strict or buffered)", choice.name)
	}
}

func buildPolicy(choice policyChoice, storage storageChoice, deckID, day, runID string, collector *metrics.Collector) (policy.Policy, error) {
	if choice.dryRun {
		return policy.NewNoopPolicy(), nil
	}

	sink, err := buildStoreSink(storage, deckID, day, runID, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create store sink: %w", err)
	}

	switch choice.name {
	case "strict":
		return policy.NewStrictPolicy(sink), nil

	case "buffered":
		cfg := policy.BufferedConfig{
			MaxBufferRecords: choice.maxRecords,
			MaxBufferBytes:   choice.maxBytes,
		}
		return policy.NewBufferedPolicy(sink, cfg)

	default:
		return nil, fmt.Errorf("unknown policy: %s", choice.name)
	}
}

// buildStoreSink creates a storage sink from CLI configuration.
// Returns StubSink when no storage path is specified, so a run without
// configured storage still exercises the full pipeline.
func buildStoreSink(storage storageChoice, deckID, day, runID string, collector *metrics.Collector) (policy.Sink, error) {
	if storage.path == "" {
		return policy.NewStubSink(), nil
	}

	cfg := store.Config{
		Dataset: storage.dataset,
		Deck:    deckID,
		Day:     day,
		RunID:   runID,
	}

	var client store.Client
	var err error

	switch storage.backend {
	case "fs", "":
		client, err = store.NewLodeClient(cfg, storage.path)
	case "s3":
		bucket, prefix := store.ParseS3Path(storage.path)
		s3cfg := store.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       storage.region,
			Endpoint:     storage.endpoint,
			UsePathStyle: storage.pathStyle,
		}
		client, err = store.NewLodeS3Client(cfg, s3cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", storage.backend)
	}

	if err != nil {
		return nil, err
	}

	return store.NewInstrumentedSink(store.NewSink(cfg, client), collector), nil
}

// buildAdapter creates the run-completion adapter configured in the
// config file. An unset type disables publication.
func buildAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	retries := -1
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		return nil, nil

	case "redis":
		rcfg := redis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
		}
		if retries >= 0 {
			rcfg.Retries = retries
		} else {
			rcfg.Retries = redis.DefaultRetries
		}
		return redis.New(rcfg)

	case "webhook":
		wcfg := webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
		}
		if retries >= 0 {
			wcfg.Retries = retries
		} else {
			wcfg.Retries = webhook.DefaultRetries
		}
		return webhook.New(wcfg)

	default:
		return nil, fmt.Errorf("unknown adapter type: %s (must be redis or webhook)", cfg.Type)
	}
}

// openSolverStream resolves the control-stream destination. Empty path
// disables the hand-off; "-" streams to stdout.
func openSolverStream(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, nil, nil
	case "-":
		return os.Stdout, nil, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
}

func printRunResult(result *engine.RunResult, report *engine.RunReport, choice policyChoice) {
	fmt.Printf("\nrun_id=%s, deck=%s, attempt=%d, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.DeckID,
		result.RunMeta.Attempt,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)

	if choice.name == "buffered" && !choice.dryRun {
		fmt.Printf("policy=%s, drops=%d, buffer_bytes=%d\n",
			choice.name,
			result.PolicyStats.RecordsDropped,
			result.PolicyStats.BufferSize,
		)
	} else {
		fmt.Printf("policy=%s\n", choice.name)
	}

	fmt.Printf("\n=== Run Result ===\n")
	fmt.Printf("Run ID:       %s\n", result.RunMeta.RunID)
	fmt.Printf("Deck:         %s\n", result.RunMeta.DeckID)
	if result.RunMeta.ParentRunID != nil {
		fmt.Printf("Parent Run:   %s\n", *result.RunMeta.ParentRunID)
	}
	fmt.Printf("Attempt:      %d\n", result.RunMeta.Attempt)
	fmt.Printf("Outcome:      %s\n", result.Outcome.Status)
	if result.Outcome.Message != "" {
		fmt.Printf("Message:      %s\n", result.Outcome.Message)
	}
	if result.Outcome.Well != "" {
		fmt.Printf("Well:         %s\n", result.Outcome.Well)
	}
	fmt.Printf("Duration:     %s\n", result.Duration)
	fmt.Printf("Wells:        %d completed, %d failed\n", result.WellsCompleted, result.WellsFailed)

	if result.Summary != nil {
		fmt.Printf("\n=== Completion Summary ===\n")
		fmt.Printf("Total Net Pay:      %.2f\n", result.Summary.TotalNetPay)
		fmt.Printf("Total Length:       %.2f\n", result.Summary.TotalCompletionLength)
		fmt.Printf("Total Stages:       %d\n", result.Summary.TotalStages)
		fmt.Printf("Total Well Index:   %.6g\n", result.Summary.TotalWellIndex)
		fmt.Printf("Skin:               min %.2f / mean %.2f / max %.2f\n",
			result.Summary.SkinMin, result.Summary.SkinMean, result.Summary.SkinMax)
	}

	fmt.Printf("\n=== Policy Stats ===\n")
	fmt.Printf("Records Total:     %d\n", result.PolicyStats.TotalRecords)
	fmt.Printf("Records Persisted: %d\n", result.PolicyStats.RecordsPersisted)
	fmt.Printf("Records Dropped:   %d\n", result.PolicyStats.RecordsDropped)
	fmt.Printf("Flushes:           %d\n", result.PolicyStats.FlushCount)

	if report.Metrics != nil {
		fmt.Printf("\n=== Run Metrics ===\n")
		fmt.Printf("Intervals Refined: %d\n", report.Metrics.IntervalsRefined)
		fmt.Printf("Intervals Uniform: %d\n", report.Metrics.IntervalsUniform)
		fmt.Printf("Search Expansions: %d\n", report.Metrics.SearchExpansions)
		fmt.Printf("Degeneracy Floors: %d\n", report.Metrics.DegeneracyFloors)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositiveInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveInt64(values ...int64) int64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
