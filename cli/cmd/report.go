package cmd

import (
	"errors"
	"fmt"

	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/stratalog-io/welldex/cli/config"
	"github.com/stratalog-io/welldex/cli/render"
	"github.com/stratalog-io/welldex/cli/tui"
	"github.com/stratalog-io/welldex/store"
	"github.com/stratalog-io/welldex/types"
)

// reportTables is the set of tables the report command can read.
var reportTables = map[types.Table]bool{
	types.TableIntervals:   true,
	types.TableDesigns:     true,
	types.TableIndices:     true,
	types.TableControls:    true,
	types.TableSummary:     true,
	types.TableDiagnostics: true,
}

// ReportCommand returns the report command.
// Report reads persisted run tables from the store; it never computes.
func ReportCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to welldex.yaml config file",
		},
		&cli.StringFlag{
			Name:     "run-id",
			Usage:    "Run ID to report on",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "table",
			Usage: "Table to read: summary, intervals, designs, indices, controls, diagnostics",
			Value: string(types.TableSummary),
		},
	}
	flags = append(flags, StorageFlags()...)
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:   "report",
		Usage:  "Read persisted run output tables",
		Flags:  flags,
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("config: %v", err), 1)
		}
		cfg = loaded
	}

	storage := storageChoice{
		dataset:   firstNonEmpty(cfg.Storage.Dataset, defaultDataset),
		backend:   firstNonEmpty(c.String("storage-backend"), cfg.Storage.Backend, "fs"),
		path:      firstNonEmpty(c.String("storage-path"), cfg.Storage.Path),
		region:    firstNonEmpty(c.String("storage-region"), cfg.Storage.Region),
		endpoint:  firstNonEmpty(c.String("storage-endpoint"), cfg.Storage.Endpoint),
		pathStyle: cfg.Storage.S3PathStyle,
	}
	if storage.path == "" {
		return cli.Exit("a storage path is required: pass --storage-path or set storage.path in the config file", 1)
	}

	table := types.Table(c.String("table"))
	if !reportTables[table] {
		return cli.Exit(fmt.Sprintf("unknown table: %s", table), 1)
	}

	ds, err := openReadDataset(storage)
	if err != nil {
		return cli.Exit(fmt.Sprintf("storage: %v", err), 1)
	}

	runID := c.String("run-id")

	if c.Bool("tui") {
		if table != types.TableSummary {
			return cli.Exit("--tui is only supported for the summary table", 1)
		}
		view, err := buildSummaryView(c, ds, runID)
		if err != nil {
			return cli.Exit(fmt.Sprintf("report: %v", err), 1)
		}
		return r.RenderTUI("report_summary", view)
	}

	rows, err := store.ReadTable(c.Context, ds, runID, table)
	if err != nil {
		if errors.Is(err, store.ErrNoRecords) {
			return cli.Exit(fmt.Sprintf("no records for run %s in table %s", runID, table), 1)
		}
		return cli.Exit(fmt.Sprintf("report: %v", err), 1)
	}

	return r.Render(rows)
}

// openReadDataset creates a read-side Lode dataset for the configured
// storage backend.
func openReadDataset(storage storageChoice) (lode.Dataset, error) {
	switch storage.backend {
	case "fs", "":
		return store.NewReadDatasetFS(storage.dataset, storage.path)
	case "s3":
		bucket, prefix := store.ParseS3Path(storage.path)
		return store.NewReadDatasetS3(storage.dataset, store.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       storage.region,
			Endpoint:     storage.endpoint,
			UsePathStyle: storage.pathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", storage.backend)
	}
}

// buildSummaryView assembles the TUI payload from the persisted summary
// row plus per-table row counts. Everything shown comes from the store;
// nothing is recomputed.
func buildSummaryView(c *cli.Context, ds lode.Dataset, runID string) (*tui.RunSummaryView, error) {
	rows, err := store.ReadTable(c.Context, ds, runID, types.TableSummary)
	if err != nil {
		return nil, err
	}
	row := rows[0]

	view := &tui.RunSummaryView{
		RunID:                 runID,
		Deck:                  rowString(row, "deck"),
		WellsPlanned:          rowInt(row, "wells_planned"),
		WellsCompleted:        rowInt(row, "wells_completed"),
		WellsFailed:           rowInt(row, "wells_failed"),
		TotalNetPay:           rowFloat(row, "total_net_pay"),
		TotalCompletionLength: rowFloat(row, "total_completion_length"),
		TotalWellIndex:        rowFloat(row, "total_well_index"),
		SkinMin:               rowFloat(row, "skin_min"),
		SkinMax:               rowFloat(row, "skin_max"),
		SkinMean:              rowFloat(row, "skin_mean"),
	}

	// A summary row only exists for runs that got past configuration;
	// per-well failures are input errors.
	if view.WellsFailed > 0 {
		view.Outcome = string(types.OutcomeInputError)
	} else {
		view.Outcome = string(types.OutcomeSuccess)
	}

	for table := range reportTables {
		tableRows, err := store.ReadTable(c.Context, ds, runID, table)
		if err != nil {
			if errors.Is(err, store.ErrNoRecords) {
				continue
			}
			return nil, err
		}
		view.RecordsPersisted += int64(len(tableRows))
	}

	return view, nil
}

func rowString(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

func rowFloat(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func rowInt(row map[string]any, key string) int {
	return int(rowFloat(row, key))
}
