package store

import (
	"context"

	"github.com/justapithecus/lode/lode"

	"github.com/stratalog-io/welldex/types"
)

// partitionKeys defines the hive layout shared by the write and read
// paths. Table is the innermost key so each output table gets its own
// partition under the run.
var partitionKeys = []string{"deck", "day", "run_id", "table"}

// LodeClient is a Lode-backed implementation of Client.
// Uses Lode's HiveLayout with partition keys: deck/day/run_id/table.
type LodeClient struct {
	dataset lode.Dataset
	config  Config
}

// NewLodeClient creates a new Lode client with filesystem storage.
// The root parameter is the base directory for hive-partitioned storage.
func NewLodeClient(cfg Config, root string) (*LodeClient, error) {
	return NewLodeClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewLodeClientWithFactory creates a new Lode client with a custom
// store factory. Use lode.NewMemoryFactory() for testing.
func NewLodeClientWithFactory(cfg Config, factory lode.StoreFactory) (*LodeClient, error) {
	ds, err := lode.NewDataset(
		lode.DatasetID(cfg.Dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}

	return &LodeClient{
		dataset: ds,
		config:  cfg,
	}, nil
}

// WriteRecords writes a batch of output records to Lode. Each record's
// column map is flattened into a row carrying the partition keys.
func (c *LodeClient) WriteRecords(ctx context.Context, dataset, runID string, records []*types.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRowMap(r, c.config))
	}

	if _, err := c.dataset.Write(ctx, rows, lode.Metadata{}); err != nil {
		return WrapWriteError(err, partitionPath(c.config))
	}

	return nil
}

// Close releases client resources.
func (c *LodeClient) Close() error {
	// Dataset does not require explicit close in the current Lode API
	return nil
}

// Verify LodeClient implements Client.
var _ Client = (*LodeClient)(nil)

// toRowMap flattens a record into a storage row. Row columns come from
// the record fields; partition keys and the well reference are added
// alongside so the read path can filter without re-parsing.
func toRowMap(r *types.Record, cfg Config) map[string]any {
	row := make(map[string]any, len(r.Fields)+5)
	for k, v := range r.Fields {
		row[k] = v
	}
	row["table"] = string(r.Table) // partition key
	row["deck"] = cfg.Deck
	row["day"] = cfg.Day
	row["run_id"] = cfg.RunID
	if r.WellID != "" {
		row["well_id"] = r.WellID
	}
	return row
}

// partitionPath renders the run's partition prefix for error context.
func partitionPath(cfg Config) string {
	return "deck=" + cfg.Deck + "/day=" + cfg.Day + "/run_id=" + cfg.RunID
}
