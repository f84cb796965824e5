package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"

	"github.com/stratalog-io/welldex/types"
)

// ErrNoRecords is returned when a queried table has no rows for the run.
var ErrNoRecords = errors.New("no records found")

// NewReadDataset creates a Lode Dataset for reading.
// Uses the same codec and layout as the write path.
func NewReadDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// NewReadDatasetFS creates a read Dataset with filesystem storage.
func NewReadDatasetFS(dataset, rootPath string) (lode.Dataset, error) {
	return NewReadDataset(dataset, lode.NewFSFactory(rootPath))
}

// NewReadDatasetS3 creates a read Dataset with S3 storage.
// Uses the AWS SDK default credential chain.
func NewReadDatasetS3(dataset string, s3cfg S3Config) (lode.Dataset, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := newS3Factory(s3cfg)
	if err != nil {
		return nil, err
	}
	return NewReadDataset(dataset, factory)
}

// ReadTable reads all rows of one output table for a run, in write
// order. Returns ErrNoRecords if the run has no rows in the table.
func ReadTable(ctx context.Context, ds lode.Dataset, runID string, table types.Table) ([]map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, "welldex/snapshots")
	}

	var rows []map[string]any
	for _, snap := range snapshots {
		// Manifest path filtering is a coarse pre-filter; record fields
		// are authoritative (snapshots can span partitions).
		if !snapshotMatchesFilter(snap, "run_id", runID) {
			continue
		}
		if !snapshotMatchesFilter(snap, "table", string(table)) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("welldex/snapshot/%s", snap.ID))
		}

		for _, item := range data {
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if runID != "" && toString(row["run_id"]) != runID {
				continue
			}
			if toString(row["table"]) != string(table) {
				continue
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: run %s table %s", ErrNoRecords, runID, table)
	}
	return rows, nil
}

// snapshotMatchesFilter checks if a snapshot's file paths match the
// given partition key=value filter.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a hive-partitioned path contains an
// exact key=value segment. Exact segment matching avoids substring
// false positives (run_id=run-1 matching run_id=run-10).
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// toString converts a value to string, returning "" for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
