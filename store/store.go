// Package store persists run output tables as hive-partitioned JSONL
// datasets via Lode.
//
// Each record lands in a partition keyed by deck/day/run_id/table, so
// a run's intervals, designs, indices, controls, and summary tables are
// independently addressable by the report reader.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/stratalog-io/welldex/policy"
	"github.com/stratalog-io/welldex/types"
)

// DeriveDay computes the partition day from the run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds storage sink configuration.
// All partition keys are required.
type Config struct {
	// Dataset is the Lode dataset ID (fixed to "welldex").
	Dataset string
	// Deck is the partition key for the input deck identifier.
	Deck string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for the run identifier.
	RunID string
}

// Client abstracts the storage client.
// Real implementations connect to Lode; stubs are used for testing.
type Client interface {
	// WriteRecords writes a batch of output records.
	// Must preserve ordering within the batch.
	WriteRecords(ctx context.Context, dataset, runID string, records []*types.Record) error

	// Close releases client resources.
	Close() error
}

// Sink is a storage-backed implementation of policy.Sink.
type Sink struct {
	config Config
	client Client
}

// NewSink creates a new storage sink.
func NewSink(config Config, client Client) *Sink {
	return &Sink{
		config: config,
		client: client,
	}
}

// WriteRecords implements policy.Sink.
func (s *Sink) WriteRecords(ctx context.Context, records []*types.Record) error {
	return s.client.WriteRecords(ctx, s.config.Dataset, s.config.RunID, records)
}

// Close implements policy.Sink.
func (s *Sink) Close() error {
	return s.client.Close()
}

// Verify Sink implements policy.Sink.
var _ policy.Sink = (*Sink)(nil)

// StubClient is a test client that accepts writes without persisting.
type StubClient struct {
	mu sync.Mutex

	// Writes records each WriteRecords call for inspection.
	Writes []StubWrite
	// Closed indicates whether Close was called.
	Closed bool

	// ErrorOnWrite, if non-nil, is returned by WriteRecords.
	ErrorOnWrite error
}

// StubWrite is a recorded batch write for testing.
type StubWrite struct {
	Dataset string
	RunID   string
	Records []*types.Record
}

// NewStubClient creates a new stub client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// WriteRecords implements Client by recording the call.
func (c *StubClient) WriteRecords(_ context.Context, dataset, runID string, records []*types.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ErrorOnWrite != nil {
		return c.ErrorOnWrite
	}

	c.Writes = append(c.Writes, StubWrite{
		Dataset: dataset,
		RunID:   runID,
		Records: records,
	})
	return nil
}

// Close implements Client.
func (c *StubClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Closed = true
	return nil
}

// Verify StubClient implements Client.
var _ Client = (*StubClient)(nil)
