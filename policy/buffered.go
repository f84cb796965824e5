package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stratalog-io/welldex/log"
	"github.com/stratalog-io/welldex/types"
)

// BufferedConfig configures a BufferedPolicy.
type BufferedConfig struct {
	// MaxBufferRecords is the maximum number of records to buffer.
	// Zero means no limit (use MaxBufferBytes instead).
	MaxBufferRecords int

	// MaxBufferBytes is the maximum buffer size in bytes (estimated).
	// Zero means no limit (use MaxBufferRecords instead).
	// At least one limit must be set.
	MaxBufferBytes int64

	// Logger is an optional logger for drop/overflow observability.
	// If nil, no logging is emitted.
	Logger *log.Logger
}

// DefaultBufferedConfig returns sensible defaults for buffered policy.
func DefaultBufferedConfig() BufferedConfig {
	return BufferedConfig{
		MaxBufferRecords: 1000,
		MaxBufferBytes:   10 * 1024 * 1024, // 10 MB
	}
}

// ErrBufferFull is returned when the buffer is full and the record is
// non-droppable.
var ErrBufferFull = errors.New("buffer full: cannot accept non-droppable record")

// ErrInvalidConfig is returned when BufferedConfig is invalid.
var ErrInvalidConfig = errors.New("invalid config: at least one of MaxBufferRecords or MaxBufferBytes must be set")

// BufferedPolicy implements buffered persistence with drop rules.
//
//   - Bounded buffer with explicit limits
//   - May drop: diagnostics rows
//   - Must NOT drop: intervals, designs, indices, controls, summary
//   - Batch write on flush, in ingest order
//   - Buffers are preserved intact on a failed flush; a retried flush
//     may duplicate rows but never loses engineering data
type BufferedPolicy struct {
	sink   Sink
	config BufferedConfig
	logger *log.Logger

	mu          sync.Mutex // guards buffer state only
	buffer      []*types.Record
	bufferBytes int64
	stats       *statsRecorder
}

// NewBufferedPolicy creates a new buffered policy.
// Returns error if config is invalid.
func NewBufferedPolicy(sink Sink, config BufferedConfig) (*BufferedPolicy, error) {
	if config.MaxBufferRecords <= 0 && config.MaxBufferBytes <= 0 {
		return nil, ErrInvalidConfig
	}

	return &BufferedPolicy{
		sink:   sink,
		config: config,
		logger: config.Logger,
		buffer: make([]*types.Record, 0, max(config.MaxBufferRecords, 100)),
		stats:  newStatsRecorder(),
	}, nil
}

// Ingest buffers the record, applying drop rules if the buffer is full.
//
// Drop strategy when full:
//   - Incoming record droppable: drop it, record in stats
//   - Incoming record non-droppable, buffer holds droppable rows:
//     evict the oldest droppable row
//   - Incoming record non-droppable, nothing evictable: return error
//     (fail run)
func (p *BufferedPolicy) Ingest(ctx context.Context, record *types.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.incTotalLocked()

	size := estimateRecordSize(record)

	if p.hasRoom(size) {
		p.append(record, size)
		return nil
	}

	// Buffer is full, apply drop rules
	if IsDroppable(record.Table) {
		p.stats.incDroppedLocked(record.Table)
		p.logDrop(record.Table, "buffer_full")
		return nil
	}

	if p.dropOldestDroppable() && p.hasRoomForBytes(size) {
		p.append(record, size)
		return nil
	}

	p.stats.incErrorsLocked()
	p.logBufferOverflow(record.Table)
	return fmt.Errorf("%w: table %s", ErrBufferFull, record.Table)
}

// append adds a record to the buffer. Caller must hold mu.
func (p *BufferedPolicy) append(record *types.Record, size int64) {
	p.buffer = append(p.buffer, record)
	p.bufferBytes += size
	p.stats.setBufferSizeLocked(p.bufferBytes)
}

// Flush writes all buffered records to the sink in ingest order.
// Buffers are kept intact on failure so a retry can re-attempt the
// whole batch.
func (p *BufferedPolicy) Flush(ctx context.Context) error {
	p.mu.Lock()
	p.stats.incFlushLocked()
	n := len(p.buffer)
	records := make([]*types.Record, n)
	copy(records, p.buffer)
	p.mu.Unlock()

	if n == 0 {
		return nil
	}

	if err := p.sink.WriteRecords(ctx, records); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.mu.Unlock()
		p.logFlushFailure(err)
		return err
	}

	// Trim only the written prefix: records ingested while the sink
	// write was in flight stay buffered for the next flush.
	p.mu.Lock()
	if n > len(p.buffer) {
		n = len(p.buffer)
	}
	remaining := p.buffer[n:]
	p.buffer = make([]*types.Record, 0, max(p.config.MaxBufferRecords, 100))
	p.buffer = append(p.buffer, remaining...)
	p.bufferBytes = 0
	for _, rec := range p.buffer {
		p.bufferBytes += estimateRecordSize(rec)
	}
	p.stats.incPersistedLocked(int64(len(records)))
	p.stats.setBufferSizeLocked(p.bufferBytes)
	p.mu.Unlock()

	return nil
}

// Close flushes remaining data and closes the sink.
func (p *BufferedPolicy) Close() error {
	// Best-effort flush on close
	_ = p.Flush(context.Background())
	return p.sink.Close()
}

// Stats returns policy statistics.
// The buffer mutex is held while taking the snapshot so counters and
// buffer size are captured from the same point in time.
func (p *BufferedPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats.snapshotLocked(p.bufferBytes)
}

// hasRoom checks if the buffer can accept a record of the given size.
func (p *BufferedPolicy) hasRoom(size int64) bool {
	if p.config.MaxBufferRecords > 0 && len(p.buffer) >= p.config.MaxBufferRecords {
		return false
	}
	return p.hasRoomForBytes(size)
}

// hasRoomForBytes checks if adding bytes would exceed the byte limit.
func (p *BufferedPolicy) hasRoomForBytes(size int64) bool {
	if p.config.MaxBufferBytes > 0 && p.bufferBytes+size > p.config.MaxBufferBytes {
		return false
	}
	return true
}

// dropOldestDroppable removes the oldest droppable record from the
// buffer. Returns true if a record was dropped. Caller must hold mu.
func (p *BufferedPolicy) dropOldestDroppable() bool {
	for i, record := range p.buffer {
		if IsDroppable(record.Table) {
			table := record.Table
			size := estimateRecordSize(record)
			p.buffer = append(p.buffer[:i], p.buffer[i+1:]...)
			p.bufferBytes -= size
			p.stats.setBufferSizeLocked(p.bufferBytes)
			p.stats.incDroppedLocked(table)
			p.logDrop(table, "evicted_for_non_droppable")
			return true
		}
	}
	return false
}

// estimateRecordSize returns an estimated size in bytes for a record.
// This is a rough estimate for buffer management.
func estimateRecordSize(record *types.Record) int64 {
	size := int64(100)
	size += int64(len(record.Fields) * 50)
	return size
}

func (p *BufferedPolicy) logDrop(table types.Table, reason string) {
	if p.logger == nil {
		return
	}
	p.logger.Warn("record dropped", map[string]any{
		"table":  string(table),
		"reason": reason,
		"policy": "buffered",
	})
}

func (p *BufferedPolicy) logBufferOverflow(table types.Table) {
	if p.logger == nil {
		return
	}
	p.logger.Error("buffer overflow", map[string]any{
		"table":  string(table),
		"policy": "buffered",
	})
}

func (p *BufferedPolicy) logFlushFailure(err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("flush failed", map[string]any{
		"error":  err.Error(),
		"policy": "buffered",
	})
}
