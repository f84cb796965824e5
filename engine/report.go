package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/stratalog-io/welldex/deck"
	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/types"
)

// CompletionSummary aggregates batch statistics over all wells of a
// run. The uniform design schema means aggregation never branches on
// the trajectory variant.
type CompletionSummary struct {
	WellsPlanned   int `json:"wells_planned"`
	WellsCompleted int `json:"wells_completed"`
	WellsFailed    int `json:"wells_failed"`

	// CountsByType counts completed designs per completion type.
	CountsByType map[types.CompletionType]int `json:"counts_by_type"`

	// Skin statistics over completed wells.
	SkinMin  float64 `json:"skin_min"`
	SkinMax  float64 `json:"skin_max"`
	SkinMean float64 `json:"skin_mean"`

	// Completion length statistics over completed wells.
	TotalCompletionLength float64 `json:"total_completion_length"`
	AvgCompletionLength   float64 `json:"avg_completion_length"`
	MaxCompletionLength   float64 `json:"max_completion_length"`

	// TotalStages is the total stage count across all designs.
	TotalStages int `json:"total_stages"`
	// TotalNetPay is the total resolved net pay across all completions.
	TotalNetPay float64 `json:"total_net_pay"`
	// TotalWellIndex is the sum of well-level productivity indices.
	TotalWellIndex float64 `json:"total_well_index"`
}

// BuildCompletionSummary computes batch statistics from the per-well
// results. Failed wells count toward the failure tally only.
func BuildCompletionSummary(d *deck.Deck, results []*WellResult) *CompletionSummary {
	summary := &CompletionSummary{
		WellsPlanned: len(d.Wells),
		CountsByType: make(map[types.CompletionType]int),
	}

	skinByWell := make(map[string]float64, len(d.Wells))
	for i := range d.Wells {
		skinByWell[d.Wells[i].ID] = d.Wells[i].Skin
	}

	first := true
	var skinSum float64
	for _, res := range results {
		if res.Err != nil {
			summary.WellsFailed++
			continue
		}
		summary.WellsCompleted++
		summary.CountsByType[res.Design.Type]++
		summary.TotalStages += res.Design.StageCount
		summary.TotalCompletionLength += res.Design.CompletionLength
		if res.Design.CompletionLength > summary.MaxCompletionLength {
			summary.MaxCompletionLength = res.Design.CompletionLength
		}
		summary.TotalNetPay += res.Completion.TotalNetPay
		summary.TotalWellIndex += res.Index.Total

		skin := skinByWell[res.WellID]
		skinSum += skin
		if first {
			summary.SkinMin = skin
			summary.SkinMax = skin
			first = false
		} else {
			if skin < summary.SkinMin {
				summary.SkinMin = skin
			}
			if skin > summary.SkinMax {
				summary.SkinMax = skin
			}
		}
	}

	if summary.WellsCompleted > 0 {
		n := float64(summary.WellsCompleted)
		summary.SkinMean = skinSum / n
		summary.AvgCompletionLength = summary.TotalCompletionLength / n
	}

	return summary
}

// Record flattens the summary into a single persisted summary-table row.
func (s *CompletionSummary) Record() *types.Record {
	fields := map[string]any{
		"wells_planned":           s.WellsPlanned,
		"wells_completed":         s.WellsCompleted,
		"wells_failed":            s.WellsFailed,
		"skin_min":                s.SkinMin,
		"skin_max":                s.SkinMax,
		"skin_mean":               s.SkinMean,
		"total_completion_length": s.TotalCompletionLength,
		"avg_completion_length":   s.AvgCompletionLength,
		"max_completion_length":   s.MaxCompletionLength,
		"total_stages":            s.TotalStages,
		"total_net_pay":           s.TotalNetPay,
		"total_well_index":        s.TotalWellIndex,
	}
	for completionType, count := range s.CountsByType {
		fields["count_"+string(completionType)] = count
	}
	return &types.Record{Table: types.TableSummary, Fields: fields}
}

// RunReport is the structured JSON report written after a run.
type RunReport struct {
	RunID      string              `json:"run_id"`
	Deck       string              `json:"deck"`
	Attempt    int                 `json:"attempt"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message,omitempty"`
	ExitCode   int                 `json:"exit_code"`
	DurationMs int64               `json:"duration_ms"`

	Policy  *ReportPolicy      `json:"policy"`
	Metrics *metrics.Snapshot  `json:"metrics"`
	Summary *CompletionSummary `json:"summary,omitempty"`
}

// ReportPolicy holds the policy stats section of the report.
type ReportPolicy struct {
	Name             string           `json:"name"`
	RecordsEmitted   int64            `json:"records_emitted"`
	RecordsPersisted int64            `json:"records_persisted"`
	RecordsDropped   int64            `json:"records_dropped"`
	DroppedByTable   map[string]int64 `json:"dropped_by_table,omitempty"`
	FlushCount       int64            `json:"flush_count"`
}

// BuildRunReport composes a RunReport from a run result and the metrics
// snapshot. The policyName is the configured policy name string
// ("strict", "buffered", "noop").
func BuildRunReport(result *RunResult, snap metrics.Snapshot, policyName string) *RunReport {
	droppedByTable := make(map[string]int64, len(result.PolicyStats.DroppedByTable))
	for table, count := range result.PolicyStats.DroppedByTable {
		droppedByTable[string(table)] = count
	}

	return &RunReport{
		RunID:      result.RunMeta.RunID,
		Deck:       result.RunMeta.DeckID,
		Attempt:    result.RunMeta.Attempt,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		ExitCode:   ExitCode(result.Outcome.Status),
		DurationMs: result.Duration.Milliseconds(),
		Policy: &ReportPolicy{
			Name:             policyName,
			RecordsEmitted:   result.PolicyStats.TotalRecords,
			RecordsPersisted: result.PolicyStats.RecordsPersisted,
			RecordsDropped:   result.PolicyStats.RecordsDropped,
			DroppedByTable:   droppedByTable,
			FlushCount:       result.PolicyStats.FlushCount,
		},
		Metrics: &snap,
		Summary: result.Summary,
	}
}

// WriteRunReport writes the report as JSON to the specified path.
// A path of "-" writes to stderr, keeping stdout clean for rendering.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		return writeRunReportTo(report, os.Stderr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeRunReportTo writes report JSON to any writer.
func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
