package cmd

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/stratalog-io/welldex/store"
	"github.com/stratalog-io/welldex/types"
)

func TestReportCommandFlags(t *testing.T) {
	cmd := ReportCommand()
	if cmd.Name != "report" {
		t.Errorf("command name = %q, want report", cmd.Name)
	}

	names := make(map[string]bool)
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{"run-id", "table", "storage-path", "format", "tui"} {
		if !names[n] {
			t.Errorf("report command missing flag --%s", n)
		}
	}
}

func TestReportTablesCoverAllOutputTables(t *testing.T) {
	all := []types.Table{
		types.TableIntervals, types.TableDesigns, types.TableIndices,
		types.TableControls, types.TableSummary, types.TableDiagnostics,
	}
	for _, table := range all {
		if !reportTables[table] {
			t.Errorf("table %s not readable by report", table)
		}
	}
}

func TestOpenReadDatasetFS(t *testing.T) {
	storage := storageChoice{dataset: "welldex", backend: "fs", path: t.TempDir()}
	ds, err := openReadDataset(storage)
	if err != nil {
		t.Fatalf("openReadDataset failed: %v", err)
	}
	if ds == nil {
		t.Fatal("expected dataset")
	}
}

func TestOpenReadDatasetUnknownBackend(t *testing.T) {
	storage := storageChoice{dataset: "welldex", backend: "tape", path: "/tmp/x"}
	if _, err := openReadDataset(storage); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestBuildSummaryViewFromPersistedRun(t *testing.T) {
	dir := t.TempDir()
	cfg := store.Config{Dataset: "welldex", Deck: "deck-7", Day: "2026-08-31", RunID: "run-7"}

	client, err := store.NewLodeClient(cfg, dir)
	if err != nil {
		t.Fatalf("NewLodeClient failed: %v", err)
	}

	records := []*types.Record{
		{Table: types.TableControls, WellID: "PROD-1", Fields: map[string]any{"well_id": "PROD-1"}},
		{Table: types.TableControls, WellID: "INJ-1", Fields: map[string]any{"well_id": "INJ-1"}},
		{Table: types.TableSummary, Fields: map[string]any{
			"wells_planned":           2,
			"wells_completed":         2,
			"wells_failed":            0,
			"total_net_pay":           36.5,
			"total_completion_length": 1230.0,
			"total_well_index":        600.0,
			"skin_min":                0.0,
			"skin_max":                6.0,
			"skin_mean":               3.0,
		}},
	}
	if err := client.WriteRecords(t.Context(), cfg.Dataset, cfg.RunID, records); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ds, err := openReadDataset(storageChoice{dataset: "welldex", backend: "fs", path: dir})
	if err != nil {
		t.Fatalf("openReadDataset failed: %v", err)
	}

	set := flag.NewFlagSet("report", flag.ContinueOnError)
	c := cli.NewContext(nil, set, nil)

	view, err := buildSummaryView(c, ds, "run-7")
	if err != nil {
		t.Fatalf("buildSummaryView failed: %v", err)
	}

	if view.Deck != "deck-7" {
		t.Errorf("deck = %q, want deck-7", view.Deck)
	}
	if view.Outcome != string(types.OutcomeSuccess) {
		t.Errorf("outcome = %q, want success", view.Outcome)
	}
	if view.WellsCompleted != 2 {
		t.Errorf("wells completed = %d, want 2", view.WellsCompleted)
	}
	if view.RecordsPersisted != 3 {
		t.Errorf("records persisted = %d, want 3", view.RecordsPersisted)
	}
	if view.TotalNetPay != 36.5 {
		t.Errorf("total net pay = %v, want 36.5", view.TotalNetPay)
	}
}

func TestRowCoercion(t *testing.T) {
	row := map[string]any{
		"f64":     1.5,
		"int":     3,
		"int64":   int64(4),
		"str":     "deck-1",
		"missing": nil,
	}

	if got := rowFloat(row, "f64"); got != 1.5 {
		t.Errorf("rowFloat(f64) = %v, want 1.5", got)
	}
	if got := rowFloat(row, "int"); got != 3 {
		t.Errorf("rowFloat(int) = %v, want 3", got)
	}
	if got := rowInt(row, "int64"); got != 4 {
		t.Errorf("rowInt(int64) = %v, want 4", got)
	}
	if got := rowString(row, "str"); got != "deck-1" {
		t.Errorf("rowString(str) = %q, want deck-1", got)
	}
	if got := rowFloat(row, "absent"); got != 0 {
		t.Errorf("rowFloat(absent) = %v, want 0", got)
	}
}
