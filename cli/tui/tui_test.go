package tui

import (
	"strings"
	"testing"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"report_summary", true},

		{"report_table", false},
		{"version", false},
		{"run", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	for _, v := range SupportedTUIViews() {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRunUnsupportedViewType(t *testing.T) {
	if err := Run("report_table", nil); err == nil {
		t.Error("expected error for unsupported view type")
	}
}

func TestRunRejectsWrongPayload(t *testing.T) {
	if err := Run("report_summary", "not a summary"); err == nil {
		t.Error("expected error for wrong payload type")
	}
}

func TestRenderSummaryStatic(t *testing.T) {
	view := &RunSummaryView{
		RunID: "run-9", Deck: "block-7", Outcome: "success",
		WellsPlanned: 5, WellsCompleted: 4, WellsFailed: 1,
		RecordsPersisted: 42, TotalNetPay: 118.5,
		SkinMin: 0, SkinMean: 2.5, SkinMax: 6,
	}

	out := RenderSummaryStatic(view)
	for _, want := range []string{"run-9", "block-7", "success", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("static render missing %q", want)
		}
	}
}

func TestSummaryViewNilData(t *testing.T) {
	model := NewSummaryModel(nil)
	if out := model.View(); !strings.Contains(out, "No summary data") {
		t.Errorf("nil-data view = %q", out)
	}
}
