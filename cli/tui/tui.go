package tui

import "fmt"

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	switch viewType {
	case "report_summary":
		view, ok := data.(*RunSummaryView)
		if !ok {
			return fmt.Errorf("report_summary requires a run summary payload")
		}
		return RunSummaryTUI(view)
	default:
		return fmt.Errorf("unknown view type: %s", viewType)
	}
}

// IsTUISupported returns true if the view type supports TUI mode.
// TUI is opt-in and read-only: only the report summary view has one.
func IsTUISupported(viewType string) bool {
	return viewType == "report_summary"
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{"report_summary"}
}
