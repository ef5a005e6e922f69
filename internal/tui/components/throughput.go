package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/envclone/internal/metrics"
)

var throughputValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))

// RenderThroughput renders the throughput counters.
func RenderThroughput(snap metrics.Snapshot, width int) string {
	recordsPerSec := throughputValueStyle.Render(fmt.Sprintf("%.0f records/s", snap.RecordsPerSec))
	totalRecords := formatCount(snap.TotalRecords)

	errStr := ""
	if snap.ErrorCount > 0 {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
		errStr = fmt.Sprintf("  Errors: %s", errStyle.Render(fmt.Sprintf("%d", snap.ErrorCount)))
	}

	return fmt.Sprintf("  %s  |  Total: %s records%s",
		recordsPerSec, totalRecords, errStr)
}
