package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/envclone/internal/metrics"
)

var (
	entHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	entCopyingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	entDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	entPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderEntities renders the per-entity progress table.
func RenderEntities(snap metrics.Snapshot, width, maxRows int) string {
	if len(snap.Entities) == 0 {
		return "  No entity data available"
	}

	var b strings.Builder

	header := fmt.Sprintf("  %-35s %-18s %s", "Entity", "Records", "Progress")
	b.WriteString(entHeaderStyle.Render(header))
	b.WriteByte('\n')

	shown := len(snap.Entities)
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}

	for i := 0; i < shown; i++ {
		e := snap.Entities[i]
		name := e.Name
		if len(name) > 33 {
			name = name[:30] + "..."
		}

		var recordsStr, progressStr string

		switch e.Status {
		case metrics.EntityCopying:
			recordsStr = fmt.Sprintf("%s/%s", formatCount(e.RecordsDone), formatCount(e.RecordsTotal))
			bar := miniBar(e.Percent, 12)
			progressStr = entCopyingStyle.Render(fmt.Sprintf("%s %5.1f%%", bar, e.Percent))
		case metrics.EntityDone:
			recordsStr = fmt.Sprintf("%s/%s", formatCount(e.RecordsDone), formatCount(e.RecordsTotal))
			bar := miniBar(100, 12)
			progressStr = entDoneStyle.Render(fmt.Sprintf("%s  100%%", bar))
		default:
			recordsStr = fmt.Sprintf("0/%s", formatCount(e.RecordsTotal))
			bar := miniBar(0, 12)
			progressStr = entPendingStyle.Render(fmt.Sprintf("%s    0%%", bar))
		}

		line := fmt.Sprintf("  %-35s %-18s %s", name, recordsStr, progressStr)
		b.WriteString(line)
		if i < shown-1 {
			b.WriteByte('\n')
		}
	}

	if len(snap.Entities) > shown {
		b.WriteByte('\n')
		b.WriteString(fmt.Sprintf("  ... and %d more entities", len(snap.Entities)-shown))
	}

	return b.String()
}

func miniBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	default:
		return fmt.Sprintf("%d", n)
	}
}
