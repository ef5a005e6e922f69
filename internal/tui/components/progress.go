package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/envclone/internal/metrics"
)

// RenderProgress renders the overall replication progress bar.
func RenderProgress(snap metrics.Snapshot, width int) string {
	total := snap.EntitiesTotal
	done := snap.EntitiesDone
	if total == 0 {
		return "  No entities to replicate"
	}

	pct := float64(done) / float64(total) * 100

	barWidth := width - 40
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * pct / 100)
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	fullChars := strings.Repeat("█", filled)
	emptyChars := strings.Repeat("░", empty)

	coloredFull := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render(fullChars)
	coloredEmpty := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(emptyChars)

	return fmt.Sprintf("  Overall: %s%s %5.1f%% (%d/%d entities)",
		coloredFull, coloredEmpty, pct, done, total)
}
