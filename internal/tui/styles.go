// Package tui provides Bubble Tea terminal interfaces for trackyear: the
// enrichment progress view, the review loop for unresolved records, and
// the write-back confirmation prompt.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/trackyear/internal/enrich"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   enrich.ProgressLevel
}

// renderLogs renders log entries with a level marker.
func renderLogs(logs []LogEntry) string {
	var out string
	for _, log := range logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case enrich.LevelError:
			style = errorStyle
			prefix = "✗"
		case enrich.LevelWarning:
			style = warningStyle
			prefix = "!"
		case enrich.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case enrich.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		out += style.Render(prefix+" "+log.Message) + "\n"
	}
	return out
}

// appendLog keeps the last limit entries.
func appendLog(logs []LogEntry, entry LogEntry, limit int) []LogEntry {
	logs = append(logs, entry)
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs
}
