package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/tui/styles"
)

// HistoryEntry is a track loaded during this session.
type HistoryEntry struct {
	Track    core.Track
	PlayedAt time.Time
	Finished bool
}

// History displays what was played this session, newest first.
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("Recently Played", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4, time.Now())
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []HistoryEntry, width, maxLines int, now time.Time) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		ago := humanize.RelTime(entry.PlayedAt, now, "ago", "from now")
		icon := styles.KindIcon(string(entry.Track.Kind))
		if entry.Finished {
			icon = "✓"
		}

		// icon (2) + space + padding
		available := width - 4 - len(ago)
		info := truncate(entry.Track.Title+" — "+entry.Track.AuthorName, available)

		padding := width - 3 - lipgloss.Width(info) - len(ago)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s %s%*s%s",
			styles.Dim.Render(icon),
			info,
			padding, "",
			styles.Dim.Render(ago)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// AddHistory puts track at the front of entries, keeping at most max
// entries. Reloading the newest entry only refreshes its time.
func AddHistory(entries []HistoryEntry, track core.Track, at time.Time, max int) []HistoryEntry {
	if len(entries) > 0 && entries[0].Track.ID == track.ID && entries[0].Track.Kind == track.Kind {
		entries[0].PlayedAt = at
		entries[0].Finished = false
		return entries
	}
	entries = append([]HistoryEntry{{Track: track, PlayedAt: at}}, entries...)
	if len(entries) > max {
		entries = entries[:max]
	}
	return entries
}
