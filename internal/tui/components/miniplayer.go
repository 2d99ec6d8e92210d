package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/tui/styles"
)

// MiniPlayer is the one-line bar that keeps a session visible while the
// user is elsewhere in the app.
type MiniPlayer struct{}

// NewMiniPlayer creates a new MiniPlayer component
func NewMiniPlayer() *MiniPlayer {
	return &MiniPlayer{}
}

// Render draws snap in a single bordered line. The caller decides whether
// the bar is shown at all.
func (p *MiniPlayer) Render(snap core.Snapshot, width int) string {
	if !snap.HasTrack() {
		return ""
	}
	state := snap.State

	times := FormatDuration(state.Position)
	if state.DurationKnown() {
		times += " / " + FormatDuration(state.Duration)
	}
	right := fmt.Sprintf("%s  %s", times, styles.VolumeIcon(state.Volume, state.IsMuted))

	barWidth := 12
	available := width - 4 - lipgloss.Width(right) - barWidth - 8
	label := truncate(snap.Track.Title+" · "+snap.Track.AuthorName, available)

	line := fmt.Sprintf("%s %s %s  %s %s",
		styles.KindIcon(string(snap.Kind)),
		styles.StatusIcon(state.IsPlaying),
		label,
		styles.ProgressBar(state.ProgressPercent(), barWidth),
		styles.Dim.Render(right))

	return styles.BorderStyle.
		Width(width - 2).
		Padding(0, 1).
		Render(line)
}
