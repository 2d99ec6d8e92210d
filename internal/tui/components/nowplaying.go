package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/tui/styles"
)

// NowPlaying is the full player shown on the listen and watch pages.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the player for snap. surface names where the video
// picture is being drawn; it is empty for audio.
func (n *NowPlaying) Render(snap core.Snapshot, surface string, width, height int) string {
	heading := "Now Listening"
	if snap.Kind == core.KindVideo {
		heading = "Now Watching"
	}
	title := styles.PanelTitle(heading, true)

	var content string
	if !snap.HasTrack() {
		content = styles.Muted.Render("Nothing loaded")
	} else {
		content = n.renderTrack(snap, surface, width-4)
	}

	panel := styles.Panel(true).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap core.Snapshot, surface string, width int) string {
	track := snap.Track
	state := snap.State

	icon := styles.StatusIcon(state.IsPlaying)
	title := styles.Title.Width(width - 4).Render(track.Title)
	author := styles.Subtitle.Render(track.AuthorName)

	progressWidth := width - 16
	if progressWidth < 10 {
		progressWidth = 10
	}
	total := "--:--"
	if state.DurationKnown() {
		total = FormatDuration(state.Duration)
	}
	progress := fmt.Sprintf("%s %s %s",
		FormatDuration(state.Position),
		styles.ProgressBar(state.ProgressPercent(), progressWidth),
		total)

	volume := fmt.Sprintf("%s %d%%", styles.VolumeIcon(state.Volume, state.IsMuted), int(state.Volume*100+0.5))
	if state.IsMuted {
		volume += " (muted)"
	}
	lines := []string{
		icon + " " + title,
		"  " + author,
		"",
		progress,
		"",
		styles.Muted.Render(volume),
	}
	if surface != "" {
		lines = append(lines, styles.Dim.Render("📺 "+surface))
	}
	if state.Blocked {
		lines = append(lines, "", styles.Paused.Render("Autoplay was blocked. Press space to play."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// FormatDuration renders d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
