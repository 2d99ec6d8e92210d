package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors, filled in by Apply from a catppuccin flavour.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor

	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Info    lipgloss.TerminalColor

	Border    lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	TextDim   lipgloss.TerminalColor
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	ErrorText lipgloss.Style
	Selected  lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Apply("auto")
}

// Apply switches the palette. "dark" uses Mocha, "light" uses Latte and
// anything else adapts to the terminal background.
func Apply(theme string) {
	light, dark := catppuccin.Latte, catppuccin.Mocha
	pick := func(c func(catppuccin.Flavour) catppuccin.Color) lipgloss.TerminalColor {
		switch theme {
		case "dark":
			return lipgloss.Color(c(dark).Hex)
		case "light":
			return lipgloss.Color(c(light).Hex)
		default:
			return lipgloss.AdaptiveColor{Light: c(light).Hex, Dark: c(dark).Hex}
		}
	}

	Primary = pick(catppuccin.Flavour.Mauve)
	Secondary = pick(catppuccin.Flavour.Teal)
	Accent = pick(catppuccin.Flavour.Peach)
	Success = pick(catppuccin.Flavour.Green)
	Warning = pick(catppuccin.Flavour.Yellow)
	Error = pick(catppuccin.Flavour.Red)
	Info = pick(catppuccin.Flavour.Blue)
	Border = pick(catppuccin.Flavour.Surface2)
	Text = pick(catppuccin.Flavour.Text)
	TextMuted = pick(catppuccin.Flavour.Subtext0)
	TextDim = pick(catppuccin.Flavour.Overlay0)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
	Selected = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	if width < 0 {
		width = 0
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// KindIcon returns an icon for a media kind.
func KindIcon(kind string) string {
	switch kind {
	case "audio":
		return "🎵"
	case "video":
		return "🎬"
	default:
		return "📝"
	}
}

// VolumeIcon returns a speaker icon for the volume level.
func VolumeIcon(volume float64, muted bool) string {
	switch {
	case muted || volume == 0:
		return "🔇"
	case volume < 0.5:
		return "🔉"
	default:
		return "🔊"
	}
}
