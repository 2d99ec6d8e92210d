package cli

import (
	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/log"
	"github.com/tessro/showcase/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive showcase browser",
	Long: `Launch the interactive terminal showcase.

Pages:
  • Browse - approved audio and video posts
  • Listen - full audio player
  • Watch  - full video player (hosts the video window)

A mini player stays at the bottom while something is loaded, except on the
full player page of the same kind.

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Filter
  Enter        Open and play
  Esc          Back
  Space        Play/Pause
  [ ]          Seek
  +/-          Volume
  m            Mute`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Redraw interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if tuiRefresh > 0 {
		cfg.TUI.RefreshInterval = tuiRefresh
	}
	return tui.Run(cmd.Context(), cfg, log.Component("tui"))
}
