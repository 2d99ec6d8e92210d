package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/remote"
	"github.com/tessro/showcase/internal/tail"
)

var (
	remoteAddr   string
	controlVideo bool
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle play/pause",
	Long:  `Toggle playback on a running 'showcase serve'.`,
	Args:  cobra.NoArgs,
	RunE:  runCommand("toggle"),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Args:  cobra.NoArgs,
	RunE:  runCommand("pause"),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Args:  cobra.NoArgs,
	RunE:  runCommand("play"),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop and unload the current track",
	Args:  cobra.NoArgs,
	RunE:  runCommand("stop"),
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Toggle mute",
	Args:  cobra.NoArgs,
	RunE:  runCommand("mute"),
}

var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek within the current track",
	Long: `Seek to a position. Positions are seconds or m:ss; a leading + or -
seeks relative to the current position.

Examples:
  showcase seek 1:30
  showcase seek 90
  showcase seek +10
  showcase seek -15 --video`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  showcase volume 50      # Set volume to 50%
  showcase volume --up    # Increase volume by 10%
  showcase volume --down  # Decrease volume by 10%`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

var loadNoAutoplay bool

var loadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Load a post into the running player",
	Long: `Load a catalog post into a running 'showcase serve'. Loading the post
that is already loaded keeps its position.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	for _, c := range []*cobra.Command{toggleCmd, pauseCmd, resumeCmd, stopCmd, muteCmd, seekCmd, volumeCmd, loadCmd, statusCmd} {
		c.Flags().StringVarP(&remoteAddr, "remote", "r", "", "remote server address (default from config)")
		c.Flags().BoolVar(&controlVideo, "video", false, "control the video player instead of audio")
		rootCmd.AddCommand(c)
	}
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 10%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 10%")
	loadCmd.Flags().BoolVar(&loadNoAutoplay, "no-autoplay", false, "load paused")
}

func controlKind() core.Kind {
	if controlVideo {
		return core.KindVideo
	}
	return core.KindAudio
}

func runCommand(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		snap, err := remoteClient().Command(cmd.Context(), controlKind(), command)
		if err != nil {
			return fmt.Errorf("failed to %s: %w", command, err)
		}
		return printSnapshot(snap)
	}
}

func runSeek(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := remoteClient()
	kind := controlKind()

	arg := args[0]
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")
	offset, err := parsePosition(strings.TrimLeft(arg, "+-"))
	if err != nil {
		return err
	}

	target := offset
	if relative {
		snap, err := client.Snapshot(ctx, kind)
		if err != nil {
			return err
		}
		current := snap.Core().State.Position
		if strings.HasPrefix(arg, "-") {
			target = current - offset
		} else {
			target = current + offset
		}
	}

	snap, err := client.Seek(ctx, kind, target)
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return printSnapshot(snap)
}

// parsePosition accepts seconds ("90", "12.5") or a clock ("1:30").
func parsePosition(s string) (time.Duration, error) {
	if strings.Contains(s, ":") {
		return catalog.ParseDuration(s)
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid position %q: use seconds or m:ss", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := remoteClient()
	kind := controlKind()

	var level float64
	switch {
	case volumeUp || volumeDown:
		snap, err := client.Snapshot(ctx, kind)
		if err != nil {
			return err
		}
		level = snap.Volume
		if volumeUp {
			level += 0.1
		} else {
			level -= 0.1
		}
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		level = float64(n) / 100
	default:
		snap, err := client.Snapshot(ctx, kind)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	}

	snap, err := client.SetVolume(ctx, kind, level)
	if err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return printSnapshot(snap)
}

func runLoad(cmd *cobra.Command, args []string) error {
	snap, err := remoteClient().Load(cmd.Context(), controlKind(), args[0], !loadNoAutoplay)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	return printSnapshot(snap)
}

// printSnapshot prints one player's state on a line, or as JSON.
func printSnapshot(snap remote.Snapshot) error {
	if JSONOutput() {
		return printJSON(snap)
	}
	fmt.Println(describeSnapshot(snap.Core()))
	return nil
}

func describeSnapshot(s core.Snapshot) string {
	if !s.HasTrack() {
		return fmt.Sprintf("%s: nothing loaded", s.Kind)
	}

	icon := "⏸"
	if s.State.IsPlaying {
		icon = "▶"
	}
	volume := fmt.Sprintf("%d%%", int(s.State.Volume*100+0.5))
	if s.State.IsMuted {
		volume = "muted"
	}
	line := fmt.Sprintf("%s %s — %s  %s %s %s  🔊 %s",
		icon, s.Track.Title, s.Track.AuthorName,
		tail.FormatClock(s.State.Position), FormatProgress(s.State.Position, s.State.Duration, 20),
		FormatDuration(s.State.Duration), volume)
	if s.State.Blocked {
		line += "  (autoplay blocked)"
	}
	return line
}
