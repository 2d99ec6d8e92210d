package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/remote"
	"github.com/tessro/showcase/internal/tail"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows the audio and video players of a running 'showcase serve'.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := remoteClient()

	kinds := []core.Kind{core.KindAudio, core.KindVideo}
	if cmd.Flags().Changed("video") {
		kinds = []core.Kind{controlKind()}
	}

	var snaps []remote.Snapshot
	for _, kind := range kinds {
		snap, err := client.Snapshot(ctx, kind)
		if err != nil {
			return err
		}
		snaps = append(snaps, snap)
	}

	if JSONOutput() {
		return printJSON(snaps)
	}

	table := NewTableWriter(os.Stdout, "PLAYER", "STATE", "TRACK", "POSITION", "VOLUME")
	for _, s := range snaps {
		c := s.Core()
		state, track, position := "idle", "-", "-"
		if c.HasTrack() {
			state = "paused"
			if c.State.IsPlaying {
				state = "playing"
			} else if c.State.Blocked {
				state = "blocked"
			}
			track = TruncateString(fmt.Sprintf("%s — %s", c.Track.Title, c.Track.AuthorName), 40)
			position = tail.FormatClock(c.State.Position) + " / " + FormatDuration(c.State.Duration)
		}
		volume := fmt.Sprintf("%d%%", int(c.State.Volume*100+0.5))
		if c.State.IsMuted {
			volume += " (muted)"
		}
		table.Row(string(c.Kind), StatusIcon(c.State.IsPlaying)+" "+state, track, position, volume)
	}
	table.Flush()
	return nil
}
