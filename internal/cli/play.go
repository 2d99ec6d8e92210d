package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/log"
	"github.com/tessro/showcase/internal/player"
	"github.com/tessro/showcase/internal/session"
	"github.com/tessro/showcase/internal/tail"
	"github.com/tessro/showcase/internal/wizard"
	"golang.org/x/term"
)

var (
	playVideo      bool
	playNoAutoplay bool
)

var playCmd = &cobra.Command{
	Use:   "play [id]",
	Short: "Play a post and follow it until it ends",
	Long: `Play a single catalog post in this process. Playback stops when the
track ends or on Ctrl+C. Without an id, a picker over the catalog opens.

Examples:
  showcase play 12
  showcase play 42 --video
  showcase play`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playVideo, "video", false, "play from the video catalog")
	playCmd.Flags().BoolVar(&playNoAutoplay, "no-autoplay", false, "load paused")
	playCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	kind := core.KindAudio
	if playVideo {
		kind = core.KindVideo
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(ctx, cfg, session.WithLogger(log.Component("session")))
	if err != nil {
		return err
	}
	defer sess.Close()

	id := ""
	if wizard.NeedsTrack(args) {
		picked, err := pickTrack(ctx, sess)
		if err != nil {
			return err
		}
		if picked == nil {
			return nil
		}
		id, kind = picked.Track.ID, picked.Track.Kind
	} else {
		id = args[0]
	}

	coord := sess.Coordinator(kind)
	track, err := sess.Play(ctx, kind, id, !playNoAutoplay)
	if err != nil {
		return err
	}

	if JSONOutput() {
		if err := printJSON(track); err != nil {
			return err
		}
	} else if term.IsTerminal(int(os.Stdout.Fd())) {
		return playInteractive(ctx, coord)
	}

	ended := func(e tail.Event) bool {
		return e.Type == tail.EventTrackEnded || e.Type == tail.EventStopped
	}
	return follow(ctx, tail.NewWatcher(coord), newTailFormatter(), ended)
}

// pickTrack prompts for a track when running in a terminal.
func pickTrack(ctx context.Context, sess *session.Session) (*catalog.Item, error) {
	interactive := wizard.NewInteractive()
	if !interactive.CanInteract() {
		return nil, fmt.Errorf("a post id is required when not running in a terminal")
	}

	result := sess.Catalog.ListAll(ctx)
	if len(result.Data) == 0 && result.HasErrors() {
		return nil, errors.New(result.ErrorSummary())
	}
	return interactive.PromptTrack(result.Data)
}

// playInteractive redraws one status line until the track ends.
func playInteractive(ctx context.Context, coord *player.Coordinator) error {
	snaps := coord.Watch(ctx)
	interval := time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last core.Snapshot
	draw := func() {
		fmt.Printf("\r\033[K%s", describeSnapshot(last))
	}
	defer fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			last = snap
			draw()
			if !snap.HasTrack() || (!snap.State.IsPlaying && snap.State.DurationKnown() && snap.State.Position >= snap.State.Duration) {
				return nil
			}
		case <-ticker.C:
			draw()
		}
	}
}
