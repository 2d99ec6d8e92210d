package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/tail"
)

var (
	tailVideo     bool
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch a running 'showcase serve' and print playback changes as they happen.

Events tracked:
  - Track changes
  - Track completions
  - Pause/Resume
  - Seeks
  - Volume and mute changes`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&remoteAddr, "remote", "r", "", "remote server address (default from config)")
	tailCmd.Flags().BoolVar(&tailVideo, "video", false, "follow the video player instead of audio")
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	kind := core.KindAudio
	if tailVideo {
		kind = core.KindVideo
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := remoteClient().Dial(ctx, kind)
	if err != nil {
		return err
	}
	defer stream.Close()

	return follow(ctx, tail.NewWatcher(stream), newTailFormatter(), nil)
}

func newTailFormatter() *tail.Formatter {
	return tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)
}

// follow prints watcher events until ctx is done or until returns true for
// an event.
func follow(ctx context.Context, watcher *tail.Watcher, formatter *tail.Formatter, until func(tail.Event) bool) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return ignoreCanceled(<-errCh)
			}
			fmt.Println(formatter.Format(event))
			if until != nil && until(event) {
				watcher.Stop()
				return nil
			}

		case err := <-errCh:
			return ignoreCanceled(err)
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
