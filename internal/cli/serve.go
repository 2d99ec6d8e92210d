package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/log"
	"github.com/tessro/showcase/internal/remote"
	"github.com/tessro/showcase/internal/session"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the players headless with a remote control API",
	Long: `Start the audio and video players and expose them over HTTP.

Endpoints:
  GET  /player/{audio|video}            current snapshot
  POST /player/{kind}/toggle|play|pause|stop|mute
  POST /player/{kind}/seek?t=SECONDS
  POST /player/{kind}/volume?v=0..1
  POST /player/{kind}/load              {"id": "...", "autoplay": true}
  GET  /player/{kind}/ws                snapshot stream (websocket)
  GET  /metrics                         Prometheus metrics
  GET  /healthz`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := serveListen
	if addr == "" {
		addr = cfg.Remote.Listen
	}

	sess, err := session.New(ctx, cfg, session.WithLogger(log.Component("session")))
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := remote.NewServer(sess, log.Component("remote"))
	return srv.ListenAndServe(ctx, addr)
}

// remoteClient returns a client for the configured remote server.
func remoteClient() *remote.Client {
	addr := remoteAddr
	if addr == "" {
		addr = cfg.Remote.Listen
	}
	return remote.NewClient(addr)
}
