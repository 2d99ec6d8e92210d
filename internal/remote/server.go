// Package remote serves the coordinators over HTTP so phones, scripts and
// other terminals can drive the same playback session.
package remote

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/core"
)

const shutdownTimeout = 10 * time.Second

// Server is the remote control server.
type Server struct {
	player  Player
	log     logrus.FieldLogger
	metrics *Metrics
	hubs    map[core.Kind]*Hub
	router  chi.Router
}

// NewServer builds the router for p.
func NewServer(p Player, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "remote")
	m := NewMetrics()

	hubs := map[core.Kind]*Hub{
		core.KindAudio: NewHub(core.KindAudio, log, m),
		core.KindVideo: NewHub(core.KindVideo, log, m),
	}
	h := NewHandler(p, hubs, log, m)

	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Use(RequestMiddleware(m))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	h.Routes(r)

	return &Server{player: p, log: log, metrics: m, hubs: hubs, router: r}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartHubs connects each hub to its coordinator until ctx is done.
func (s *Server) StartHubs(ctx context.Context) {
	for kind, hub := range s.hubs {
		c := s.player.Coordinator(kind)
		if c == nil {
			continue
		}
		go hub.Run(ctx, c.Watch(ctx))
	}
}

// ListenAndServe serves on addr until ctx is done, then drains
// connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.StartHubs(ctx)

	srv := &http.Server{Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("remote server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received, draining connections")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
