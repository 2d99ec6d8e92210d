package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
	"github.com/tessro/showcase/internal/player"
)

// Player is the part of a session the remote API drives.
type Player interface {
	Coordinator(kind core.Kind) *player.Coordinator
	Play(ctx context.Context, kind core.Kind, id string, autoplay bool) (core.Track, error)
}

// Handler exposes player HTTP endpoints using go-chi.
type Handler struct {
	player   Player
	hubs     map[core.Kind]*Hub
	log      logrus.FieldLogger
	metrics  *Metrics
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler. Metrics may be nil to disable metric
// recording (e.g. in tests).
func NewHandler(p Player, hubs map[core.Kind]*Hub, log logrus.FieldLogger, m *Metrics) *Handler {
	return &Handler{
		player:  p,
		hubs:    hubs,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts the player endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/player/{kind}", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Get("/ws", h.Stream)
		r.Post("/load", h.Load)
		r.Post("/seek", h.Seek)
		r.Post("/volume", h.Volume)
		r.Post("/{command}", h.Command)
	})
}

func (h *Handler) coordinator(w http.ResponseWriter, r *http.Request) (*player.Coordinator, core.Kind, bool) {
	kind := core.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeError(w, http.StatusNotFound, "unknown media kind")
		return nil, kind, false
	}
	c := h.player.Coordinator(kind)
	if c == nil {
		writeError(w, http.StatusNotFound, "unknown media kind")
		return nil, kind, false
	}
	return c, kind, true
}

// GetSnapshot handles GET /player/{kind}.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSnapshot(c.Snapshot()))
}

// Command handles POST /player/{kind}/{command} for toggle, play, pause,
// stop and mute.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	c, kind, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	command := chi.URLParam(r, "command")
	var err error
	switch command {
	case "toggle":
		err = c.TogglePlay()
	case "play":
		err = c.Play()
	case "pause":
		err = c.Pause()
	case "stop":
		err = c.Stop()
	case "mute":
		err = c.ToggleMute()
	default:
		writeError(w, http.StatusNotFound, "unknown command")
		return
	}
	h.respond(w, c, kind, command, err)
}

// Seek handles POST /player/{kind}/seek?t=<seconds>.
func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	c, kind, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	secs, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "t must be a number of seconds")
		return
	}
	h.respond(w, c, kind, "seek", c.Seek(time.Duration(secs*float64(time.Second))))
}

// Volume handles POST /player/{kind}/volume?v=<0-1>.
func (h *Handler) Volume(w http.ResponseWriter, r *http.Request) {
	c, kind, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(r.URL.Query().Get("v"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "v must be a number between 0 and 1")
		return
	}
	h.respond(w, c, kind, "volume", c.SetVolume(v))
}

type loadRequest struct {
	ID       string `json:"id"`
	Autoplay *bool  `json:"autoplay"`
}

// Load handles POST /player/{kind}/load with body {"id": "...", "autoplay": true}.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	c, kind, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"id\": \"...\"}")
		return
	}
	autoplay := req.Autoplay == nil || *req.Autoplay

	_, err := h.player.Play(r.Context(), kind, req.ID, autoplay)
	h.respond(w, c, kind, "load", err)
}

// Stream handles GET /player/{kind}/ws.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	_, kind, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	hub, ok := h.hubs[kind]
	if !ok {
		writeError(w, http.StatusNotFound, "no stream for media kind")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	hub.Serve(conn)
}

func (h *Handler) respond(w http.ResponseWriter, c *player.Coordinator, kind core.Kind, command string, err error) {
	h.metrics.IncCommand(string(kind), command)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.log.WithError(err).WithField("command", command).Error("player command failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newSnapshot(c.Snapshot()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrNoSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrEngineClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
