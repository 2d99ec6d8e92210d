package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/engine/sim"
	apperr "github.com/tessro/showcase/internal/errors"
	"github.com/tessro/showcase/internal/player"
)

type fakePlayer struct {
	coords map[core.Kind]*player.Coordinator
	tracks map[string]core.Track
}

func (f *fakePlayer) Coordinator(kind core.Kind) *player.Coordinator {
	return f.coords[kind]
}

func (f *fakePlayer) Play(_ context.Context, kind core.Kind, id string, autoplay bool) (core.Track, error) {
	t, ok := f.tracks[id]
	if !ok {
		return core.Track{}, fmt.Errorf("lookup %q: %w", id, apperr.ErrTrackNotFound)
	}
	return t, f.coords[kind].LoadTrack(t, autoplay)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakePlayer, *Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	audio := player.New(core.KindAudio, sim.New(), player.WithLogger(logger))
	video := player.New(core.KindVideo, sim.New(), player.WithLogger(logger))
	t.Cleanup(func() {
		audio.Close()
		video.Close()
	})

	p := &fakePlayer{
		coords: map[core.Kind]*player.Coordinator{
			core.KindAudio: audio,
			core.KindVideo: video,
		},
		tracks: map[string]core.Track{
			"7": {ID: "7", Title: "Night Drive", SourceURL: "https://media.example.edu/uploads/7.mp3"},
			"8": {ID: "8", Title: "No File"},
		},
	}

	s := NewServer(p, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.StartHubs(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, p, s
}

func decodeSnapshot(t *testing.T, resp *http.Response) Snapshot {
	t.Helper()
	defer resp.Body.Close()
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestGetSnapshot(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/player/audio")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	snap := decodeSnapshot(t, resp)
	if snap.Kind != core.KindAudio {
		t.Errorf("kind = %q, want %q", snap.Kind, core.KindAudio)
	}
	if snap.Track != nil {
		t.Errorf("track = %+v, want nil", snap.Track)
	}
	if snap.Volume != 0.7 {
		t.Errorf("volume = %v, want 0.7", snap.Volume)
	}
}

func TestUnknownKind(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/player/podcast")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestLoadAndToggle(t *testing.T) {
	ts, p, _ := newTestServer(t)

	resp := post(t, ts.URL+"/player/audio/load", `{"id":"7"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	snap := decodeSnapshot(t, resp)
	if snap.Track == nil || snap.Track.ID != "7" {
		t.Fatalf("track = %+v, want id 7", snap.Track)
	}
	if !snap.IsPlaying {
		t.Error("is_playing = false after autoplay load")
	}

	snap = decodeSnapshot(t, post(t, ts.URL+"/player/audio/toggle", ""))
	if snap.IsPlaying {
		t.Error("is_playing = true after toggle")
	}

	// The video coordinator is untouched.
	if p.coords[core.KindVideo].Snapshot().HasTrack() {
		t.Error("video coordinator has a track")
	}
}

func TestLoadWithoutAutoplay(t *testing.T) {
	ts, _, _ := newTestServer(t)

	snap := decodeSnapshot(t, post(t, ts.URL+"/player/audio/load", `{"id":"7","autoplay":false}`))
	if snap.IsPlaying {
		t.Error("is_playing = true, want false")
	}
}

func TestLoadErrors(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing id", `{}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown track", `{"id":"404"}`, http.StatusNotFound},
		{"no source", `{"id":"8"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/player/audio/load", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestSeekAndVolume(t *testing.T) {
	ts, p, _ := newTestServer(t)
	resp := post(t, ts.URL+"/player/audio/load", `{"id":"7","autoplay":false}`)
	resp.Body.Close()

	resp = post(t, ts.URL+"/player/audio/seek?t=12.5", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seek status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := p.coords[core.KindAudio].Snapshot().State.Position; got != 12500*time.Millisecond {
		t.Errorf("position = %v, want 12.5s", got)
	}

	snap := decodeSnapshot(t, post(t, ts.URL+"/player/audio/volume?v=0", ""))
	if snap.Volume != 0 || !snap.IsMuted {
		t.Errorf("volume = %v muted = %v, want 0 and muted", snap.Volume, snap.IsMuted)
	}

	snap = decodeSnapshot(t, post(t, ts.URL+"/player/audio/mute", ""))
	if snap.IsMuted || snap.Volume != 0.7 {
		t.Errorf("after unmute volume = %v muted = %v, want 0.7 and unmuted", snap.Volume, snap.IsMuted)
	}
}

func TestBadParams(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, path := range []string{"/player/audio/seek?t=abc", "/player/audio/volume", "/player/audio/volume?v=loud"} {
		resp := post(t, ts.URL+path, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, http.StatusBadRequest)
		}
	}

	resp := post(t, ts.URL+"/player/audio/rewind", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown command status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestStop(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := post(t, ts.URL+"/player/audio/load", `{"id":"7"}`)
	resp.Body.Close()

	snap := decodeSnapshot(t, post(t, ts.URL+"/player/audio/stop", ""))
	if snap.Track != nil || snap.IsPlaying || snap.Position != 0 {
		t.Errorf("after stop = %+v, want empty session", snap)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := post(t, ts.URL+"/player/audio/toggle", "")
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), `showcase_player_commands_total{command="toggle",kind="audio"} 1`) {
		t.Errorf("metrics missing toggle command counter:\n%s", body)
	}
}

func TestWebsocketStream(t *testing.T) {
	ts, p, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/player/audio/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the hub a moment to register the client before loading.
	time.Sleep(50 * time.Millisecond)
	if err := p.coords[core.KindAudio].LoadTrack(p.tracks["7"], true); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var snap Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read: %v", err)
		}
		if snap.Track != nil && snap.Track.ID == "7" && snap.IsPlaying {
			return
		}
	}
}

func TestHubSkipsDuplicateSnapshots(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewMetrics()
	h := NewHub(core.KindAudio, logger, m)

	track := &core.Track{ID: "1", SourceURL: "a.mp3"}
	h.broadcast(core.Snapshot{Kind: core.KindAudio, Seq: 1, Track: track})
	first := h.Last()
	h.broadcast(core.Snapshot{Kind: core.KindAudio, Seq: 2, Track: track})
	if string(h.Last()) != string(first) {
		t.Error("duplicate snapshot replaced last payload")
	}

	h.broadcast(core.Snapshot{Kind: core.KindAudio, Seq: 3, Track: track, State: core.PlaybackState{IsPlaying: true}})
	var snap Snapshot
	if err := json.Unmarshal(h.Last(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Seq != 3 || !snap.IsPlaying {
		t.Errorf("last = %+v, want seq 3 playing", snap)
	}
}
