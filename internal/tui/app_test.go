package tui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tessro/showcase/internal/config"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/engine/sim"
	"github.com/tessro/showcase/internal/nav"
	"github.com/tessro/showcase/internal/player"
	"github.com/tessro/showcase/internal/session"
)

const (
	audioJSON = `[{"id":"a7","title":"Night Raga","authorName":"Arif","type":"audio","status":"approved","views":1520,
"media":[{"file_path":"uploads/audio/raga.mp3","file_type":"mp3"}],"duration":"2:00"}]`
	videoJSON = `[{"id":"v42","title":"Campus Film","authorName":"Nadia","type":"video","status":"approved",
"media":[{"file_path":"uploads/video/film.mp4","file_type":"mp4"}]},
{"id":"v43","title":"Draft Cut","authorName":"Nadia","type":"video","status":"approved","media":[]}]`
)

func newTestModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "audio":
			fmt.Fprint(w, audioJSON)
		case "video":
			fmt.Fprint(w, videoJSON)
		default:
			fmt.Fprint(w, "[]")
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Backend.APIURL = srv.URL
	cfg.Backend.MediaURL = "http://media.example.edu"

	logger, _ := test.NewNullLogger()
	sess, err := session.New(context.Background(), cfg,
		session.WithLogger(logger),
		session.WithEngineFactory(func(context.Context, core.Kind) (core.Engine, error) {
			return sim.New(), nil
		}),
	)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	m := NewModel(context.Background(), sess, logger)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, m.fetchCatalog()())
	return m, sess
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the command it returns, feeding any message
// back into the model.
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, ok := msg.(tea.BatchMsg); !ok {
				m = update(t, m, msg)
			}
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func syncSnapshots(t *testing.T, m Model, sess *session.Session) Model {
	t.Helper()
	for _, kind := range []core.Kind{core.KindAudio, core.KindVideo} {
		m = update(t, m, snapshotMsg(sess.Coordinator(kind).Snapshot()))
	}
	return m
}

func TestCatalogLoaded(t *testing.T) {
	m, _ := newTestModel(t)

	if m.loading {
		t.Error("loading = true after catalog message")
	}
	if len(m.filtered) != 3 {
		t.Errorf("len(filtered) = %d, want 3", len(m.filtered))
	}
	if m.lastError != nil {
		t.Errorf("lastError = %v, want nil", m.lastError)
	}
}

func TestOpenVideoClaimsPortal(t *testing.T) {
	m, sess := newTestModel(t)
	fallback := sess.Video.PortalTarget()

	// Videos are listed first.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = syncSnapshots(t, m, sess)

	if got := m.location.Current(); got != nav.Watch("v42") {
		t.Errorf("location = %q, want %q", got, nav.Watch("v42"))
	}
	if sess.Video.PortalTarget() != player.Surface(m.watchSurface) {
		t.Error("watch page does not host the video")
	}
	if !m.watchSurface.hosting() {
		t.Error("watch surface has no handle")
	}
	snap := sess.Video.Snapshot()
	if snap.TrackID() != "v42" || !snap.State.IsPlaying {
		t.Errorf("video = %q playing=%v, want v42 playing", snap.TrackID(), snap.State.IsPlaying)
	}

	// Leaving the page hands the picture back but keeps playing.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.location.Current() != nav.Home {
		t.Errorf("location = %q, want home", m.location.Current())
	}
	if sess.Video.PortalTarget() != fallback {
		t.Error("video not returned to the fallback surface")
	}
	if !sess.Video.Snapshot().State.IsPlaying {
		t.Error("navigating away stopped playback")
	}
	if !nav.ShowMiniPlayer(core.KindVideo, m.location.Current(), m.snaps[core.KindVideo]) {
		t.Error("mini player hidden on the browse page")
	}
}

func TestOpenUnplayable(t *testing.T) {
	m, sess := newTestModel(t)

	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.location.Current() != nav.Home {
		t.Errorf("location = %q, want home", m.location.Current())
	}
	if m.lastError == nil {
		t.Error("lastError = nil, want a no-media error")
	}
	if sess.Video.Snapshot().HasTrack() {
		t.Error("video coordinator loaded a track")
	}
}

func TestPlaybackKeysFollowPage(t *testing.T) {
	m, sess := newTestModel(t)

	// Typing only updates the text input, so its cursor commands are
	// not run.
	m = update(t, m, runes("/"))
	for _, r := range "raga" {
		m = update(t, m, runes(string(r)))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.filtered) != 1 {
		t.Fatalf("len(filtered) = %d, want 1", len(m.filtered))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = syncSnapshots(t, m, sess)
	if got := m.location.Current(); got != nav.Listen("a7") {
		t.Fatalf("location = %q, want %q", got, nav.Listen("a7"))
	}
	if !sess.Audio.Snapshot().State.IsPlaying {
		t.Fatal("audio not playing after open")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if sess.Audio.Snapshot().State.IsPlaying {
		t.Error("space did not pause audio")
	}

	m = syncSnapshots(t, m, sess)
	m = press(t, m, runes("m"))
	if !sess.Audio.Snapshot().State.IsMuted {
		t.Error("m did not mute audio")
	}
	if sess.Video.Snapshot().State.IsMuted {
		t.Error("m muted the video coordinator")
	}

	m = press(t, m, runes("s"))
	if sess.Audio.Snapshot().HasTrack() {
		t.Error("s did not stop audio")
	}
}

func TestApplySnapshot(t *testing.T) {
	m, _ := newTestModel(t)

	track := &core.Track{ID: "a7", Title: "Night Raga", Kind: core.KindAudio}
	m = update(t, m, snapshotMsg(core.Snapshot{Kind: core.KindAudio, Seq: 5, Track: track,
		State: core.PlaybackState{IsPlaying: true, Duration: 120e9, Position: 100e9}}))
	m = update(t, m, snapshotMsg(core.Snapshot{Kind: core.KindAudio, Seq: 3}))

	if m.snaps[core.KindAudio].Seq != 5 {
		t.Errorf("Seq = %d, want 5 (older snapshot applied)", m.snaps[core.KindAudio].Seq)
	}
	if len(m.history) != 1 || m.history[0].Track.ID != "a7" {
		t.Fatalf("history = %+v, want a7", m.history)
	}
	if m.active != core.KindAudio {
		t.Errorf("active = %q, want audio", m.active)
	}

	m = update(t, m, snapshotMsg(core.Snapshot{Kind: core.KindAudio, Seq: 6, Track: track,
		State: core.PlaybackState{Duration: 120e9, Position: 120e9}}))
	if !m.history[0].Finished {
		t.Error("history entry not marked finished after the track ended")
	}
}

func TestView(t *testing.T) {
	m, sess := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Campus Film") {
		t.Error("browse view does not list the catalog")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = syncSnapshots(t, m, sess)
	view = m.View()
	if !strings.Contains(view, "Now Watching") {
		t.Error("watch page does not show the player")
	}
	if !strings.Contains(view, "watch page") {
		t.Error("watch page does not report hosting the video")
	}

	m = press(t, m, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay not shown")
	}
}
