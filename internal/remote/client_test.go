package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

func TestClientCommands(t *testing.T) {
	ts, p, _ := newTestServer(t)
	c := NewClient(ts.URL)
	ctx := context.Background()

	snap, err := c.Load(ctx, core.KindAudio, "7", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Track == nil || snap.Track.ID != "7" || snap.IsPlaying {
		t.Errorf("Load = %+v, want track 7 paused", snap)
	}

	if snap, err = c.Command(ctx, core.KindAudio, "toggle"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !snap.IsPlaying {
		t.Error("toggle did not start playback")
	}

	if _, err = c.Seek(ctx, core.KindAudio, 30*time.Second); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if got := p.coords[core.KindAudio].Snapshot().State.Position; got != 30*time.Second {
		t.Errorf("position = %v, want 30s", got)
	}

	if snap, err = c.SetVolume(ctx, core.KindAudio, 0.25); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if snap.Volume != 0.25 {
		t.Errorf("volume = %v, want 0.25", snap.Volume)
	}

	got, err := c.Snapshot(ctx, core.KindAudio)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Core().State.Position != 30*time.Second {
		t.Errorf("Core().Position = %v, want 30s", got.Core().State.Position)
	}
}

func TestClientErrors(t *testing.T) {
	ts, _, _ := newTestServer(t)
	c := NewClient(ts.URL)
	ctx := context.Background()

	if _, err := c.Load(ctx, core.KindAudio, "404", true); !errors.Is(err, apperr.ErrTrackNotFound) {
		t.Errorf("Load(unknown) error = %v, want ErrTrackNotFound", err)
	}
	if _, err := c.Load(ctx, core.KindAudio, "8", true); !errors.Is(err, apperr.ErrNoSource) {
		t.Errorf("Load(no source) error = %v, want ErrNoSource", err)
	}
	if _, err := c.Command(ctx, "podcast", "toggle"); err == nil || errors.Is(err, apperr.ErrTrackNotFound) {
		t.Errorf("Command(unknown kind) error = %v, want a plain remote error", err)
	}

	down := NewClient("127.0.0.1:1")
	if _, err := down.Snapshot(ctx, core.KindAudio); !errors.Is(err, apperr.ErrBackendUnavailable) {
		t.Errorf("Snapshot(down) error = %v, want ErrBackendUnavailable", err)
	}
	if apperr.GetSuggestion(func() error { _, err := down.Snapshot(ctx, core.KindAudio); return err }()) == "" {
		t.Error("no suggestion for an unreachable server")
	}
}

func TestClientStream(t *testing.T) {
	ts, p, _ := newTestServer(t)
	c := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	stream, err := c.Dial(ctx, core.KindAudio)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer stream.Close()
	snaps := stream.Watch(ctx)

	time.Sleep(50 * time.Millisecond)
	if err := p.coords[core.KindAudio].LoadTrack(p.tracks["7"], true); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}

	for snap := range snaps {
		if snap.TrackID() == "7" && snap.State.IsPlaying {
			return
		}
	}
	t.Fatal("stream closed before the playing snapshot arrived")
}
