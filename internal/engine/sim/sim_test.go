package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

type eventLog struct {
	mu     sync.Mutex
	events []core.Event
}

func (l *eventLog) sink(ev core.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) types() []core.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func equalTypes(a, b []core.EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlayWithoutLoad(t *testing.T) {
	e := New()
	if err := e.Play(); !errors.Is(err, apperr.ErrNoTrackLoaded) {
		t.Errorf("Play error = %v, want ErrNoTrackLoaded", err)
	}
}

func TestLoadPlayAdvance(t *testing.T) {
	var log eventLog
	e := New(WithDurationResolver(func(string) time.Duration { return 3 * time.Second }))
	e.Attach(log.sink)

	if err := e.Load(7, "a.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.Advance(time.Second)
	e.Advance(5 * time.Second)

	want := []core.EventType{
		core.EventPlay,
		core.EventMetadataLoaded,
		core.EventTimeUpdate,
		core.EventTimeUpdate,
		core.EventPause,
		core.EventEnded,
	}
	if got := log.types(); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	for _, ev := range log.events {
		if ev.Gen != 7 {
			t.Errorf("%s Gen = %d, want 7", ev.Type, ev.Gen)
		}
	}
	if e.Position() != 3*time.Second {
		t.Errorf("Position = %v, want %v", e.Position(), 3*time.Second)
	}
	if e.Playing() {
		t.Error("Playing = true after end")
	}
}

func TestBlockedPlay(t *testing.T) {
	var log eventLog
	e := New(WithAutoplayBlocked(true))
	e.Attach(log.sink)
	e.Load(1, "a.mp3")

	if err := e.Play(); !errors.Is(err, apperr.ErrPlaybackBlocked) {
		t.Errorf("Play error = %v, want ErrPlaybackBlocked", err)
	}
	if len(log.types()) != 0 {
		t.Errorf("events = %v, want none", log.types())
	}

	e.SetBlocked(false)
	if err := e.Play(); err != nil {
		t.Errorf("Play after unblock: %v", err)
	}
}

func TestSetPositionClamps(t *testing.T) {
	e := New()
	e.Load(1, "a.mp3")
	e.SetDuration(10 * time.Second)

	e.SetPosition(-time.Second)
	if e.Position() != 0 {
		t.Errorf("Position = %v, want 0", e.Position())
	}
	e.SetPosition(time.Minute)
	if e.Position() != 10*time.Second {
		t.Errorf("Position = %v, want %v", e.Position(), 10*time.Second)
	}
}

func TestUnloadAndClose(t *testing.T) {
	e := New()
	e.Load(1, "a.mp3")
	e.Play()

	if err := e.Unload(); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if e.Source() != "" || e.Playing() {
		t.Errorf("after Unload: source %q playing %v", e.Source(), e.Playing())
	}

	e.Close()
	if err := e.Load(2, "b.mp3"); !errors.Is(err, apperr.ErrEngineClosed) {
		t.Errorf("Load after Close = %v, want ErrEngineClosed", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := New()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := e.Run(ctx, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run error = %v, want DeadlineExceeded", err)
	}
}
