package player

import (
	"sync"
	"testing"
	"time"

	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/engine/sim"
)

// screen records which handle it hosts.
type screen struct {
	name    string
	handle  *Handle
	attachs int
}

func (s *screen) Attach(h *Handle) {
	s.handle = h
	s.attachs++
}

func (s *screen) Detach(h *Handle) {
	if s.handle == h {
		s.handle = nil
	}
}

func hosts(surfaces ...*screen) []string {
	var names []string
	for _, s := range surfaces {
		if s.handle != nil {
			names = append(names, s.name)
		}
	}
	return names
}

func TestSurfaceRegistryFallback(t *testing.T) {
	r := NewSurfaceRegistry(core.KindVideo, nil)

	off, ok := r.Current().(*Offscreen)
	if !ok {
		t.Fatalf("Current = %T, want *Offscreen", r.Current())
	}
	if !off.Hosting() {
		t.Error("Offscreen.Hosting = false, want true")
	}
	if r.Fallback() != r.Current() {
		t.Error("Fallback != Current on a fresh registry")
	}
}

func TestSingleActiveTarget(t *testing.T) {
	fallback := &screen{name: "fallback"}
	watch := &screen{name: "watch"}
	mini := &screen{name: "mini"}
	r := NewSurfaceRegistry(core.KindVideo, fallback)

	r.Set(watch)
	if got := hosts(fallback, watch, mini); len(got) != 1 || got[0] != "watch" {
		t.Errorf("hosting = %v, want [watch]", got)
	}

	r.Set(mini)
	if got := hosts(fallback, watch, mini); len(got) != 1 || got[0] != "mini" {
		t.Errorf("hosting = %v, want [mini]", got)
	}
	if r.Current() != Surface(mini) {
		t.Errorf("Current = %v, want mini", r.Current())
	}
	if mini.handle != r.Handle() {
		t.Error("mini does not hold the original handle")
	}
	if mini.handle.Kind() != core.KindVideo {
		t.Errorf("handle Kind = %q, want video", mini.handle.Kind())
	}
}

func TestSetSameTargetIsNoop(t *testing.T) {
	watch := &screen{name: "watch"}
	r := NewSurfaceRegistry(core.KindVideo, nil)

	r.Set(watch)
	r.Set(watch)
	if watch.attachs != 1 {
		t.Errorf("attach calls = %d, want 1", watch.attachs)
	}
}

func TestSetNilSelectsFallback(t *testing.T) {
	fallback := &screen{name: "fallback"}
	watch := &screen{name: "watch"}
	r := NewSurfaceRegistry(core.KindVideo, fallback)

	r.Set(watch)
	r.Set(nil)
	if got := hosts(fallback, watch); len(got) != 1 || got[0] != "fallback" {
		t.Errorf("hosting = %v, want [fallback]", got)
	}
}

func TestClearOnlyCurrent(t *testing.T) {
	fallback := &screen{name: "fallback"}
	oldPage := &screen{name: "old"}
	newPage := &screen{name: "new"}
	r := NewSurfaceRegistry(core.KindVideo, fallback)

	r.Set(oldPage)
	r.Set(newPage)

	// The old page unmounts after the new one mounted.
	r.Clear(oldPage)
	if got := hosts(fallback, oldPage, newPage); len(got) != 1 || got[0] != "new" {
		t.Errorf("hosting = %v, want [new]", got)
	}

	r.Clear(newPage)
	if got := hosts(fallback, oldPage, newPage); len(got) != 1 || got[0] != "fallback" {
		t.Errorf("hosting = %v, want [fallback]", got)
	}

	// Clearing the fallback keeps it.
	r.Clear(fallback)
	if r.Current() != Surface(fallback) {
		t.Error("Clear(fallback) moved the handle")
	}
}

func TestConcurrentTargetSwitches(t *testing.T) {
	r := NewSurfaceRegistry(core.KindVideo, nil)

	pages := make([]*Offscreen, 6)
	for i := range pages {
		pages[i] = &Offscreen{}
	}

	var wg sync.WaitGroup
	for _, p := range pages {
		wg.Add(1)
		go func(p *Offscreen) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Set(p)
				r.Clear(p)
			}
		}(p)
	}
	wg.Wait()

	hosting := 0
	if r.Fallback().(*Offscreen).Hosting() {
		hosting++
	}
	for _, p := range pages {
		if p.Hosting() {
			hosting++
		}
	}
	if hosting != 1 {
		t.Errorf("surfaces hosting = %d, want 1", hosting)
	}
}

// TestSharedSessionAcrossSurfaces follows one video from its watch page to
// the mini player.
func TestSharedSessionAcrossSurfaces(t *testing.T) {
	eng := sim.New()
	fallback := &screen{name: "fallback"}
	v := NewVideo(eng, fallback)
	defer v.Close()

	var page, mini recorder
	pageSub := v.Subscribe(page.observe)
	v.Subscribe(mini.observe)

	watch := &screen{name: "watch"}
	v.SetPortalTarget(watch)

	track := core.Track{
		ID:         "v42",
		Title:      "Spring Recital",
		AuthorName: "Nadia",
		SourceURL:  "https://media.example.edu/uploads/v42.mp4",
	}
	if err := v.LoadTrack(track, false); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if d := v.Snapshot().State.Duration; d != 0 {
		t.Errorf("Duration before metadata = %v, want 0", d)
	}

	eng.SetDuration(245 * time.Second)
	if err := v.Seek(245 * time.Second); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos := v.Snapshot().State.Position; pos != 245*time.Second {
		t.Errorf("Position = %v, want %v", pos, 245*time.Second)
	}

	if err := v.TogglePlay(); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	if !page.snapshot().State.IsPlaying {
		t.Error("page: IsPlaying = false, want true")
	}

	// Navigate away: the watch page releases the picture and unmounts.
	v.ClearPortalTarget(watch)
	pageSub.Unsubscribe()
	if v.PortalTarget() != Surface(fallback) {
		t.Errorf("PortalTarget = %v, want fallback", v.PortalTarget())
	}

	got := mini.snapshot()
	if got.TrackID() != "v42" || !got.State.IsPlaying {
		t.Errorf("mini: (%q, playing %v), want (v42, playing true)", got.TrackID(), got.State.IsPlaying)
	}

	if err := v.TogglePlay(); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	if mini.snapshot().State.IsPlaying {
		t.Error("mini: IsPlaying = true after pause, want false")
	}
	if v.Snapshot().State.IsPlaying {
		t.Error("coordinator: IsPlaying = true after pause, want false")
	}
	if eng.Loads() != 1 {
		t.Errorf("engine loads = %d, want 1", eng.Loads())
	}
}
