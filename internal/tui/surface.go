package tui

import (
	"sync"

	"github.com/tessro/showcase/internal/player"
)

// pageSurface is a place in the terminal UI that can host the video.
// The mpv window follows whichever surface holds the handle; the UI only
// reports where the picture currently lives.
type pageSurface struct {
	name string

	mu     sync.Mutex
	handle *player.Handle
}

func newPageSurface(name string) *pageSurface {
	return &pageSurface{name: name}
}

func (s *pageSurface) Attach(h *player.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *pageSurface) Detach(h *player.Handle) {
	s.mu.Lock()
	if s.handle == h {
		s.handle = nil
	}
	s.mu.Unlock()
}

func (s *pageSurface) hosting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

func (s *pageSurface) String() string {
	return s.name
}
