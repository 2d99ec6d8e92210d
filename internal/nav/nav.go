// Package nav models where the user is in the app. Navigating never
// touches playback; it only decides which surfaces are on screen.
package nav

import (
	"strings"

	"github.com/tessro/showcase/internal/core"
)

// Location is a route path such as "/", "/audio/a7" or "/video/v42".
type Location string

// Home is the browse page.
const Home Location = "/"

// Listen returns the full player route for an audio track.
func Listen(id string) Location {
	return Location("/audio/" + id)
}

// Watch returns the full player route for a video.
func Watch(id string) Location {
	return Location("/video/" + id)
}

// PlayerPage reports whether l is a full player page and for which kind.
func (l Location) PlayerPage() (core.Kind, string, bool) {
	for _, kind := range []core.Kind{core.KindAudio, core.KindVideo} {
		prefix := "/" + string(kind) + "/"
		if id, ok := strings.CutPrefix(string(l), prefix); ok && id != "" {
			return kind, id, true
		}
	}
	return "", "", false
}

// ShowMiniPlayer reports whether the mini player for kind should be drawn
// at l. It is hidden when nothing is loaded and on every full player page
// of the same kind, including one showing a different track.
func ShowMiniPlayer(kind core.Kind, l Location, snap core.Snapshot) bool {
	if !snap.HasTrack() {
		return false
	}
	if pageKind, _, ok := l.PlayerPage(); ok && pageKind == kind {
		return false
	}
	return true
}

// History is a simple back stack of locations.
type History struct {
	stack []Location
}

// NewHistory starts at Home.
func NewHistory() *History {
	return &History{stack: []Location{Home}}
}

// Current returns the location on top of the stack.
func (h *History) Current() Location {
	return h.stack[len(h.stack)-1]
}

// Push navigates to l. Pushing the current location is a no-op.
func (h *History) Push(l Location) {
	if h.Current() == l {
		return
	}
	h.stack = append(h.stack, l)
}

// Back returns to the previous location and reports whether there was one.
func (h *History) Back() bool {
	if len(h.stack) == 1 {
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return true
}
