package player

import (
	"sync"

	"github.com/tessro/showcase/internal/core"
)

// Handle stands for the live picture of one media element. Surfaces hold
// it to show where the picture lives; it carries no playback commands, so
// only the coordinator drives the engine behind it.
type Handle struct {
	kind core.Kind
}

// Kind returns the media kind the handle shows.
func (h *Handle) Kind() core.Kind {
	return h.kind
}

// Surface is a place that can host the live video handle. Implementations
// must be comparable (typically pointers): identity decides ownership.
// Attach and Detach are called with the registry locked and must not call
// back into it.
type Surface interface {
	Attach(h *Handle)
	Detach(h *Handle)
}

// SurfaceRegistry hands one long-lived handle to exactly one surface at a
// time. The handle is moved between surfaces, never recreated.
type SurfaceRegistry struct {
	mu       sync.Mutex
	handle   *Handle
	fallback Surface
	current  Surface
}

// NewSurfaceRegistry creates the handle for kind and attaches it to
// fallback, which hosts it whenever no other surface has claimed it. A nil
// fallback means an Offscreen one.
func NewSurfaceRegistry(kind core.Kind, fallback Surface) *SurfaceRegistry {
	if fallback == nil {
		fallback = &Offscreen{}
	}
	handle := &Handle{kind: kind}
	fallback.Attach(handle)
	return &SurfaceRegistry{
		handle:   handle,
		fallback: fallback,
		current:  fallback,
	}
}

// Set makes s the hosting surface. Setting the current surface again is a
// no-op; nil selects the fallback.
func (r *SurfaceRegistry) Set(s Surface) {
	if s == nil {
		s = r.fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s == r.current {
		return
	}
	r.moveLocked(s)
}

// Clear releases s. It does nothing unless s is the current surface, so a
// page unmounting late cannot steal the handle from the page that
// replaced it.
func (r *SurfaceRegistry) Clear(s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == nil || s != r.current || s == r.fallback {
		return
	}
	r.moveLocked(r.fallback)
}

// Current returns the hosting surface.
func (r *SurfaceRegistry) Current() Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Handle returns the handle the registry moves between surfaces.
func (r *SurfaceRegistry) Handle() *Handle {
	return r.handle
}

// Fallback returns the surface used when nothing else hosts the handle.
func (r *SurfaceRegistry) Fallback() Surface {
	return r.fallback
}

func (r *SurfaceRegistry) moveLocked(next Surface) {
	r.current.Detach(r.handle)
	next.Attach(r.handle)
	r.current = next
}

// Offscreen is an invisible surface. It keeps the handle alive while no
// page shows it.
type Offscreen struct {
	mu     sync.Mutex
	handle *Handle
}

// Attach implements Surface.
func (o *Offscreen) Attach(h *Handle) {
	o.mu.Lock()
	o.handle = h
	o.mu.Unlock()
}

// Detach implements Surface.
func (o *Offscreen) Detach(h *Handle) {
	o.mu.Lock()
	if o.handle == h {
		o.handle = nil
	}
	o.mu.Unlock()
}

// Hosting reports whether the offscreen surface holds the handle.
func (o *Offscreen) Hosting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handle != nil
}
