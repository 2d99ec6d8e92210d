package player

import "github.com/tessro/showcase/internal/core"

// VideoCoordinator is a Coordinator whose picture is passed between pages
// as a Handle.
type VideoCoordinator struct {
	*Coordinator
	surfaces *SurfaceRegistry
}

// NewVideo creates the video coordinator. fallback hosts the picture while
// no page claims it; nil uses an Offscreen surface.
func NewVideo(engine core.Engine, fallback Surface, opts ...Option) *VideoCoordinator {
	return &VideoCoordinator{
		Coordinator: New(core.KindVideo, engine, opts...),
		surfaces:    NewSurfaceRegistry(core.KindVideo, fallback),
	}
}

// SetPortalTarget moves the picture to s.
func (v *VideoCoordinator) SetPortalTarget(s Surface) {
	v.surfaces.Set(s)
}

// ClearPortalTarget returns the picture to the fallback if s currently
// hosts it.
func (v *VideoCoordinator) ClearPortalTarget(s Surface) {
	v.surfaces.Clear(s)
}

// PortalTarget returns the surface currently hosting the picture.
func (v *VideoCoordinator) PortalTarget() Surface {
	return v.surfaces.Current()
}
