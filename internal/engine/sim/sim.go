// Package sim provides a playback engine driven by a virtual clock. It
// behaves like a media element: commands are confirmed through events,
// metadata arrives after a load, and play may be refused.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

// DurationResolver reports the length of the media at src, or 0 if unknown.
type DurationResolver func(src string) time.Duration

// Engine is a simulated media element.
type Engine struct {
	mu       sync.Mutex
	sink     core.EventSink
	resolve  DurationResolver
	blocked  bool
	closed   bool
	gen      uint64
	src      string
	loaded   bool
	pending  bool // metadata not yet delivered
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	muted    bool
	loads    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDurationResolver sets how durations are discovered after a load.
func WithDurationResolver(r DurationResolver) Option {
	return func(e *Engine) {
		e.resolve = r
	}
}

// WithAutoplayBlocked makes Play fail until SetBlocked(false) is called.
func WithAutoplayBlocked(blocked bool) Option {
	return func(e *Engine) {
		e.blocked = blocked
	}
}

// New creates a simulated engine.
func New(opts ...Option) *Engine {
	e := &Engine{volume: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attach implements core.Engine.
func (e *Engine) Attach(sink core.EventSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Load implements core.Engine. Metadata is delivered on the next Advance,
// or immediately through SetDuration.
func (e *Engine) Load(gen uint64, src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return apperr.ErrEngineClosed
	}
	e.gen = gen
	e.src = src
	e.loaded = true
	e.pending = true
	e.playing = false
	e.position = 0
	e.duration = 0
	e.loads++
	return nil
}

// Unload implements core.Engine.
func (e *Engine) Unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = ""
	e.loaded = false
	e.pending = false
	e.playing = false
	e.position = 0
	e.duration = 0
	return nil
}

// Play implements core.Engine.
func (e *Engine) Play() error {
	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return apperr.ErrEngineClosed
	case !e.loaded:
		e.mu.Unlock()
		return apperr.ErrNoTrackLoaded
	case e.blocked:
		e.mu.Unlock()
		return apperr.ErrPlaybackBlocked
	case e.playing:
		e.mu.Unlock()
		return nil
	}
	e.playing = true
	ev := core.Event{Type: core.EventPlay, Gen: e.gen, Position: e.position}
	sink := e.sink
	e.mu.Unlock()

	emit(sink, ev)
	return nil
}

// Pause implements core.Engine.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return nil
	}
	e.playing = false
	ev := core.Event{Type: core.EventPause, Gen: e.gen, Position: e.position}
	sink := e.sink
	e.mu.Unlock()

	emit(sink, ev)
	return nil
}

// SetPosition implements core.Engine.
func (e *Engine) SetPosition(pos time.Duration) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return apperr.ErrNoTrackLoaded
	}
	if pos < 0 {
		pos = 0
	}
	if e.duration > 0 && pos > e.duration {
		pos = e.duration
	}
	e.position = pos
	ev := core.Event{Type: core.EventTimeUpdate, Gen: e.gen, Position: pos}
	sink := e.sink
	e.mu.Unlock()

	emit(sink, ev)
	return nil
}

// SetVolume implements core.Engine.
func (e *Engine) SetVolume(v float64) error {
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	return nil
}

// SetMuted implements core.Engine.
func (e *Engine) SetMuted(muted bool) error {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	return nil
}

// Close implements core.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.playing = false
	e.mu.Unlock()
	return nil
}

// SetDuration reports d as the loaded media's duration, as a metadata
// event would.
func (e *Engine) SetDuration(d time.Duration) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}
	e.pending = false
	e.duration = d
	ev := core.Event{Type: core.EventMetadataLoaded, Gen: e.gen, Duration: d}
	sink := e.sink
	e.mu.Unlock()

	emit(sink, ev)
}

// SetBlocked toggles the simulated autoplay policy.
func (e *Engine) SetBlocked(blocked bool) {
	e.mu.Lock()
	e.blocked = blocked
	e.mu.Unlock()
}

// Advance moves the virtual clock forward by d.
func (e *Engine) Advance(d time.Duration) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}

	var events []core.Event
	if e.pending && e.resolve != nil {
		e.pending = false
		if dur := e.resolve(e.src); dur > 0 {
			e.duration = dur
			events = append(events, core.Event{Type: core.EventMetadataLoaded, Gen: e.gen, Duration: dur})
		}
	}

	if e.playing {
		e.position += d
		if e.duration > 0 && e.position >= e.duration {
			e.position = e.duration
			e.playing = false
			events = append(events,
				core.Event{Type: core.EventTimeUpdate, Gen: e.gen, Position: e.position},
				core.Event{Type: core.EventPause, Gen: e.gen, Position: e.position},
				core.Event{Type: core.EventEnded, Gen: e.gen, Position: e.position},
			)
		} else {
			events = append(events, core.Event{Type: core.EventTimeUpdate, Gen: e.gen, Position: e.position})
		}
	}
	sink := e.sink
	e.mu.Unlock()

	for _, ev := range events {
		emit(sink, ev)
	}
}

// Run advances the clock in real time until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Advance(interval)
		}
	}
}

// Playing reports whether the engine is playing.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Position returns the engine's position.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Source returns the loaded source, or "" when unloaded.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Volume returns the engine's volume and mute flag.
func (e *Engine) Volume() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume, e.muted
}

// Loads returns how many times Load was called.
func (e *Engine) Loads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

// Gen returns the generation of the loaded source.
func (e *Engine) Gen() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

func emit(sink core.EventSink, ev core.Event) {
	if sink != nil {
		sink(ev)
	}
}

var _ core.Engine = (*Engine)(nil)
