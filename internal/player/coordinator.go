// Package player owns the shared playback session for each media kind.
//
// A Coordinator is the only component allowed to drive its engine. Pages,
// mini players and remote clients issue commands through it and render the
// snapshots it publishes; none of them keep playback state of their own.
package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

const defaultVolume = 0.7

// Coordinator is the single source of truth for what is loaded and how it
// is playing. Engine events are authoritative for position, duration and
// the playing flag; volume and mute are applied optimistically.
type Coordinator struct {
	kind   core.Kind
	engine core.Engine
	log    logrus.FieldLogger

	// cmdMu serializes commands sent to the engine. It is never held by
	// handleEvent, so engines may emit events from inside a command.
	cmdMu sync.Mutex

	mu         sync.Mutex
	gen        uint64
	track      *core.Track
	state      core.PlaybackState
	lastVolume float64
	seq        uint64
	closed     bool
	done       chan struct{}

	subs subscribers
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithVolume sets the initial volume (0-1).
func WithVolume(v float64) Option {
	return func(c *Coordinator) {
		c.state.Volume = clampVolume(v)
		c.state.IsMuted = c.state.Volume == 0
		c.lastVolume = c.state.Volume
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a coordinator for kind that drives engine.
func New(kind core.Kind, engine core.Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		kind:       kind,
		engine:     engine,
		log:        logrus.StandardLogger(),
		state:      core.PlaybackState{Volume: defaultVolume},
		lastVolume: defaultVolume,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("kind", string(kind))

	engine.Attach(c.handleEvent)
	c.applyVolume(c.state.Volume, c.state.IsMuted)
	return c
}

// Kind returns the media kind this coordinator plays.
func (c *Coordinator) Kind() core.Kind {
	return c.kind
}

// Snapshot returns the current track and playback state.
func (c *Coordinator) Snapshot() core.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.Snapshot{
		Kind:  c.kind,
		Seq:   c.seq,
		Track: c.track.Clone(),
		State: c.state,
	}
}

// LoadTrack makes track the loaded track. Loading the track that is already
// loaded keeps its position; with autoplay it only resumes a paused session.
func (c *Coordinator) LoadTrack(track core.Track, autoplay bool) error {
	if track.SourceURL == "" {
		return fmt.Errorf("load %q: %w", track.ID, apperr.ErrNoSource)
	}
	if track.Kind == "" {
		track.Kind = c.kind
	}

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apperr.ErrEngineClosed
	}
	if c.track != nil && c.track.ID == track.ID {
		playing := c.state.IsPlaying
		c.mu.Unlock()
		if autoplay && !playing {
			return c.startLocked()
		}
		return nil
	}

	c.gen++
	gen := c.gen
	c.track = &track
	volume, muted := c.state.Volume, c.state.IsMuted
	c.state = core.PlaybackState{Volume: volume, IsMuted: muted}
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"track": track.ID,
		"gen":   gen,
	}).Debug("loading track")
	c.subs.publish(snap)

	if err := c.engine.Load(gen, track.SourceURL); err != nil {
		return fmt.Errorf("load %q: %w", track.ID, err)
	}
	c.applyVolume(volume, muted)

	if autoplay {
		return c.startLocked()
	}
	return nil
}

// Play starts or resumes playback of the loaded track.
func (c *Coordinator) Play() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if !c.hasTrack() {
		return nil
	}
	return c.startLocked()
}

// Pause pauses playback.
func (c *Coordinator) Pause() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	if !c.hasTrack() {
		return nil
	}
	return c.engine.Pause()
}

// TogglePlay flips between playing and paused. It does nothing when no
// track is loaded.
func (c *Coordinator) TogglePlay() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	loaded := c.track != nil
	playing := c.state.IsPlaying
	c.mu.Unlock()

	if !loaded {
		return nil
	}
	if playing {
		return c.engine.Pause()
	}
	return c.startLocked()
}

// Seek asks the engine to move to pos, clamped into [0, duration]. The
// reported position changes only when the engine confirms it.
func (c *Coordinator) Seek(pos time.Duration) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	loaded := c.track != nil
	duration := c.state.Duration
	c.mu.Unlock()

	if !loaded {
		return nil
	}
	return c.engine.SetPosition(clampPosition(pos, duration))
}

// SetVolume sets the volume, clamped to [0, 1]. Zero mutes; any other
// value unmutes.
func (c *Coordinator) SetVolume(v float64) error {
	v = clampVolume(v)

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apperr.ErrEngineClosed
	}
	c.state.Volume = v
	if v == 0 {
		c.state.IsMuted = true
	} else {
		c.lastVolume = v
		c.state.IsMuted = false
	}
	muted := c.state.IsMuted
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.subs.publish(snap)
	return c.applyVolume(v, muted)
}

// ToggleMute flips the mute flag. Unmuting at zero volume restores the last
// non-zero volume, or full volume if there never was one.
func (c *Coordinator) ToggleMute() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apperr.ErrEngineClosed
	}
	if c.state.IsMuted {
		c.state.IsMuted = false
		if c.state.Volume == 0 {
			c.state.Volume = c.lastVolume
			if c.state.Volume == 0 {
				c.state.Volume = 1
			}
		}
	} else {
		c.state.IsMuted = true
	}
	volume, muted := c.state.Volume, c.state.IsMuted
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.subs.publish(snap)
	return c.applyVolume(volume, muted)
}

// Stop clears the loaded track and resets playback state.
func (c *Coordinator) Stop() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	return c.stopLocked()
}

func (c *Coordinator) stopLocked() error {
	c.mu.Lock()
	if c.track == nil {
		c.mu.Unlock()
		return nil
	}
	// Bumping the generation turns anything the engine still emits for
	// the old source into a stale event.
	c.gen++
	c.track = nil
	c.state = core.PlaybackState{Volume: c.state.Volume, IsMuted: c.state.IsMuted}
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.subs.publish(snap)

	err := c.engine.Pause()
	if uerr := c.engine.Unload(); uerr != nil {
		err = errors.Join(err, uerr)
	}
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Subscribe registers o to receive a snapshot after every change.
func (c *Coordinator) Subscribe(o Observer) *Subscription {
	id := c.subs.add(o)
	return &Subscription{cancel: func() { c.subs.remove(id) }}
}

// Close stops playback and releases the engine. The coordinator accepts no
// further loads afterwards.
func (c *Coordinator) Close() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	err := c.stopLocked()

	c.mu.Lock()
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	if cerr := c.engine.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// startLocked asks the engine to play. A platform refusal is not an error
// for the caller: the session stays paused and is flagged as blocked.
// Callers hold cmdMu.
func (c *Coordinator) startLocked() error {
	c.mu.Lock()
	ended := c.state.DurationKnown() && c.state.Position >= c.state.Duration
	c.mu.Unlock()

	// Playing a finished track starts it over.
	if ended {
		if err := c.engine.SetPosition(0); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
	}

	err := c.engine.Play()
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrPlaybackBlocked) {
		return fmt.Errorf("play: %w", err)
	}

	c.log.Info("playback blocked, waiting for user to press play")

	c.mu.Lock()
	c.state.IsPlaying = false
	c.state.Blocked = true
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.subs.publish(snap)
	return nil
}

func (c *Coordinator) applyVolume(v float64, muted bool) error {
	err := c.engine.SetVolume(v)
	if merr := c.engine.SetMuted(muted); merr != nil {
		err = errors.Join(err, merr)
	}
	if err != nil {
		c.log.WithError(err).Warn("failed to apply volume")
		return fmt.Errorf("volume: %w", err)
	}
	return nil
}

func (c *Coordinator) hasTrack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track != nil
}

// handleEvent is the engine's sink.
func (c *Coordinator) handleEvent(ev core.Event) {
	c.mu.Lock()
	if c.track == nil || ev.Gen != c.gen {
		gen := c.gen
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{
			"event":     ev.Type.String(),
			"event_gen": ev.Gen,
			"gen":       gen,
		}).Trace("discarding stale engine event")
		return
	}

	if !c.applyEventLocked(ev) {
		c.mu.Unlock()
		return
	}
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.subs.publish(snap)
}

// applyEventLocked folds ev into the state and reports whether anything
// changed.
func (c *Coordinator) applyEventLocked(ev core.Event) bool {
	s := &c.state
	switch ev.Type {
	case core.EventTimeUpdate:
		pos := clampPosition(ev.Position, s.Duration)
		if pos == s.Position {
			return false
		}
		s.Position = pos

	case core.EventMetadataLoaded, core.EventDurationChange:
		if ev.Duration <= 0 || ev.Duration == s.Duration {
			return false
		}
		s.Duration = ev.Duration
		if s.Position > s.Duration {
			s.Position = s.Duration
		}

	case core.EventPlay:
		if s.IsPlaying {
			return false
		}
		s.IsPlaying = true
		s.Blocked = false

	case core.EventPause:
		if !s.IsPlaying {
			return false
		}
		s.IsPlaying = false

	case core.EventEnded:
		s.IsPlaying = false
		if s.Duration > 0 {
			s.Position = s.Duration
		}

	default:
		return false
	}
	return true
}

func (c *Coordinator) nextSnapshotLocked() core.Snapshot {
	c.seq++
	return core.Snapshot{
		Kind:  c.kind,
		Seq:   c.seq,
		Track: c.track.Clone(),
		State: c.state,
	}
}

// clampPosition limits pos to [0, duration]. An unknown (zero) duration
// only bounds the position from below.
func clampPosition(pos, duration time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if duration > 0 && pos > duration {
		return duration
	}
	return pos
}

func clampVolume(v float64) float64 {
	switch {
	case v != v, v < 0: // NaN or negative
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
