package tail

import (
	"context"
	"time"

	"github.com/tessro/showcase/internal/core"
)

// seekThreshold is the smallest position jump reported as a seek. Regular
// time updates move the position by much less.
const seekThreshold = 2 * time.Second

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackEnded
	EventStopped
	EventPause
	EventResume
	EventSeek
	EventVolumeChange
	EventMuteChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.Snapshot
	Current   *core.Snapshot
}

// Source is anything that streams snapshots, such as a player.Coordinator.
type Source interface {
	Watch(ctx context.Context) <-chan core.Snapshot
}

// Watcher turns a coordinator's snapshots into events.
type Watcher struct {
	source Source
	events chan Event
	done   chan struct{}
	now    func() time.Time
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source) *Watcher {
	return &Watcher{
		source: source,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start consumes snapshots until ctx is done, Stop is called or the source
// goes away.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	snaps := w.source.Watch(ctx)

	var prev *core.Snapshot
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			curr := snap

			for _, e := range diffSnapshots(prev, &curr, w.now()) {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}
			prev = &curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffSnapshots compares two snapshots and returns detected events.
func diffSnapshots(prev, curr *core.Snapshot, now time.Time) []Event {
	if curr == nil {
		return nil
	}

	var events []Event
	emit := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First snapshot - no previous state
	if prev == nil {
		if curr.HasTrack() {
			emit(EventTrackChange)
		}
		return events
	}

	if prev.TrackID() != curr.TrackID() {
		if curr.HasTrack() {
			emit(EventTrackChange)
		} else {
			emit(EventStopped)
		}
	} else if curr.HasTrack() {
		p, c := prev.State, curr.State
		ended := p.IsPlaying && !c.IsPlaying && atEnd(c)

		switch {
		case ended:
			emit(EventTrackEnded)
		case p.IsPlaying && !c.IsPlaying:
			emit(EventPause)
		case !p.IsPlaying && c.IsPlaying:
			emit(EventResume)
		}

		if d := c.Position - p.Position; !ended && (d < 0 || d >= seekThreshold) {
			emit(EventSeek)
		}
	}

	if prev.State.Volume != curr.State.Volume {
		emit(EventVolumeChange)
	}
	if prev.State.IsMuted != curr.State.IsMuted {
		emit(EventMuteChange)
	}

	return events
}

func atEnd(s core.PlaybackState) bool {
	return s.DurationKnown() && s.Position >= s.Duration
}
