package core

import "time"

// EventType identifies a notification from a playback engine.
type EventType int

const (
	EventTimeUpdate EventType = iota
	EventMetadataLoaded
	EventDurationChange
	EventPlay
	EventPause
	EventEnded
)

func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventMetadataLoaded:
		return "loadedmetadata"
	case EventDurationChange:
		return "durationchange"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is emitted by an engine. Gen is the load generation the event
// belongs to; events from a replaced source carry an older Gen.
type Event struct {
	Type     EventType
	Gen      uint64
	Position time.Duration
	Duration time.Duration
}

// EventSink receives engine events.
type EventSink func(Event)

// Engine is the single underlying media resource a coordinator drives.
// Implementations may call the attached sink from any goroutine,
// including synchronously from inside a command.
type Engine interface {
	Attach(sink EventSink)

	Load(gen uint64, src string) error
	Unload() error

	Play() error
	Pause() error
	SetPosition(pos time.Duration) error
	SetVolume(v float64) error
	SetMuted(muted bool) error

	Close() error
}
