package core

import "time"

// PlaybackState mirrors the playback engine for the loaded track.
type PlaybackState struct {
	Position  time.Duration `json:"position"`
	Duration  time.Duration `json:"duration"` // zero until metadata arrives
	IsPlaying bool          `json:"is_playing"`
	Volume    float64       `json:"volume"`
	IsMuted   bool          `json:"is_muted"`
	Blocked   bool          `json:"blocked,omitempty"` // last play request was refused by the engine
}

// DurationKnown returns true once the engine has reported a duration.
func (s PlaybackState) DurationKnown() bool {
	return s.Duration > 0
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s PlaybackState) ProgressPercent() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Snapshot is the full view delivered to observers on every change.
type Snapshot struct {
	Kind  Kind          `json:"kind"`
	Seq   uint64        `json:"seq"`
	Track *Track        `json:"track"`
	State PlaybackState `json:"state"`
}

// HasTrack returns true if a track is loaded.
func (s Snapshot) HasTrack() bool {
	return s.Track != nil
}

// TrackID returns the loaded track's ID, or "" when nothing is loaded.
func (s Snapshot) TrackID() string {
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}
