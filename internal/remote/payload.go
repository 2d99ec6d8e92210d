package remote

import (
	"math"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/tessro/showcase/internal/core"
)

// Snapshot is the JSON form of a core.Snapshot. Times are in seconds.
type Snapshot struct {
	Kind      core.Kind   `json:"kind"`
	Seq       uint64      `json:"seq" hash:"ignore"`
	Track     *core.Track `json:"track"`
	Position  float64     `json:"position"`
	Duration  float64     `json:"duration"`
	IsPlaying bool        `json:"is_playing"`
	Volume    float64     `json:"volume"`
	IsMuted   bool        `json:"is_muted"`
	Blocked   bool        `json:"blocked,omitempty"`
}

func newSnapshot(s core.Snapshot) Snapshot {
	return Snapshot{
		Kind:      s.Kind,
		Seq:       s.Seq,
		Track:     s.Track,
		Position:  roundMillis(s.State.Position.Seconds()),
		Duration:  roundMillis(s.State.Duration.Seconds()),
		IsPlaying: s.State.IsPlaying,
		Volume:    s.State.Volume,
		IsMuted:   s.State.IsMuted,
		Blocked:   s.State.Blocked,
	}
}

// Core converts s back into a core.Snapshot.
func (s Snapshot) Core() core.Snapshot {
	return core.Snapshot{
		Kind:  s.Kind,
		Seq:   s.Seq,
		Track: s.Track,
		State: core.PlaybackState{
			Position:  time.Duration(s.Position * float64(time.Second)),
			Duration:  time.Duration(s.Duration * float64(time.Second)),
			IsPlaying: s.IsPlaying,
			Volume:    s.Volume,
			IsMuted:   s.IsMuted,
			Blocked:   s.Blocked,
		},
	}
}

// contentHash identifies what a client would see. Seq is ignored, so two
// snapshots that differ only in sequence hash the same.
func (s Snapshot) contentHash() (uint64, error) {
	return hashstructure.Hash(s, hashstructure.FormatV2, nil)
}

func roundMillis(secs float64) float64 {
	return math.Round(secs*1000) / 1000
}
