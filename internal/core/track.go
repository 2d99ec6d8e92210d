package core

import "time"

// Kind indicates which coordinator a track belongs to.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Valid reports whether k is a known media kind.
func (k Kind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// Track identifies a playable audio or video item.
type Track struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	AuthorName string        `json:"author_name"`
	SourceURL  string        `json:"source_url"`
	Thumbnail  string        `json:"thumbnail,omitempty"`
	Kind       Kind          `json:"kind"`
	Duration   time.Duration `json:"duration,omitempty"` // catalog hint, not authoritative
}

// Clone returns a copy of t, or nil if t is nil.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
