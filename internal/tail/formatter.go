package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/showcase/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		data.Kind = string(e.Current.Kind)
		data.Position = FormatClock(e.Current.State.Position)
		data.Duration = FormatClock(e.Current.State.Duration)
		data.Volume = volumePercent(e.Current.State)
		data.Muted = e.Current.State.IsMuted
		if t := track(e); t != nil {
			data.ID = t.ID
			data.Title = t.Title
			data.Author = t.AuthorName
		}
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Kind      string
	ID        string
	Title     string
	Author    string
	Position  string
	Duration  string
	Volume    int
	Muted     bool
}

// track returns the track the event is about: the current one, or the one
// that just went away for a stop.
func track(e Event) *core.Track {
	if e.Current != nil && e.Current.Track != nil {
		return e.Current.Track
	}
	if e.Previous != nil {
		return e.Previous.Track
	}
	return nil
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	t := track(e)

	switch e.Type {
	case EventTrackChange:
		if t != nil {
			return fmt.Sprintf("Now playing: %s - %s", t.AuthorName, t.Title)
		}
		return "Track changed"

	case EventTrackEnded:
		if t != nil {
			return fmt.Sprintf("Finished: %s - %s", t.AuthorName, t.Title)
		}
		return "Track ended"

	case EventStopped:
		if t != nil {
			return fmt.Sprintf("Stopped: %s - %s", t.AuthorName, t.Title)
		}
		return "Stopped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventSeek:
		if e.Current != nil {
			return fmt.Sprintf("Seek: %s / %s",
				FormatClock(e.Current.State.Position),
				FormatClock(e.Current.State.Duration))
		}
		return "Seek"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", volumePercent(e.Current.State))
		}
		return "Volume changed"

	case EventMuteChange:
		if e.Current != nil && e.Current.State.IsMuted {
			return "Muted"
		}
		return "Unmuted"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackEnded:
		return "✅"
	case EventStopped:
		return "⏹️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventSeek:
		return "⏩"
	case EventVolumeChange:
		return "🔊"
	case EventMuteChange:
		return "🔇"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackEnded:
		return "track_ended"
	case EventStopped:
		return "stopped"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventSeek:
		return "seek"
	case EventVolumeChange:
		return "volume_change"
	case EventMuteChange:
		return "mute_change"
	default:
		return "unknown"
	}
}

func volumePercent(s core.PlaybackState) int {
	return int(s.Volume*100 + 0.5)
}

// FormatClock renders d as m:ss, or h:mm:ss for an hour or more.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
