package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/tessro/showcase/internal/core"
)

var (
	audioExt = regexp.MustCompile(`(?i)\.(mp3|wav|flac|aac|ogg|m4a)$`)
	videoExt = regexp.MustCompile(`(?i)\.(mp4|mov|avi|webm|mkv)$`)
	imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)
)

// matches reports whether value names a file of the kind re matches. A bare
// extension such as "mp3" counts as well.
func matches(re *regexp.Regexp, value string) bool {
	if value == "" {
		return false
	}
	if !strings.Contains(value, ".") {
		value = "." + value
	}
	return re.MatchString(value)
}

// IsAudioFile reports whether value is an audio path or extension.
func IsAudioFile(value string) bool { return matches(audioExt, value) }

// IsVideoFile reports whether value is a video path or extension.
func IsVideoFile(value string) bool { return matches(videoExt, value) }

// IsImageFile reports whether value is an image path or extension.
func IsImageFile(value string) bool { return matches(imageExt, value) }

// MediaURL resolves a stored file path against base. Absolute http(s) URLs
// are returned unchanged; each path segment is escaped.
func MediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	path = strings.ReplaceAll(path, `\`, "/")
	segments := lo.Map(strings.Split(path, "/"), func(s string, _ int) string {
		return url.PathEscape(s)
	})
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// Source returns the playable file for kind: the first attachment whose
// path or type matches, else the thumbnail if it is such a file.
func (p Post) Source(kind core.Kind, base string) string {
	match := IsAudioFile
	if kind == core.KindVideo {
		match = IsVideoFile
	}

	if m, ok := lo.Find(p.Media, func(m Media) bool {
		return match(m.FilePath) || match(m.FileType)
	}); ok && m.FilePath != "" {
		return MediaURL(base, m.FilePath)
	}
	if match(p.Thumbnail) {
		return MediaURL(base, p.Thumbnail)
	}
	return ""
}

// Poster returns the thumbnail URL if the thumbnail is an image.
func (p Post) Poster(base string) string {
	if !IsImageFile(p.Thumbnail) {
		return ""
	}
	return MediaURL(base, p.Thumbnail)
}

// Track converts p into a playable track. The source is empty when the post
// has no file of the right kind.
func (p Post) Track(kind core.Kind, base string) core.Track {
	d, _ := ParseDuration(p.Duration)
	return core.Track{
		ID:         p.ID,
		Title:      p.Title,
		AuthorName: p.AuthorName,
		SourceURL:  p.Source(kind, base),
		Thumbnail:  p.Poster(base),
		Kind:       kind,
		Duration:   d,
	}
}
