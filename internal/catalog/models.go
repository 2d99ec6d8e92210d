package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Post is a content item as the backend lists it.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AuthorID    string  `json:"authorId"`
	AuthorName  string  `json:"authorName"`
	AuthorRole  string  `json:"authorRole"`
	Type        string  `json:"type"` // video, audio or blog
	Category    string  `json:"category"`
	UploadDate  string  `json:"uploadDate"`
	Status      string  `json:"status"`
	Views       int     `json:"views"`
	Votes       int     `json:"votes"`
	HasVoted    bool    `json:"hasVoted"`
	Thumbnail   string  `json:"thumbnail"`
	Media       []Media `json:"media"`
	Duration    string  `json:"duration"` // m:ss
}

// Media is a file attached to a post.
type Media struct {
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
}

// Uploaded parses UploadDate. The zero time is returned when it is missing
// or malformed.
func (p Post) Uploaded() time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, p.UploadDate, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseDuration parses "m:ss" or "h:mm:ss" into a duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// APIError is the backend's error body.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}
