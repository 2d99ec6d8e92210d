package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoTrackLoaded      = errors.New("no track loaded")
	ErrTrackNotFound      = errors.New("track not found")
	ErrNoSource           = errors.New("track has no playable source")
	ErrPlaybackBlocked    = errors.New("playback blocked by platform policy")
	ErrEngineClosed       = errors.New("playback engine closed")
	ErrEngineUnavailable  = errors.New("playback engine unavailable")
	ErrBackendUnavailable = errors.New("content backend unavailable")
	ErrForbidden          = errors.New("not permitted")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// ShowcaseError wraps an error with a user-friendly suggestion.
type ShowcaseError struct {
	Err        error
	Suggestion string
}

func (e *ShowcaseError) Error() string {
	return e.Err.Error()
}

func (e *ShowcaseError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &ShowcaseError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var scErr *ShowcaseError
	if errors.As(err, &scErr) && scErr.Suggestion != "" {
		return scErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrTrackNotFound) {
		return "Run 'showcase catalog' to list available tracks"
	}

	if errors.Is(err, ErrNoSource) {
		return "The post has no audio or video file attached"
	}

	if errors.Is(err, ErrPlaybackBlocked) {
		return "Press play to start playback"
	}

	if errors.Is(err, ErrEngineUnavailable) || strings.Contains(errStr, "executable file not found") {
		return "Install mpv or set player.engine = \"sim\" in ~/.showcaserc"
	}

	if errors.Is(err, ErrForbidden) {
		return "Your role does not allow this action"
	}

	// Network errors
	if errors.Is(err, ErrBackendUnavailable) || strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "no such host") {
		return "Check that the backend is running and backend.api_url is correct"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'showcase config init' to create a configuration"
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The backend is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
