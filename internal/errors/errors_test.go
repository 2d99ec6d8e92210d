package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"explicit", WithSuggestion(errors.New("boom"), "try again"), "try again"},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrTrackNotFound), "showcase catalog"},
		{"no source", ErrNoSource, "no audio or video"},
		{"blocked", ErrPlaybackBlocked, "Press play"},
		{"missing mpv", errors.New(`exec: "mpv": executable file not found in $PATH`), "Install mpv"},
		{"backend", ErrBackendUnavailable, "backend.api_url"},
		{"connection refused", errors.New("dial tcp: connection refused"), "backend.api_url"},
		{"config", ErrInvalidConfig, "config init"},
		{"unknown", errors.New("something odd"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}

func TestWithSuggestionUnwraps(t *testing.T) {
	err := WithSuggestion(ErrEngineClosed, "restart")
	if !Is(err, ErrEngineClosed) {
		t.Error("Is(err, ErrEngineClosed) = false, want true")
	}
	if err.Error() != ErrEngineClosed.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), ErrEngineClosed.Error())
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
	if got := Format(errors.New("plain")); got != "Error: plain" {
		t.Errorf("Format() = %q", got)
	}
	got := Format(ErrTrackNotFound)
	if !strings.HasPrefix(got, "Error: track not found") || !strings.Contains(got, "Suggestion:") {
		t.Errorf("Format() = %q", got)
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[[]int]
	if p.HasErrors() || p.ErrorSummary() != "" {
		t.Fatal("empty result reports errors")
	}

	p.AddError(nil)
	p.AddError(errors.New("audio failed"))
	if got := p.ErrorSummary(); got != "audio failed" {
		t.Errorf("ErrorSummary() = %q", got)
	}

	p.AddError(errors.New("video failed"))
	got := p.ErrorSummary()
	if !strings.HasPrefix(got, "2 errors occurred") || !strings.Contains(got, "2. video failed") {
		t.Errorf("ErrorSummary() = %q", got)
	}
}
