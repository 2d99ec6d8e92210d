// Package wizard provides interactive prompts for commands run without
// their arguments.
package wizard

import (
	"os"

	"github.com/tessro/showcase/internal/catalog"
	"golang.org/x/term"
)

// Interactive decides whether prompts may be shown.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{enabled: true}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptTrack shows the picker over items. It returns nil when cancelled or
// not interactive.
func (i *Interactive) PromptTrack(items []catalog.Item) (*catalog.Item, error) {
	if !i.CanInteract() || len(items) == 0 {
		return nil, nil
	}
	return RunPicker(items)
}

// NeedsTrack returns true if a track argument is required but missing.
func NeedsTrack(args []string) bool {
	return len(args) == 0
}
