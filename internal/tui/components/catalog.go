package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/tui/styles"
)

// Catalog is the browse list of approved posts.
type Catalog struct {
	offset   int
	selected int
}

// NewCatalog creates a new Catalog component
func NewCatalog() *Catalog {
	return &Catalog{}
}

// SelectNext moves the cursor down.
func (c *Catalog) SelectNext(n int) {
	if c.selected < n-1 {
		c.selected++
	}
}

// SelectPrev moves the cursor up.
func (c *Catalog) SelectPrev() {
	if c.selected > 0 {
		c.selected--
	}
}

// Reset moves the cursor back to the top.
func (c *Catalog) Reset() {
	c.selected = 0
	c.offset = 0
}

// Selected returns the selected index
func (c *Catalog) Selected() int {
	return c.selected
}

// Render renders the catalog panel. Items whose ID is in loaded are marked
// as being in a coordinator.
func (c *Catalog) Render(items []catalog.Item, loaded map[string]bool, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Showcase (%d)", len(items)), focused)

	var content string
	if len(items) == 0 {
		content = styles.Muted.Render("Nothing here yet")
	} else {
		content = c.renderItems(items, loaded, width-4, height-4, time.Now())
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (c *Catalog) renderItems(items []catalog.Item, loaded map[string]bool, width, maxLines int, now time.Time) string {
	if c.selected >= len(items) {
		c.selected = len(items) - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}

	visible := maxLines - 1 // room for the "more" line
	if visible < 1 {
		visible = 1
	}
	if c.selected < c.offset {
		c.offset = c.selected
	}
	if c.selected >= c.offset+visible {
		c.offset = c.selected - visible + 1
	}

	end := c.offset + visible
	if end > len(items) {
		end = len(items)
	}

	lines := make([]string, 0, end-c.offset+1)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.renderItem(items[i], i == c.selected, loaded[items[i].Post.ID], width, now))
	}
	if end < len(items) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(items)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (c *Catalog) renderItem(item catalog.Item, selected, loaded bool, width int, now time.Time) string {
	post := item.Post

	meta := humanize.Comma(int64(post.Views)) + " views"
	if up := post.Uploaded(); !up.IsZero() {
		meta += " · " + humanize.RelTime(up, now, "ago", "from now")
	}

	// cursor, icon, separator and the gap before meta
	const overhead = 10
	available := width - overhead - len(meta)
	if available < 10 {
		available = 10
	}
	authorSpace := available / 3
	if len(post.AuthorName) < authorSpace {
		authorSpace = len(post.AuthorName)
	}
	title := truncate(post.Title, available-authorSpace)
	author := truncate(post.AuthorName, authorSpace)

	selector := "  "
	if selected {
		selector = "▸ "
		title = styles.Selected.Render(title)
	}
	if loaded {
		title = styles.Playing.Render("♪ ") + title
	}
	if !item.Playable() {
		title += styles.Dim.Render(" (no media)")
	}

	return fmt.Sprintf("%s%s %s — %s  %s",
		selector,
		styles.KindIcon(post.Type),
		title,
		styles.Muted.Render(author),
		styles.Dim.Render(meta))
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
