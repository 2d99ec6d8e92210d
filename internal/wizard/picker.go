package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/tui/styles"
)

// kindTabs are the catalog sections the picker cycles through. The empty
// kind shows everything.
var kindTabs = []struct {
	label string
	kind  core.Kind
}{
	{"All", ""},
	{"Audio", core.KindAudio},
	{"Video", core.KindVideo},
}

// PickerModel is the bubbletea model for the track picker.
type PickerModel struct {
	input    textinput.Model
	items    []catalog.Item
	results  []catalog.Item
	cursor   int
	tab      int
	selected *catalog.Item
	width    int
	height   int
}

// NewPickerModel creates a picker over the playable items.
func NewPickerModel(items []catalog.Item) PickerModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or author..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	var playable []catalog.Item
	for _, it := range items {
		if it.Playable() {
			playable = append(playable, it)
		}
	}

	m := PickerModel{
		input:  ti,
		items:  playable,
		width:  80,
		height: 20,
	}
	m.refilter()
	return m
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.results) {
				sel := m.results[m.cursor]
				m.selected = &sel
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.tab = (m.tab + 1) % len(kindTabs)
			m.refilter()
			return m, nil

		case "shift+tab":
			m.tab = (m.tab + len(kindTabs) - 1) % len(kindTabs)
			m.refilter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *PickerModel) refilter() {
	kind := kindTabs[m.tab].kind
	var results []catalog.Item
	for _, it := range catalog.Filter(m.items, m.input.Value()) {
		if kind == "" || it.Track.Kind == kind {
			results = append(results, it)
		}
	}
	m.results = results
	if m.cursor >= len(m.results) {
		m.cursor = max(len(m.results)-1, 0)
	}
}

// View renders the model.
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("🎭 Pick a performance"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, tab := range kindTabs {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == m.tab {
			b.WriteString(styles.Selected.Render(" " + tab.label + " "))
		} else {
			b.WriteString(styles.Muted.Render(" " + tab.label + " "))
		}
	}
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		b.WriteString(styles.Muted.Render("No matching tracks"))
		b.WriteString("\n")
	}

	maxResults := max(m.height-10, 5)
	for i, it := range m.results {
		if i >= maxResults {
			b.WriteString(styles.Muted.Render("  ...and more"))
			b.WriteString("\n")
			break
		}
		line := styles.KindIcon(string(it.Track.Kind)) + " " + it.Track.Title
		if it.Track.AuthorName != "" {
			line += " " + styles.Muted.Render(it.Track.AuthorName)
		}
		if i == m.cursor {
			b.WriteString(styles.Selected.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓ navigate • tab switch type • enter select • esc quit"))
	return b.String()
}

// Selected returns the selected item, or nil if none.
func (m PickerModel) Selected() *catalog.Item {
	return m.selected
}

// RunPicker runs the picker and returns the selected item.
func RunPicker(items []catalog.Item) (*catalog.Item, error) {
	p := tea.NewProgram(NewPickerModel(items), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(PickerModel).Selected(), nil
}
