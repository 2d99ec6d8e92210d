package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/config"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/nav"
	"github.com/tessro/showcase/internal/player"
	"github.com/tessro/showcase/internal/session"
	"github.com/tessro/showcase/internal/tui/components"
	"github.com/tessro/showcase/internal/tui/styles"
)

const (
	seekStep    = 10 * time.Second
	volumeStep  = 0.05
	maxHistory  = 50
	errorExpiry = 5 * time.Second
)

// Model is the main TUI model. It never holds playback state of its own:
// everything it draws comes from coordinator snapshots.
type Model struct {
	ctx     context.Context
	session *session.Session
	log     logrus.FieldLogger

	width  int
	height int

	// refresh redraws relative times and expires errors. Playback state
	// never waits on it.
	refresh time.Duration

	location *nav.History
	// active is the kind that playback keys act on outside a player page.
	active core.Kind

	snaps   map[core.Kind]core.Snapshot
	updates map[core.Kind]<-chan core.Snapshot

	items    []catalog.Item
	filtered []catalog.Item
	loading  bool
	history  []components.HistoryEntry

	// The watch page claims the video picture while it is open. The rest
	// of the time it returns to the session's fallback surface.
	watchSurface *pageSurface

	catalogView *components.Catalog
	nowPlaying  *components.NowPlaying
	miniPlayer  *components.MiniPlayer
	historyView *components.History

	showHelp  bool
	filtering bool
	filter    textinput.Model

	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates the model for sess.
func NewModel(ctx context.Context, sess *session.Session, log logrus.FieldLogger) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or author..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		ctx:          ctx,
		session:      sess,
		log:          log,
		location:     nav.NewHistory(),
		active:       core.KindAudio,
		snaps:        make(map[core.Kind]core.Snapshot),
		updates:      make(map[core.Kind]<-chan core.Snapshot),
		loading:      true,
		watchSurface: newPageSurface("watch page"),
		catalogView:  components.NewCatalog(),
		nowPlaying:   components.NewNowPlaying(),
		miniPlayer:   components.NewMiniPlayer(),
		historyView:  components.NewHistory(),
		filter:       ti,
	}
}

// Messages
type tickMsg time.Time
type snapshotMsg core.Snapshot
type catalogMsg struct {
	items []catalog.Item
	err   error
}
type errMsg error

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSnapshot blocks until the coordinator publishes again. Update
// re-issues it after every snapshot, so the model follows the coordinator
// without polling.
func waitForSnapshot(ch <-chan core.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 15*time.Second)
		defer cancel()

		result := m.session.Catalog.ListAll(ctx)
		if result.HasErrors() && len(result.Data) == 0 {
			return catalogMsg{err: fmt.Errorf("%s", result.ErrorSummary())}
		}
		msg := catalogMsg{items: result.Data}
		if result.HasErrors() {
			msg.err = fmt.Errorf("some posts could not be loaded: %s", result.ErrorSummary())
		}
		return msg
	}
}

func (m Model) play(item catalog.Item) tea.Cmd {
	return func() tea.Msg {
		kind := item.Track.Kind
		if _, err := m.session.Play(m.ctx, kind, item.Post.ID, true); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) command(f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchCatalog()}
	if m.refresh > 0 {
		cmds = append(cmds, m.tick())
	}
	for _, kind := range []core.Kind{core.KindAudio, core.KindVideo} {
		ch, ok := m.updates[kind]
		if !ok {
			continue
		}
		cmds = append(cmds, waitForSnapshot(ch))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.lastError != nil && time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		return m, m.tick()

	case snapshotMsg:
		snap := core.Snapshot(msg)
		m.applySnapshot(snap)
		if ch, ok := m.updates[snap.Kind]; ok {
			return m, waitForSnapshot(ch)
		}
		return m, nil

	case catalogMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
		}
		if msg.items != nil {
			m.items = msg.items
			m.filtered = catalog.Filter(m.items, m.filter.Value())
		}
		return m, nil

	case errMsg:
		m.setError(msg)
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applySnapshot(snap core.Snapshot) {
	prev := m.snaps[snap.Kind]
	if snap.Seq < prev.Seq {
		return
	}
	m.snaps[snap.Kind] = snap

	if id := snap.TrackID(); id != "" && id != prev.TrackID() {
		m.history = components.AddHistory(m.history, *snap.Track, time.Now(), maxHistory)
		m.active = snap.Kind
	}
	if prev.State.IsPlaying && !snap.State.IsPlaying && snap.State.DurationKnown() &&
		snap.State.Position >= snap.State.Duration && len(m.history) > 0 &&
		m.history[0].Track.ID == snap.TrackID() {
		m.history[0].Finished = true
	}
	if time.Now().After(m.errorExpiry) {
		m.lastError = nil
	}
}

func (m *Model) setError(err error) {
	m.lastError = err
	m.errorExpiry = time.Now().Add(errorExpiry)
	m.log.WithError(err).Debug("ui error")
}

// navigate moves to loc and hands the video picture to whichever surface
// the new page shows.
func (m *Model) navigate(loc nav.Location) {
	m.location.Push(loc)
	m.syncPortal()
}

func (m *Model) back() {
	if m.location.Back() {
		m.syncPortal()
	}
}

func (m *Model) syncPortal() {
	if m.session.Video == nil {
		return
	}
	if kind, _, ok := m.location.Current().PlayerPage(); ok && kind == core.KindVideo {
		m.session.Video.SetPortalTarget(m.watchSurface)
		return
	}
	m.session.Video.ClearPortalTarget(m.watchSurface)
}

// focusKind is the coordinator playback keys act on.
func (m Model) focusKind() core.Kind {
	if kind, _, ok := m.location.Current().PlayerPage(); ok {
		return kind
	}
	return m.active
}

func (m Model) coordinator(kind core.Kind) *player.Coordinator {
	return m.session.Coordinator(kind)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.filtering {
		return m.handleFilterKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "esc", "backspace", "h":
		m.back()
		return m, nil
	case "tab":
		if m.active == core.KindAudio {
			m.active = core.KindVideo
		} else {
			m.active = core.KindAudio
		}
		return m, nil
	case "o":
		// Open the full page for the mini player's track.
		kind := m.focusKind()
		if id := m.snaps[kind].TrackID(); id != "" {
			m.navigate(pageFor(kind, id))
		}
		return m, nil
	}

	if cmd := m.playbackKey(msg.String()); cmd != nil {
		return m, cmd
	}

	if m.location.Current() != nav.Home {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		m.catalogView.SelectNext(len(m.filtered))
	case "k", "up":
		m.catalogView.SelectPrev()
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "r":
		m.session.Catalog.Invalidate()
		m.loading = true
		return m, m.fetchCatalog()
	case "enter", "l":
		i := m.catalogView.Selected()
		if i < 0 || i >= len(m.filtered) {
			return m, nil
		}
		item := m.filtered[i]
		if !item.Playable() {
			m.setError(fmt.Errorf("%q has no audio or video file", item.Post.Title))
			return m, nil
		}
		m.active = item.Track.Kind
		m.navigate(pageFor(item.Track.Kind, item.Post.ID))
		return m, m.play(item)
	}
	return m, nil
}

func (m Model) playbackKey(key string) tea.Cmd {
	c := m.coordinator(m.focusKind())
	if c == nil {
		return nil
	}
	snap := m.snaps[c.Kind()]

	switch key {
	case " ", "p":
		return m.command(c.TogglePlay)
	case "]", "right":
		return m.command(func() error { return c.Seek(snap.State.Position + seekStep) })
	case "[", "left":
		return m.command(func() error { return c.Seek(snap.State.Position - seekStep) })
	case "+", "=":
		return m.command(func() error { return c.SetVolume(snap.State.Volume + volumeStep) })
	case "-":
		return m.command(func() error { return c.SetVolume(snap.State.Volume - volumeStep) })
	case "m":
		return m.command(c.ToggleMute)
	case "s":
		return m.command(c.Stop)
	}
	return nil
}

func (m Model) handleFilterKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.filtered = m.items
		m.catalogView.Reset()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.filtered = catalog.Filter(m.items, m.filter.Value())
	m.catalogView.Reset()
	return m, cmd
}

func pageFor(kind core.Kind, id string) nav.Location {
	if kind == core.KindVideo {
		return nav.Watch(id)
	}
	return nav.Listen(id)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	loc := m.location.Current()
	var minis []string
	for _, kind := range []core.Kind{core.KindAudio, core.KindVideo} {
		if nav.ShowMiniPlayer(kind, loc, m.snaps[kind]) {
			minis = append(minis, m.miniPlayer.Render(m.snaps[kind], m.width))
		}
	}
	miniHeight := 3 * len(minis)

	mainHeight := m.height - miniHeight - 1
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth

	var left string
	if kind, _, ok := loc.PlayerPage(); ok {
		left = m.nowPlaying.Render(m.snaps[kind], m.surfaceLabel(kind), leftWidth-2, mainHeight-2)
	} else {
		left = m.renderBrowse(leftWidth-2, mainHeight-2)
	}
	right := m.historyView.Render(m.history, rightWidth-2, mainHeight-2, false)

	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, left, right)}
	parts = append(parts, minis...)
	parts = append(parts, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderBrowse(width, height int) string {
	if m.filtering || m.filter.Value() != "" {
		height -= 1
	}
	var loaded = make(map[string]bool)
	for _, snap := range m.snaps {
		if id := snap.TrackID(); id != "" {
			loaded[id] = true
		}
	}

	list := m.catalogView.Render(m.filtered, loaded, width, height, true)
	if m.loading && len(m.items) == 0 {
		list = styles.Panel(true).Width(width).Height(height).Render(styles.Muted.Render("Loading showcase..."))
	}
	if m.filtering || m.filter.Value() != "" {
		return lipgloss.JoinVertical(lipgloss.Left, " "+m.filter.View(), list)
	}
	return list
}

func (m Model) surfaceLabel(kind core.Kind) string {
	if kind != core.KindVideo || m.session.Video == nil {
		return ""
	}
	target := m.session.Video.PortalTarget()
	if s, ok := target.(fmt.Stringer); ok {
		return "Showing on " + s.String()
	}
	return "Showing offscreen"
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:filter  enter:open  space:play/pause  [/]:seek  +/-:volume  m:mute  esc:back")
	if m.location.Current() == nav.Home {
		status = styles.Dim.Render(fmt.Sprintf("[%s] ", m.active)) + status
	}

	if m.lastError != nil {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Showcase - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  Esc, h       Back
  o            Open the playing track's page
  Tab          Switch audio/video for playback keys

  Browse
  ──────
  j/↓  k/↑     Move
  Enter, l     Open and play
  /            Filter
  r            Reload

  Playback
  ────────
  Space, p     Play/Pause
  [ ]          Seek -/+10s
  +/=  -       Volume
  m            Mute
  s            Stop

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the TUI on a new session and closes it on exit.
func Run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	styles.Apply(cfg.TUI.Theme)

	mini := newPageSurface("mini player")
	sess, err := session.New(ctx, cfg, session.WithLogger(log), session.WithVideoFallback(mini))
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, sess, log)
	model.refresh = time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond
	model.follow(ctx)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// follow subscribes the model to both coordinators.
func (m *Model) follow(ctx context.Context) {
	for _, kind := range []core.Kind{core.KindAudio, core.KindVideo} {
		if c := m.coordinator(kind); c != nil {
			m.snaps[kind] = c.Snapshot()
			m.updates[kind] = c.Watch(ctx)
		}
	}
}
