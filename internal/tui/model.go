package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moviola/moviola/internal/player"
	"github.com/moviola/moviola/internal/timeline"
)

// engineUpdateMsg carries one update popped from the player feed.
type engineUpdateMsg struct {
	update player.Update
}

// feedClosedMsg reports that the player feed has drained and closed.
type feedClosedMsg struct{}

// Model renders a loaded player as an interactive timeline. All playback
// state it displays comes from the player's update feed; key handlers only
// issue commands and never mutate playback fields directly.
type Model struct {
	player *player.Player
	cfg    player.Config

	state       player.PlaybackState
	markers     []timeline.Marker
	markerIndex int
	highlight   timeline.Marker
	highlighted bool
	lastErr     string
	feedDone    bool

	keys   keyMap
	help   help.Model
	styles styles
	width  int
	height int
}

// New builds a model for an already-loaded player.
func New(p *player.Player, cfg player.Config) Model {
	return Model{
		player:      p,
		cfg:         cfg,
		state:       p.State(),
		markers:     p.Markers(),
		markerIndex: -1,
		keys:        defaultKeyMap(),
		help:        help.New(),
		styles:      defaultStyles(),
		width:       80,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.player.Updates())
}

// waitForUpdate pops the next feed update, blocking on the feed's signal
// channel when nothing is pending. Leftover updates are drained before the
// feed's closure is reported so no state change is lost on shutdown.
func waitForUpdate(feed *player.UpdateFeed) tea.Cmd {
	return func() tea.Msg {
		for {
			if u, ok := feed.TryNext(); ok {
				return engineUpdateMsg{update: u}
			}
			if feed.Closed() {
				return feedClosedMsg{}
			}
			<-feed.Wait()
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case engineUpdateMsg:
		m = m.applyUpdate(msg.update)
		return m, waitForUpdate(m.player.Updates())

	case feedClosedMsg:
		m.feedDone = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyUpdate folds one feed update into the display state.
func (m Model) applyUpdate(u player.Update) Model {
	switch u.Kind {
	case player.UpdateState:
		m.state = u.State
	case player.UpdateHighlight:
		m.highlight = u.Marker
		m.highlighted = u.Highlighted
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.PlayPause):
		if m.state.Phase == player.PhasePlaying {
			m.lastErr = errText(m.player.Pause())
		} else {
			m.lastErr = errText(m.player.Play())
		}

	case key.Matches(msg, m.keys.SkipBack):
		m.lastErr = errText(m.player.SkipBackward(m.cfg.SkipStepMs))

	case key.Matches(msg, m.keys.SkipForward):
		m.lastErr = errText(m.player.SkipForward(m.cfg.SkipStepMs))

	case key.Matches(msg, m.keys.SpeedUp):
		m.lastErr = errText(m.player.SetSpeed(nextSpeed(m.cfg.SpeedOptions, m.state.SpeedMultiplier, true)))

	case key.Matches(msg, m.keys.SpeedDown):
		m.lastErr = errText(m.player.SetSpeed(nextSpeed(m.cfg.SpeedOptions, m.state.SpeedMultiplier, false)))

	case key.Matches(msg, m.keys.NextMarker):
		if len(m.markers) > 0 && m.markerIndex < len(m.markers)-1 {
			m.markerIndex++
		}

	case key.Matches(msg, m.keys.PrevMarker):
		switch {
		case len(m.markers) == 0:
		case m.markerIndex < 0:
			m.markerIndex = len(m.markers) - 1
		case m.markerIndex > 0:
			m.markerIndex--
		}

	case key.Matches(msg, m.keys.FirstMarker):
		if len(m.markers) > 0 {
			m.markerIndex = 0
		}

	case key.Matches(msg, m.keys.OpenMarker):
		if m.markerIndex >= 0 && m.markerIndex < len(m.markers) {
			m.lastErr = errText(m.player.OnMarkerClick(m.markers[m.markerIndex]))
		}

	case key.Matches(msg, m.keys.ClearMarker):
		m.markerIndex = -1
	}
	return m, nil
}

// errText flattens a command error into the status line, clearing it on
// success so stale failures do not linger.
func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.state.Phase == player.PhaseNoEvents {
		b.WriteString(m.styles.notice.Render("this capture has no replayable events") + "\n")
	} else {
		cells := m.barCells()
		if row := m.renderMarkerRow(cells); row != "" {
			b.WriteString(row + "\n")
		}
		b.WriteString(m.renderBar(cells) + "\n")
		b.WriteString(m.renderScrubber() + "\n")
	}

	if detail := m.renderMarkerDetail(); detail != "" {
		b.WriteString("\n" + detail + "\n")
	}
	if m.lastErr != "" {
		b.WriteString("\n" + m.styles.errorLine.Render("✗ "+m.lastErr) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// barCells sizes the timeline bar to the terminal, bounded so narrow
// windows stay legible and wide ones do not smear markers apart.
func (m Model) barCells() int {
	cells := m.width - 4
	if cells < 20 {
		cells = 20
	}
	if cells > 100 {
		cells = 100
	}
	return cells
}

func (m Model) renderHeader() string {
	title := m.styles.title.Render("moviola")
	token := m.styles.token.Render("session " + m.player.SessionToken())
	badge := m.styles.phaseStyle(m.state.Phase).Render(" " + string(m.state.Phase) + " ")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", token, "  ", badge)
}

// renderMarkerRow draws one glyph per marker above the bar, collapsing
// markers that share a cell into a cluster glyph colored by the highest
// priority member.
func (m Model) renderMarkerRow(cells int) string {
	if len(m.markers) == 0 {
		return ""
	}
	grouped := markerCells(m.markers, m.state.DurationMs, cells)
	var row strings.Builder
	row.WriteString(" ")
	for i := 0; i < cells; i++ {
		idxs := grouped[i]
		switch {
		case len(idxs) == 0:
			row.WriteString(" ")
		case len(idxs) == 1:
			row.WriteString(m.renderMarkerGlyph(idxs[0]))
		default:
			best := idxs[0]
			for _, j := range idxs[1:] {
				if markerPriority(m.markers[j].Type) > markerPriority(m.markers[best].Type) {
					best = j
				}
			}
			style := m.styles.markerStyle(m.markers[best].Type).Inherit(m.styles.cluster)
			if m.cellSelected(idxs) {
				style = style.Inherit(m.styles.selected)
			}
			row.WriteString(style.Render("●"))
		}
	}
	return row.String()
}

func (m Model) renderMarkerGlyph(idx int) string {
	marker := m.markers[idx]
	style := m.styles.markerStyle(marker.Type)
	switch {
	case m.highlighted && marker == m.highlight:
		style = style.Inherit(m.styles.highlighted)
	case idx == m.markerIndex:
		style = style.Inherit(m.styles.selected)
	}
	return style.Render(markerSymbol(marker.Type))
}

func (m Model) cellSelected(idxs []int) bool {
	for _, idx := range idxs {
		if idx == m.markerIndex {
			return true
		}
	}
	return false
}

func (m Model) renderBar(cells int) string {
	var bar strings.Builder
	bar.WriteString(m.styles.bracket.Render("["))
	head := barCell(m.state.CurrentTimeMs, m.state.DurationMs, cells)
	for i := 0; i < cells; i++ {
		switch {
		case i == head:
			bar.WriteString(m.styles.playhead.Render("●"))
		case i < head:
			bar.WriteString(m.styles.elapsed.Render("━"))
		default:
			bar.WriteString(m.styles.remaining.Render("─"))
		}
	}
	bar.WriteString(m.styles.bracket.Render("]"))
	return bar.String()
}

func (m Model) renderScrubber() string {
	clock := fmt.Sprintf("%s / %s", formatClock(m.state.CurrentTimeMs), formatClock(m.state.DurationMs))
	speed := fmt.Sprintf("%gx", m.state.SpeedMultiplier)
	return " " + m.styles.scrubber.Render(clock+"   "+speed)
}

func (m Model) renderMarkerDetail() string {
	var lines []string
	if m.markerIndex >= 0 && m.markerIndex < len(m.markers) {
		marker := m.markers[m.markerIndex]
		head := m.styles.detailKey.Render(fmt.Sprintf("marker %d/%d: ", m.markerIndex+1, len(m.markers)))
		body := fmt.Sprintf("%s at %s: %s", marker.Type, formatClock(marker.TimestampMs), marker.Label)
		if marker.Details != "" {
			body += " (" + marker.Details + ")"
		}
		lines = append(lines, head+m.styles.detailValue.Render(body))
	}
	if m.highlighted {
		style := m.styles.markerStyle(m.highlight.Type).Inherit(m.styles.cluster)
		lines = append(lines, style.Render(fmt.Sprintf("highlight: %s at %s", m.highlight.Type, formatClock(m.highlight.TimestampMs))))
	}
	return strings.Join(lines, "\n")
}
