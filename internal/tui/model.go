// Package tui is an interactive terminal viewer for one chart session.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amirbrooks/ganttcsv/internal/render"
	"github.com/amirbrooks/ganttcsv/internal/rows"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

const (
	// headerLines is the number of date header lines above the first row.
	headerLines = 2
	// fitCellPx is the pixel width assumed per terminal column when fitting.
	fitCellPx   = 7
	chromeLines = 3
)

type Model struct {
	sess  *session.Session
	style render.Style
	keys  keyMap
	help  help.Model
	vp    viewport.Model

	cursor int
	width  int
	height int
	status string
	err    error

	frame *session.Frame

	// OnChange, when set, runs after every state change (e.g. to persist it).
	OnChange func(session.State) error

	title, statusStyle, errStyle lipgloss.Style
}

// New wraps a session that already holds a generated Model.
func New(s *session.Session, st render.Style) *Model {
	base := lipgloss.NewStyle()
	m := &Model{
		sess:        s,
		style:       st,
		keys:        newKeyMap(),
		help:        help.New(),
		vp:          viewport.New(render.DefaultTermWidth, 20),
		width:       render.DefaultTermWidth,
		height:      24,
		title:       base.Copy().Bold(true).Padding(0, 1),
		statusStyle: base.Copy().Faint(true).Padding(0, 1),
		errStyle:    base.Copy().Foreground(lipgloss.Color("#d81b60")).Padding(0, 1),
	}
	m.refresh()
	return m
}

// Run starts the viewer in the alternate screen.
func Run(s *session.Session, st render.Style, onChange func(session.State) error) error {
	m := New(s, st)
	m.OnChange = onChange
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.vp.Width = msg.Width
		m.vp.Height = max(1, msg.Height-chromeLines)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.move(-1)
	case key.Matches(msg, m.keys.down):
		m.move(1)
	case key.Matches(msg, m.keys.toggle):
		m.apply(m.toggleCurrent())
	case key.Matches(msg, m.keys.toggleCats):
		m.apply(m.sess.ToggleAllCategories())
	case key.Matches(msg, m.keys.toggleViews):
		m.apply(m.sess.ToggleAllViewpoints())
	case key.Matches(msg, m.keys.toggleTasks):
		m.sess.ToggleTaskRows()
		m.apply(nil)
	case key.Matches(msg, m.keys.zoom):
		z := m.sess.CycleZoom()
		m.status = fmt.Sprintf("zoom %s", z)
		m.apply(nil)
	case key.Matches(msg, m.keys.fit):
		m.apply(m.sess.FitToWidth(m.chartCols() * fitCellPx))
		if m.err == nil {
			m.status = fmt.Sprintf("fit %dpx/day", m.sess.DayWidth())
		}
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) toggleCurrent() error {
	if m.frame == nil || m.cursor >= len(m.frame.Rows) {
		return nil
	}
	r := m.frame.Rows[m.cursor]
	switch r.Kind {
	case rows.KindGroup:
		return m.sess.ToggleCategory(r.Category)
	case rows.KindSubgroup:
		return m.sess.ToggleViewpoint(r.Key)
	}
	return nil
}

func (m *Model) apply(err error) {
	m.err = err
	if err != nil {
		return
	}
	m.refresh()
	if m.OnChange != nil {
		if err := m.OnChange(m.sess.Snapshot()); err != nil {
			m.err = err
		}
	}
}

func (m *Model) move(delta int) {
	if m.frame == nil || len(m.frame.Rows) == 0 {
		return
	}
	m.cursor = min(max(0, m.cursor+delta), len(m.frame.Rows)-1)
	m.render()
}

func (m *Model) chartCols() int {
	return max(1, m.width-render.DefaultLabelCols-1)
}

// refresh recomputes the frame and clamps the cursor.
func (m *Model) refresh() {
	f, err := m.sess.Frame()
	if err != nil {
		m.err = err
		m.frame = nil
		m.vp.SetContent("")
		return
	}
	m.frame = f
	if m.cursor >= len(f.Rows) {
		m.cursor = max(0, len(f.Rows)-1)
	}
	m.keys.toggleCats.SetHelp("a", foldHelp(m.sess.AnyCategoryExpanded(), "categories"))
	m.keys.toggleViews.SetHelp("v", foldHelp(m.sess.AnyViewpointExpanded(), "viewpoints"))
	m.render()
}

// foldHelp names what the fold-all keys do next.
func foldHelp(anyOpen bool, what string) string {
	if anyOpen {
		return "collapse " + what
	}
	return "expand " + what
}

func (m *Model) render() {
	if m.frame == nil {
		return
	}
	content := render.Terminal(m.frame, m.style, render.TermOptions{
		Width:     m.width,
		Cursor:    m.cursor,
		Collapsed: m.sess.Collapsed,
	})
	m.vp.SetContent(content)
	line := m.cursor + headerLines
	switch {
	case line < m.vp.YOffset+headerLines:
		m.vp.SetYOffset(max(0, line-headerLines))
	case line >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(line - m.vp.Height + 1)
	}
}

func (m *Model) View() string {
	title := m.title.Render(fmt.Sprintf("%s  %s", m.sess.Source, m.sess.Zoom))
	status := m.statusStyle.Render(m.status)
	if m.err != nil {
		status = m.errStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, status),
		m.vp.View(),
		m.help.View(m.keys),
	)
}

// Cursor is the highlighted row index.
func (m *Model) Cursor() int { return m.cursor }

// Frame is the frame currently on screen.
func (m *Model) Frame() *session.Frame { return m.frame }
