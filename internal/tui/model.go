// Package tui is an interactive terminal front end for a grid.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

const (
	maxColumnWidth = 40
	detailHeight   = 6
)

type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputSearch
)

// changedMsg reports that the grid emitted events since the last redraw.
type changedMsg struct{}

// fetchFailedMsg carries a source failure to the status line.
type fetchFailedMsg struct{ err error }

// Model is the bubbletea model wrapping a grid.
type Model struct {
	ctx    context.Context
	grid   *grid.Grid
	src    grid.RecordSource
	logger *slog.Logger

	changes   chan struct{}
	failures  chan error
	unsubGrid func()

	table   table.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	detail  viewport.Model
	keys    keyMap
	styles  styles

	ids    []string
	mode   inputMode
	column int
	status string
	width  int
	height int
}

var _ tea.Model = (*Model)(nil)

type styles struct {
	title    lipgloss.Style
	focused  lipgloss.Style
	muted    lipgloss.Style
	errorMsg lipgloss.Style
	detail   lipgloss.Style
}

// New creates a model for g, which should already be attached to src.
// The source is fetched when the program starts.
func New(ctx context.Context, g *grid.Grid, src grid.RecordSource, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	keys := defaultKeyMap()
	tableKeys := table.DefaultKeyMap()
	tableKeys.LineUp = keys.Up
	tableKeys.LineDown = keys.Down
	tableKeys.PageUp = key.NewBinding(key.WithDisabled())
	tableKeys.PageDown = key.NewBinding(key.WithDisabled())
	tableKeys.HalfPageUp = key.NewBinding(key.WithDisabled())
	tableKeys.HalfPageDown = key.NewBinding(key.WithDisabled())
	tableKeys.GotoTop = key.NewBinding(key.WithDisabled())
	tableKeys.GotoBottom = key.NewBinding(key.WithDisabled())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	input := textinput.New()
	input.CharLimit = 256

	m := &Model{
		ctx:      ctx,
		grid:     g,
		src:      src,
		logger:   logger,
		changes:  make(chan struct{}, 1),
		failures: make(chan error, 1),
		table: table.New(
			table.WithFocused(true),
			table.WithKeyMap(tableKeys),
			table.WithHeight(12),
		),
		input:   input,
		spinner: sp,
		help:    help.New(),
		detail:  viewport.New(80, detailHeight),
		keys:    keys,
		styles: styles{
			title:    lipgloss.NewStyle().Bold(true),
			focused:  lipgloss.NewStyle().Underline(true),
			muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
			detail:   lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(0, 1),
		},
	}

	m.unsubGrid = g.Subscribe(func(ev grid.Event) {
		var err error
		switch e := ev.(type) {
		case grid.FetchFailed:
			err = e.Err
		case grid.WriteFailed:
			err = e.Err
		}
		if err != nil {
			select {
			case m.failures <- err:
			default:
			}
		}
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m
}

// Close stops listening to the grid.
func (m *Model) Close() {
	if m.unsubGrid != nil {
		m.unsubGrid()
		m.unsubGrid = nil
	}
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitForChange(), m.spinner.Tick)
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		if err := m.src.Fetch(m.ctx); err != nil {
			return fetchFailedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return changedMsg{}
		case err := <-m.failures:
			return fetchFailedMsg{err: err}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles input and grid notifications.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case fetchFailedMsg:
		m.status = msg.err.Error()
		m.logger.Debug("source failed", "error", msg.err)
		m.refresh()
		return m, m.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m, m.updateInput(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	cols := m.grid.VisibleColumns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		if m.column > 0 {
			m.column--
		}
	case key.Matches(msg, m.keys.Right):
		if m.column < len(cols)-1 {
			m.column++
		}
	case key.Matches(msg, m.keys.Sort), key.Matches(msg, m.keys.SortMulti):
		if c, ok := m.focusedColumn(); ok {
			multi := key.Matches(msg, m.keys.SortMulti) && m.grid.Multisort()
			if !m.grid.ApplySort(c.Name, multi) && !c.Sortable {
				m.status = fmt.Sprintf("%s is not sortable", c.Label())
			}
		}
	case key.Matches(msg, m.keys.Filter):
		if c, ok := m.focusedColumn(); ok {
			if c.Filter == grid.FilterNone {
				m.status = fmt.Sprintf("%s has no filter", c.Label())
				break
			}
			return m.openInput(inputFilter, c)
		}
	case key.Matches(msg, m.keys.Search):
		if c, ok := m.focusedColumn(); ok {
			return m.openInput(inputSearch, c)
		}
	case key.Matches(msg, m.keys.NextPage):
		m.grid.SetPage(grid.NextPage)
	case key.Matches(msg, m.keys.PrevPage):
		m.grid.SetPage(grid.PrevPage)
	case key.Matches(msg, m.keys.FirstPage):
		m.grid.SetPage(grid.FirstPage)
	case key.Matches(msg, m.keys.LastPage):
		m.grid.SetPage(grid.LastPage)
	case key.Matches(msg, m.keys.Grow):
		m.stepPageSize(1)
	case key.Matches(msg, m.keys.Shrink):
		m.stepPageSize(-1)
	case key.Matches(msg, m.keys.Select):
		if id, ok := m.cursorID(); ok {
			m.grid.ToggleSelect(id, m.grid.Multiselect())
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.grid.SelectAll(true)
	case key.Matches(msg, m.keys.SelectNone):
		m.grid.ClearSelection()
	case key.Matches(msg, m.keys.Expand):
		if id, ok := m.cursorID(); ok {
			if m.grid.Subgrid() {
				m.grid.ToggleExpand(id)
			} else {
				m.grid.Activate(id)
			}
		}
	case key.Matches(msg, m.keys.Reload):
		m.status = ""
		return m.fetch()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.updateDetail(m.grid.Snapshot())
		return cmd
	}

	m.refresh()
	return nil
}

// stepPageSize moves through the row list. ShowAll sorts last.
func (m *Model) stepPageSize(delta int) {
	sizes := m.grid.RowList()
	if len(sizes) == 0 {
		return
	}
	order := slices.Clone(sizes)
	slices.SortFunc(order, func(a, b int) int {
		switch {
		case a == b:
			return 0
		case a == grid.ShowAll:
			return 1
		case b == grid.ShowAll:
			return -1
		default:
			return a - b
		}
	})

	i := slices.Index(order, m.grid.PageSize())
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(order) - 1
	default:
		i += delta
	}
	if i < 0 || i >= len(order) {
		return
	}
	m.grid.SetPageSize(order[i])
}

func (m *Model) openInput(mode inputMode, c grid.Column) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	switch mode {
	case inputFilter:
		m.input.Prompt = c.Label() + " ~ "
		for _, f := range m.grid.Filters() {
			if f.Column == c.Name {
				m.input.SetValue(f.Text)
			}
		}
		if c.Filter == grid.FilterEnumerated {
			m.input.Placeholder = strings.Join(m.grid.FilterOptions(c.Name), " | ")
		} else {
			m.input.Placeholder = ""
		}
	case inputSearch:
		m.input.Prompt = m.grid.Labels().Search + " " + c.Label() + ": "
		if s, ok := m.grid.CurrentSearch(); ok && s.Column == c.Name {
			m.input.SetValue(s.Pattern)
		}
		m.input.Placeholder = "regexp"
	}
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return nil
	case tea.KeyEnter:
		value := m.input.Value()
		if c, ok := m.focusedColumn(); ok {
			switch m.mode {
			case inputFilter:
				m.grid.ApplyFilter(c.Name, value)
			case inputSearch:
				m.grid.Search(c.Name, value)
			}
		}
		m.closeInput()
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) closeInput() {
	m.mode = inputNone
	m.input.Blur()
}

func (m *Model) focusedColumn() (grid.Column, bool) {
	cols := m.grid.VisibleColumns()
	if m.column < 0 || m.column >= len(cols) {
		return grid.Column{}, false
	}
	return cols[m.column], true
}

func (m *Model) cursorID() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.ids) {
		return "", false
	}
	return m.ids[i], true
}
