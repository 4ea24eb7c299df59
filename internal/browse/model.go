// Package browse provides the Bubble Tea raw trip browser.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/bikeshare/internal/model"
	"github.com/verte-zerg/bikeshare/internal/pager"
)

const maxColumnWidth = 32

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Model implements the Bubble Tea trip browser.
type Model struct {
	trips  model.Table
	filter model.Filter
	table  table.Model

	width  int
	height int
}

// NewModel constructs a browser over an already filtered table.
func NewModel(trips model.Table, f model.Filter) *Model {
	cols, rows := buildTableData(trips)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &Model{trips: trips, filter: f, table: t}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		// Title line, blank line and footer.
		m.table.SetHeight(max(1, msg.Height-3))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.table.GotoTop()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("%s trips · month %s · day %s",
		m.trips.City.Name, m.filter.MonthName(), m.filter.DayName()))
	if m.trips.Len() == 0 {
		return title + "\n\n" + emptyStyle.Render("No trips match the selected filters. Press q to quit.")
	}
	return title + "\n" + m.table.View() + "\n" + m.renderFooter()
}

func (m *Model) renderFooter() string {
	total := m.trips.Len()
	if total == 0 {
		return ""
	}
	pos := m.table.Cursor() + 1
	segments := []string{
		fmt.Sprintf("Row %s/%s", humanize.Comma(int64(pos)), humanize.Comma(int64(total))),
		"↑/↓ move",
		"g/G top/bottom",
		"q quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func buildTableData(trips model.Table) ([]table.Column, []table.Row) {
	header := pager.Header(trips.HasDemographics)
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	rows := make([]table.Row, 0, trips.Len())
	for _, trip := range trips.Trips {
		row := pager.Row(trip, trips.HasDemographics)
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, table.Row(row))
	}
	cols := make([]table.Column, len(header))
	for i, h := range header {
		cols[i] = table.Column{Title: h, Width: min(widths[i], maxColumnWidth)}
	}
	return cols, rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	return styles
}
