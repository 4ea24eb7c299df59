package browse

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/bikeshare/internal/model"
)

func sampleTable(n int) model.Table {
	table := model.Table{City: model.City{ID: "chicago", Name: "Chicago"}, HasDemographics: true}
	for i := 0; i < n; i++ {
		trip := model.Trip{
			Index:        i,
			StartTime:    time.Date(2017, time.March, 3, 8, i, 0, 0, time.UTC),
			StartStation: "Canal St & Adams St",
			EndStation:   "Clinton St & Madison St",
			UserType:     "Subscriber",
		}
		trip.Derive()
		table.Trips = append(table.Trips, trip)
	}
	return table
}

func TestBuildTableData(t *testing.T) {
	cols, rows := buildTableData(sampleTable(3))
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if len(cols) != len(rows[0]) {
		t.Fatalf("column count %d does not match row width %d", len(cols), len(rows[0]))
	}
	for _, c := range cols {
		if c.Width > maxColumnWidth || c.Width <= 0 {
			t.Fatalf("unexpected width for %s: %d", c.Title, c.Width)
		}
	}
	if cols[4].Title != "Start Station" || cols[4].Width != len("Canal St & Adams St") {
		t.Fatalf("unexpected station column: %+v", cols[4])
	}
}

func TestRenderFooterTracksCursor(t *testing.T) {
	m := NewModel(sampleTable(3), model.Filter{Month: 3})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	out := m.renderFooter()
	if !strings.Contains(out, "Row 3/3") {
		t.Fatalf("expected cursor at last row, got %q", out)
	}
	if !strings.Contains(m.View(), "Chicago trips · month March · day all") {
		t.Fatalf("unexpected title:\n%s", m.View())
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(sampleTable(1), model.Filter{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestEmptyTableView(t *testing.T) {
	m := NewModel(model.Table{City: model.City{Name: "Chicago"}}, model.Filter{})
	if !strings.Contains(m.View(), "No trips match") {
		t.Fatalf("expected empty notice, got %q", m.View())
	}
}
