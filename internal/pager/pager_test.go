package pager

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"
)

type scriptedConfirmer struct {
	answers   []bool
	questions []string
}

func (s *scriptedConfirmer) Confirm(question string) (bool, error) {
	s.questions = append(s.questions, question)
	if len(s.answers) == 0 {
		return false, io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

type recordingRenderer struct {
	windows [][2]int
}

func (r *recordingRenderer) Render(_ io.Writer, trips []model.Trip, _ bool) error {
	r.windows = append(r.windows, [2]int{trips[0].Index, trips[len(trips)-1].Index + 1})
	return nil
}

func tableOf(n int) model.Table {
	table := model.Table{}
	for i := 0; i < n; i++ {
		trip := model.Trip{Index: i, StartTime: time.Date(2017, time.January, 2, i, 0, 0, 0, time.UTC), StartStation: "A", EndStation: "B", UserType: "Subscriber"}
		trip.Derive()
		table.Trips = append(table.Trips, trip)
	}
	return table
}

func TestRunPagesUntilExhausted(t *testing.T) {
	ask := &scriptedConfirmer{answers: []bool{true, true, true}}
	render := &recordingRenderer{}
	var out bytes.Buffer
	if err := New(&out, ask, render, 5).Run(tableOf(12)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := [][2]int{{0, 5}, {5, 10}, {10, 12}}
	if len(render.windows) != len(want) {
		t.Fatalf("expected %d pages, got %v", len(want), render.windows)
	}
	for i := range want {
		if render.windows[i] != want[i] {
			t.Fatalf("page %d: expected %v, got %v", i, want[i], render.windows[i])
		}
	}
	// One opening question plus one after each page except the last.
	if len(ask.questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(ask.questions))
	}
	if !strings.Contains(out.String(), "No more raw data to display.") {
		t.Fatalf("expected exhaustion notice")
	}
}

func TestRunStopsWhenDeclined(t *testing.T) {
	ask := &scriptedConfirmer{answers: []bool{true, false}}
	render := &recordingRenderer{}
	if err := New(io.Discard, ask, render, 5).Run(tableOf(12)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(render.windows) != 1 {
		t.Fatalf("expected 1 page, got %v", render.windows)
	}
}

func TestRunDeclinedUpFront(t *testing.T) {
	ask := &scriptedConfirmer{answers: []bool{false}}
	render := &recordingRenderer{}
	if err := New(io.Discard, ask, render, 5).Run(tableOf(3)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(render.windows) != 0 {
		t.Fatalf("expected no pages, got %v", render.windows)
	}
}

func TestRunEmptyTableDoesNotAsk(t *testing.T) {
	ask := &scriptedConfirmer{}
	var out bytes.Buffer
	if err := New(&out, ask, &recordingRenderer{}, 5).Run(model.Table{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ask.questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(ask.questions))
	}
	if !strings.Contains(out.String(), "No raw data to display.") {
		t.Fatalf("expected empty notice, got %q", out.String())
	}
}

func TestRecordsIncludeDerivedColumns(t *testing.T) {
	records := Records(tableOf(2).Trips, false)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	header := records[0]
	if header[len(header)-2] != "day_of_week" {
		t.Fatalf("unexpected header: %v", header)
	}
	row := records[2]
	if row[0] != "1" || row[1] != "2017-01-02 01:00:00" || row[len(row)-2] != "Monday" || row[len(row)-1] != "1" {
		t.Fatalf("unexpected row: %v", row)
	}
	if len(Records(nil, true)[0]) != len(header)+2 {
		t.Fatalf("expected demographic columns in header")
	}
}

func TestFrameRendererWritesRows(t *testing.T) {
	var out bytes.Buffer
	if err := (FrameRenderer{}).Render(&out, tableOf(2).Trips, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected rendered frame")
	}
}
