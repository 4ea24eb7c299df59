package stats

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/verte-zerg/bikeshare/internal/model"
)

// Separator closes every report section.
var Separator = strings.Repeat("-", 40)

const noDataMessage = "No data available for the selected filters."

// Printer renders the statistics sections to a writer.
type Printer struct {
	w   io.Writer
	err error

	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style

	now func() time.Time
}

// NewPrinter returns a Printer writing to w. Styles are applied only when
// color is true.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:       w,
		heading: r.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		now:     time.Now,
	}
}

// All renders the four sections in their fixed order.
func (p *Printer) All(table model.Table) error {
	p.Time(table)
	p.Stations(table)
	p.Durations(table)
	p.Users(table)
	return p.err
}

// Time renders the most frequent times of travel.
func (p *Printer) Time(table model.Table) error {
	p.section("Calculating The Most Frequent Times of Travel...", func() {
		ts, err := ComputeTimeStats(table)
		if err != nil {
			p.noData(err)
			return
		}
		p.field("Most common month", time.Month(ts.Month).String())
		p.field("Most common day of week", ts.Weekday.String())
		p.field("Most common start hour", strconv.Itoa(ts.Hour))
		hours := make([]float64, len(ts.HourCounts))
		for i, n := range ts.HourCounts {
			hours[i] = float64(n)
		}
		p.field("Trips by hour (0-23)", "["+Sparkline(hours)+"]")
	})
	return p.err
}

// Stations renders the most popular stations and trip.
func (p *Printer) Stations(table model.Table) error {
	p.section("Calculating The Most Popular Stations and Trip...", func() {
		ss, err := ComputeStationStats(table)
		if err != nil {
			p.noData(err)
			return
		}
		p.field("Most common start station", ss.StartStation)
		p.field("Most common end station", ss.EndStation)
		p.field("The most popular trip from start to end is",
			fmt.Sprintf("%s -> %s (%s trips)", ss.Trip.Start, ss.Trip.End, humanize.Comma(int64(ss.TripCount))))
	})
	return p.err
}

// Durations renders total and average trip duration.
func (p *Printer) Durations(table model.Table) error {
	p.section("Calculating Trip Duration...", func() {
		ds, err := ComputeDurationStats(table)
		if err != nil {
			p.noData(err)
			return
		}
		p.field("Total travel time", FormatDuration(ds.Total))
		p.field("Average travel time", FormatDuration(ds.Mean))
	})
	return p.err
}

// Users renders user type, gender and birth year statistics.
func (p *Printer) Users(table model.Table) error {
	p.section("Calculating User Stats...", func() {
		us, err := ComputeUserStats(table)
		if err != nil {
			p.noData(err)
		} else {
			p.println(p.label.Render("Counts of user types:"))
			p.counts(us.UserTypes)
			if us.HasDemographics {
				p.println("")
				p.println(p.label.Render("Counts of gender:"))
				if len(us.Genders) == 0 {
					p.println("No gender data available.")
				} else {
					p.counts(us.Genders)
				}
				p.println("")
				if us.HasBirthYears {
					p.field("Earliest year of birth", strconv.Itoa(us.EarliestBirth))
					p.field("Most recent year of birth", strconv.Itoa(us.LatestBirth))
					p.field("Most common year of birth", strconv.Itoa(us.CommonBirth))
				} else {
					p.println("No birth year data available.")
				}
			}
		}
		if !table.HasDemographics {
			p.println("")
			p.println(fmt.Sprintf("No gender or birth year data available for %s.", table.City.Name))
		}
	})
	return p.err
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) section(title string, body func()) {
	started := p.now()
	p.println("")
	p.println(p.heading.Render(title))
	p.println("")
	body()
	elapsed := p.now().Sub(started)
	p.println("")
	p.println(p.muted.Render(fmt.Sprintf("This took %.2f seconds.", elapsed.Seconds())))
	p.println(Separator)
}

func (p *Printer) field(label, value string) {
	p.println(p.label.Render(label+":") + " " + value)
}

func (p *Printer) counts(values []Count[string]) {
	rows := make([][]string, 0, len(values))
	for _, c := range values {
		rows = append(rows, []string{c.Value, humanize.Comma(int64(c.Count))})
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		p.println(line)
	}
}

func (p *Printer) noData(err error) {
	if errors.Is(err, ErrNoData) {
		p.println(p.warn.Render(noDataMessage))
		return
	}
	p.println(p.warn.Render(err.Error()))
}

func (p *Printer) println(line string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, line)
}
