// Package pager shows raw trip rows a page at a time.
package pager

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"github.com/verte-zerg/bikeshare/internal/model"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 5

// Confirmer asks yes/no questions.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Renderer prints one window of trips.
type Renderer interface {
	Render(w io.Writer, trips []model.Trip, demographics bool) error
}

// Pager walks a table in fixed-size windows.
type Pager struct {
	out    io.Writer
	ask    Confirmer
	render Renderer
	size   int
}

// New returns a Pager. A nil renderer uses FrameRenderer.
func New(out io.Writer, ask Confirmer, render Renderer, size int) *Pager {
	if render == nil {
		render = FrameRenderer{}
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{out: out, ask: ask, render: render, size: size}
}

// Run offers the raw rows of table. It shows pages while rows remain and
// the user agrees to continue, and never asks once the table is exhausted.
func (p *Pager) Run(table model.Table) error {
	if table.Len() == 0 {
		_, err := fmt.Fprintln(p.out, "\nNo raw data to display.")
		return err
	}
	ok, err := p.ask.Confirm(fmt.Sprintf("\nWould you like to see %d lines of raw data? Enter yes or no.\n", p.size))
	if err != nil || !ok {
		return err
	}
	offset := 0
	for {
		if err := p.render.Render(p.out, table.Window(offset, p.size), table.HasDemographics); err != nil {
			return err
		}
		offset += p.size
		if offset >= table.Len() {
			_, err := fmt.Fprintln(p.out, "\nNo more raw data to display.")
			return err
		}
		more, err := p.ask.Confirm(fmt.Sprintf("\nWould you like to see the next %d rows of raw data? Enter yes or no.\n", p.size))
		if err != nil || !more {
			return err
		}
	}
}

// FrameRenderer prints a window as a dataframe.
type FrameRenderer struct{}

// Render implements Renderer.
func (FrameRenderer) Render(w io.Writer, trips []model.Trip, demographics bool) error {
	if len(trips) == 0 {
		return nil
	}
	df := dataframe.LoadRecords(Records(trips, demographics),
		dataframe.DetectTypes(false),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return fmt.Errorf("failed to build raw data frame: %w", df.Err)
	}
	_, err := fmt.Fprintln(w, df.String())
	return err
}

// Header returns the raw column names, including the derived fields.
func Header(demographics bool) []string {
	header := []string{"Index", "Start Time", "End Time", "Trip Duration", "Start Station", "End Station", "User Type"}
	if demographics {
		header = append(header, "Gender", "Birth Year")
	}
	return append(header, "month", "day_of_week", "hour")
}

// Records converts trips to string records with a header row.
func Records(trips []model.Trip, demographics bool) [][]string {
	records := make([][]string, 0, len(trips)+1)
	records = append(records, Header(demographics))
	for _, trip := range trips {
		records = append(records, Row(trip, demographics))
	}
	return records
}

// Row converts one trip to the raw column values.
func Row(trip model.Trip, demographics bool) []string {
	const layout = "2006-01-02 15:04:05"
	end := ""
	if !trip.EndTime.IsZero() {
		end = trip.EndTime.Format(layout)
	}
	duration := ""
	if trip.HasDuration {
		duration = strconv.FormatFloat(trip.DurationSeconds, 'f', -1, 64)
	}
	row := []string{
		strconv.Itoa(trip.Index),
		trip.StartTime.Format(layout),
		end,
		duration,
		trip.StartStation,
		trip.EndStation,
		trip.UserType,
	}
	if demographics {
		birth := ""
		if trip.HasBirthYear {
			birth = strconv.Itoa(trip.BirthYear)
		}
		row = append(row, trip.Gender, birth)
	}
	return append(row, strconv.Itoa(trip.Month), trip.Weekday.String(), strconv.Itoa(trip.Hour))
}
