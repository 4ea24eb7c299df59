// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Source kinds for a city's dataset.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// All is the user-facing value that disables a filter dimension.
const All = "all"

// City describes one configured dataset.
type City struct {
	ID     string
	Name   string
	Path   string
	Source string
}

// Trip is a single trip record with its derived time fields.
type Trip struct {
	Index           int
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds float64
	HasDuration     bool
	StartStation    string
	EndStation      string
	UserType        string
	Gender          string
	BirthYear       int
	HasBirthYear    bool

	// Derived from StartTime once, at load time.
	Month   int
	Weekday time.Weekday
	Hour    int
}

// Derive fills Month, Weekday and Hour from StartTime.
func (t *Trip) Derive() {
	t.Month = int(t.StartTime.Month())
	t.Weekday = t.StartTime.Weekday()
	t.Hour = t.StartTime.Hour()
}

// Table is an ordered set of trips for one city.
type Table struct {
	City  City
	Trips []Trip
	// HasDemographics reports whether the source exposes gender and birth year.
	HasDemographics bool
}

// Len returns the number of trips.
func (t Table) Len() int {
	return len(t.Trips)
}

// Window returns trips in [offset, offset+size), clipped to the table.
func (t Table) Window(offset, size int) []Trip {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.Trips) || size <= 0 {
		return nil
	}
	end := offset + size
	if end > len(t.Trips) {
		end = len(t.Trips)
	}
	return t.Trips[offset:end]
}

// Months lists the selectable month names in calendar order.
var Months = []string{"january", "february", "march", "april", "may", "june"}

// Days lists the selectable day names, Sunday first to match time.Weekday.
var Days = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Filter narrows a table by month and weekday. Zero values mean unfiltered.
type Filter struct {
	City  string
	Month int
	Day   time.Weekday
	// ByDay is false when every weekday is accepted.
	ByDay bool
}

// NewFilter builds a Filter from normalized user input.
func NewFilter(city, month, day string) (Filter, error) {
	f := Filter{City: city}
	month = strings.ToLower(strings.TrimSpace(month))
	day = strings.ToLower(strings.TrimSpace(day))
	if month != "" && month != All {
		idx := indexOf(Months, month)
		if idx < 0 {
			return Filter{}, fmt.Errorf("invalid month %q", month)
		}
		f.Month = idx + 1
	}
	if day != "" && day != All {
		idx := indexOf(Days, day)
		if idx < 0 {
			return Filter{}, fmt.Errorf("invalid day %q", day)
		}
		f.Day = time.Weekday(idx)
		f.ByDay = true
	}
	return f, nil
}

// MonthName returns the month label or "all".
func (f Filter) MonthName() string {
	if f.Month == 0 {
		return All
	}
	return time.Month(f.Month).String()
}

// DayName returns the weekday label or "all".
func (f Filter) DayName() string {
	if !f.ByDay {
		return All
	}
	return f.Day.String()
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}
