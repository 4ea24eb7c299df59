// Package filter narrows trip tables by month and weekday.
package filter

import "github.com/verte-zerg/bikeshare/internal/model"

// Apply returns a new table holding the trips that match f. The input table
// is not modified. No match yields an empty table.
func Apply(table model.Table, f model.Filter) model.Table {
	out := model.Table{
		City:            table.City,
		HasDemographics: table.HasDemographics,
	}
	if f.Month == 0 && !f.ByDay {
		out.Trips = append([]model.Trip(nil), table.Trips...)
		return out
	}
	out.Trips = make([]model.Trip, 0, len(table.Trips))
	for _, trip := range table.Trips {
		if Match(trip, f) {
			out.Trips = append(out.Trips, trip)
		}
	}
	return out
}

// Match reports whether a single trip passes the filter.
func Match(trip model.Trip, f model.Filter) bool {
	if f.Month != 0 && trip.Month != f.Month {
		return false
	}
	if f.ByDay && trip.Weekday != f.Day {
		return false
	}
	return true
}
