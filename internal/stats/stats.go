package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"
)

const sparkChars = " .:-=+*#%@"

// UnknownUserType labels trips with an empty user type.
const UnknownUserType = "Unknown"

// TimeStats holds the most frequent times of travel.
type TimeStats struct {
	Month      int
	Weekday    time.Weekday
	Hour       int
	HourCounts [24]int
}

// StationStats holds the most popular stations and trip.
type StationStats struct {
	StartStation string
	EndStation   string
	Trip         StationPair
	TripCount    int
}

// StationPair is a (start, end) station combination.
type StationPair struct {
	Start string
	End   string
}

// Compare orders pairs by start station, then end station.
func (p StationPair) Compare(other StationPair) int {
	if c := strings.Compare(p.Start, other.Start); c != 0 {
		return c
	}
	return strings.Compare(p.End, other.End)
}

// Weekdays tie by name, so Friday beats Monday.
func compareWeekdayNames(a, b time.Weekday) int {
	return strings.Compare(a.String(), b.String())
}

// DurationStats holds total and mean trip duration, truncated to whole seconds.
// Trips counts only the trips with a duration.
type DurationStats struct {
	Trips int
	Total time.Duration
	Mean  time.Duration
}

// UserStats holds user type, gender and birth year statistics.
type UserStats struct {
	UserTypes       []Count[string]
	HasDemographics bool
	Genders         []Count[string]
	HasBirthYears   bool
	EarliestBirth   int
	LatestBirth     int
	CommonBirth     int
}

// ComputeTimeStats finds the most common month, weekday and start hour.
func ComputeTimeStats(table model.Table) (TimeStats, error) {
	if table.Len() == 0 {
		return TimeStats{}, ErrNoData
	}
	months := NewCounter[int]()
	days := NewCounterFunc(compareWeekdayNames)
	hours := NewCounter[int]()
	var out TimeStats
	for _, trip := range table.Trips {
		months.Add(trip.Month)
		days.Add(trip.Weekday)
		hours.Add(trip.Hour)
		if trip.Hour >= 0 && trip.Hour < len(out.HourCounts) {
			out.HourCounts[trip.Hour]++
		}
	}
	out.Month, _, _ = months.Mode()
	out.Weekday, _, _ = days.Mode()
	out.Hour, _, _ = hours.Mode()
	return out, nil
}

// ComputeStationStats finds the most common start and end stations and the
// most frequent start/end combination.
func ComputeStationStats(table model.Table) (StationStats, error) {
	if table.Len() == 0 {
		return StationStats{}, ErrNoData
	}
	starts := NewCounter[string]()
	ends := NewCounter[string]()
	pairs := NewCounterFunc(StationPair.Compare)
	for _, trip := range table.Trips {
		if trip.StartStation != "" {
			starts.Add(trip.StartStation)
		}
		if trip.EndStation != "" {
			ends.Add(trip.EndStation)
		}
		if trip.StartStation != "" && trip.EndStation != "" {
			pairs.Add(StationPair{Start: trip.StartStation, End: trip.EndStation})
		}
	}
	var out StationStats
	out.StartStation, _, _ = starts.Mode()
	out.EndStation, _, _ = ends.Mode()
	out.Trip, out.TripCount, _ = pairs.Mode()
	return out, nil
}

// ComputeDurationStats sums and averages the trips that have a duration.
// Truncation to whole seconds happens once, after the sum and the division.
func ComputeDurationStats(table model.Table) (DurationStats, error) {
	if table.Len() == 0 {
		return DurationStats{}, ErrNoData
	}
	var sum float64
	n := 0
	for _, trip := range table.Trips {
		if !trip.HasDuration {
			continue
		}
		sum += trip.DurationSeconds
		n++
	}
	if n == 0 {
		return DurationStats{}, ErrNoData
	}
	mean := sum / float64(n)
	return DurationStats{
		Trips: n,
		Total: time.Duration(int64(sum)) * time.Second,
		Mean:  time.Duration(int64(mean)) * time.Second,
	}, nil
}

// ComputeUserStats counts user types and, when the table carries them,
// genders and birth years.
func ComputeUserStats(table model.Table) (UserStats, error) {
	if table.Len() == 0 {
		return UserStats{HasDemographics: table.HasDemographics}, ErrNoData
	}
	userTypes := NewCounter[string]()
	for _, trip := range table.Trips {
		if trip.UserType == "" {
			userTypes.Add(UnknownUserType)
			continue
		}
		userTypes.Add(trip.UserType)
	}
	out := UserStats{
		UserTypes:       userTypes.Sorted(),
		HasDemographics: table.HasDemographics,
	}
	if !table.HasDemographics {
		return out, nil
	}

	genders := NewCounter[string]()
	years := NewCounter[int]()
	for _, trip := range table.Trips {
		if trip.Gender != "" {
			genders.Add(trip.Gender)
		}
		if !trip.HasBirthYear {
			continue
		}
		if !out.HasBirthYears {
			out.EarliestBirth = trip.BirthYear
			out.LatestBirth = trip.BirthYear
			out.HasBirthYears = true
		}
		out.EarliestBirth = min(out.EarliestBirth, trip.BirthYear)
		out.LatestBirth = max(out.LatestBirth, trip.BirthYear)
		years.Add(trip.BirthYear)
	}
	out.Genders = genders.Sorted()
	out.CommonBirth, _, _ = years.Mode()
	return out, nil
}

// FormatDuration renders seconds as "D day(s), H:MM:SS", omitting the day
// part when it is zero.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	days := total / 86400
	rem := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, (rem%3600)/60, rem%60)
	switch days {
	case 0:
		return sign + clock
	case 1:
		return sign + "1 day, " + clock
	default:
		return fmt.Sprintf("%s%d days, %s", sign, days, clock)
	}
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
