package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"
)

func trip(start time.Time, from, to string, seconds float64, userType string) model.Trip {
	t := model.Trip{
		StartTime:       start,
		StartStation:    from,
		EndStation:      to,
		DurationSeconds: seconds,
		HasDuration:     true,
		UserType:        userType,
	}
	t.Derive()
	return t
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2017, month, day, hour, 0, 0, 0, time.UTC)
}

func TestCounterModeSmallestWinsTies(t *testing.T) {
	c := NewCounter[string]()
	for _, v := range []string{"b", "a", "a", "b", "c"} {
		c.Add(v)
	}
	mode, count, ok := c.Mode()
	if !ok || mode != "a" || count != 2 {
		t.Fatalf("expected a x2, got %q x%d (ok=%v)", mode, count, ok)
	}
	sorted := c.Sorted()
	if sorted[0].Value != "b" || sorted[1].Value != "a" || sorted[2].Value != "c" {
		t.Fatalf("unexpected order: %+v", sorted)
	}
	if c.Total() != 5 || c.Len() != 3 {
		t.Fatalf("unexpected totals: total=%d len=%d", c.Total(), c.Len())
	}
}

func TestCounterEmpty(t *testing.T) {
	c := NewCounter[int]()
	if _, _, ok := c.Mode(); ok {
		t.Fatalf("expected no mode for empty counter")
	}
}

func TestComputeTimeStats(t *testing.T) {
	table := model.Table{Trips: []model.Trip{
		trip(at(time.March, 3, 8), "A", "B", 60, "Subscriber"),  // Friday
		trip(at(time.March, 4, 17), "A", "B", 60, "Subscriber"), // Saturday
		trip(at(time.March, 10, 17), "A", "B", 60, "Customer"),  // Friday
		trip(at(time.April, 7, 8), "A", "B", 60, "Subscriber"),  // Friday
	}}
	ts, err := ComputeTimeStats(table)
	if err != nil {
		t.Fatalf("time stats: %v", err)
	}
	if ts.Month != 3 || ts.Weekday != time.Friday {
		t.Fatalf("unexpected month/day: %d %s", ts.Month, ts.Weekday)
	}
	// 8 and 17 tie; the smaller hour wins.
	if ts.Hour != 8 {
		t.Fatalf("expected hour 8, got %d", ts.Hour)
	}
	if ts.HourCounts[8] != 2 || ts.HourCounts[17] != 2 {
		t.Fatalf("unexpected hour counts: %v", ts.HourCounts)
	}
}

func TestComputeStationStats(t *testing.T) {
	table := model.Table{Trips: []model.Trip{
		trip(at(time.May, 1, 9), "Canal St", "Clark St", 60, "Subscriber"),
		trip(at(time.May, 1, 9), "Clark St", "Canal St", 60, "Subscriber"),
		trip(at(time.May, 1, 9), "Clark St", "Canal St", 60, "Subscriber"),
		trip(at(time.May, 1, 9), "Canal St", "Lake St", 60, "Subscriber"),
		trip(at(time.May, 1, 9), "Lake St", "Lake St", 60, "Subscriber"),
	}}
	ss, err := ComputeStationStats(table)
	if err != nil {
		t.Fatalf("station stats: %v", err)
	}
	if ss.StartStation != "Canal St" {
		t.Fatalf("expected Canal St as start, got %q", ss.StartStation)
	}
	if ss.EndStation != "Canal St" {
		t.Fatalf("expected Canal St as end, got %q", ss.EndStation)
	}
	if ss.Trip != (StationPair{Start: "Clark St", End: "Canal St"}) || ss.TripCount != 2 {
		t.Fatalf("unexpected popular trip: %+v x%d", ss.Trip, ss.TripCount)
	}
}

func TestModeTiesIgnoreTableOrder(t *testing.T) {
	table := model.Table{Trips: []model.Trip{
		trip(at(time.March, 6, 10), "Zeta", "Zeta", 60, "Subscriber"),  // Monday
		trip(at(time.March, 3, 9), "Alpha", "Alpha", 60, "Subscriber"), // Friday
	}}
	ss, err := ComputeStationStats(table)
	if err != nil {
		t.Fatalf("station stats: %v", err)
	}
	if ss.StartStation != "Alpha" || ss.EndStation != "Alpha" {
		t.Fatalf("expected Alpha stations, got %q %q", ss.StartStation, ss.EndStation)
	}
	if ss.Trip != (StationPair{Start: "Alpha", End: "Alpha"}) || ss.TripCount != 1 {
		t.Fatalf("unexpected popular trip: %+v x%d", ss.Trip, ss.TripCount)
	}
	ts, err := ComputeTimeStats(table)
	if err != nil {
		t.Fatalf("time stats: %v", err)
	}
	if ts.Hour != 9 {
		t.Fatalf("expected hour 9, got %d", ts.Hour)
	}
	// Day names tie alphabetically.
	if ts.Weekday != time.Friday {
		t.Fatalf("expected Friday, got %s", ts.Weekday)
	}
}

func TestStationPairCompare(t *testing.T) {
	a := StationPair{Start: "A", End: "Z"}
	b := StationPair{Start: "B", End: "A"}
	c := StationPair{Start: "A", End: "B"}
	if a.Compare(b) >= 0 || c.Compare(a) >= 0 || a.Compare(a) != 0 {
		t.Fatalf("unexpected pair ordering")
	}
}

func TestComputeDurationStatsSkipsMissing(t *testing.T) {
	missing := trip(at(time.June, 1, 9), "A", "B", 0, "Subscriber")
	missing.HasDuration = false
	table := model.Table{Trips: []model.Trip{
		trip(at(time.June, 1, 9), "A", "B", 100, "Subscriber"),
		missing,
	}}
	ds, err := ComputeDurationStats(table)
	if err != nil {
		t.Fatalf("duration stats: %v", err)
	}
	if ds.Trips != 1 || ds.Total != 100*time.Second || ds.Mean != 100*time.Second {
		t.Fatalf("unexpected stats: %+v", ds)
	}

	if _, err := ComputeDurationStats(model.Table{Trips: []model.Trip{missing}}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData without durations, got %v", err)
	}
}

func TestComputeDurationStats(t *testing.T) {
	table := model.Table{Trips: []model.Trip{
		trip(at(time.June, 1, 9), "A", "B", 100, "Subscriber"),
		trip(at(time.June, 1, 9), "A", "B", 200, "Subscriber"),
		trip(at(time.June, 1, 9), "A", "B", 86400, "Subscriber"),
	}}
	ds, err := ComputeDurationStats(table)
	if err != nil {
		t.Fatalf("duration stats: %v", err)
	}
	if ds.Total != 86700*time.Second {
		t.Fatalf("unexpected total: %v", ds.Total)
	}
	// 86700 / 3 = 28900 exactly.
	if ds.Mean != 28900*time.Second {
		t.Fatalf("unexpected mean: %v", ds.Mean)
	}

	reversed := model.Table{Trips: []model.Trip{table.Trips[2], table.Trips[0], table.Trips[1]}}
	again, err := ComputeDurationStats(reversed)
	if err != nil {
		t.Fatalf("duration stats: %v", err)
	}
	if again != ds {
		t.Fatalf("expected order invariance: %+v vs %+v", again, ds)
	}
}

func TestComputeDurationStatsTruncatesOnce(t *testing.T) {
	table := model.Table{Trips: []model.Trip{
		trip(at(time.June, 1, 9), "A", "B", 10.6, "Subscriber"),
		trip(at(time.June, 1, 9), "A", "B", 10.6, "Subscriber"),
	}}
	ds, err := ComputeDurationStats(table)
	if err != nil {
		t.Fatalf("duration stats: %v", err)
	}
	if ds.Total != 21*time.Second || ds.Mean != 10*time.Second {
		t.Fatalf("unexpected truncation: total=%v mean=%v", ds.Total, ds.Mean)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                              "0:00:00",
		907 * time.Second:              "0:15:07",
		86400 * time.Second:            "1 day, 0:00:00",
		(2*86400 + 3723) * time.Second: "2 days, 1:02:03",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestComputeUserStats(t *testing.T) {
	table := model.Table{HasDemographics: true}
	years := []int{1990, 1985, 1990, 0}
	genders := []string{"Male", "Female", "Male", ""}
	types := []string{"Subscriber", "Customer", "Subscriber", ""}
	for i := range years {
		tr := trip(at(time.June, 1, 9), "A", "B", 60, types[i])
		tr.Gender = genders[i]
		if years[i] != 0 {
			tr.BirthYear = years[i]
			tr.HasBirthYear = true
		}
		table.Trips = append(table.Trips, tr)
	}
	us, err := ComputeUserStats(table)
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	total := 0
	for _, c := range us.UserTypes {
		total += c.Count
	}
	if total != table.Len() {
		t.Fatalf("user type counts sum to %d, want %d", total, table.Len())
	}
	if us.UserTypes[0].Value != "Subscriber" || us.UserTypes[0].Count != 2 {
		t.Fatalf("unexpected user types: %+v", us.UserTypes)
	}
	if len(us.Genders) != 2 || us.Genders[0].Value != "Male" {
		t.Fatalf("unexpected genders: %+v", us.Genders)
	}
	if !us.HasBirthYears || us.EarliestBirth != 1985 || us.LatestBirth != 1990 || us.CommonBirth != 1990 {
		t.Fatalf("unexpected birth years: %+v", us)
	}
}

func TestComputeUserStatsWithoutDemographics(t *testing.T) {
	tr := trip(at(time.June, 1, 9), "A", "B", 60, "Subscriber")
	tr.Gender = "Male"
	us, err := ComputeUserStats(model.Table{Trips: []model.Trip{tr}})
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if us.HasDemographics || len(us.Genders) != 0 || us.HasBirthYears {
		t.Fatalf("expected no demographic output: %+v", us)
	}
}

func TestEmptyTableReturnsErrNoData(t *testing.T) {
	empty := model.Table{HasDemographics: true}
	if _, err := ComputeTimeStats(empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("time stats: expected ErrNoData, got %v", err)
	}
	if _, err := ComputeStationStats(empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("station stats: expected ErrNoData, got %v", err)
	}
	if _, err := ComputeDurationStats(empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("duration stats: expected ErrNoData, got %v", err)
	}
	if _, err := ComputeUserStats(empty); !errors.Is(err, ErrNoData) {
		t.Fatalf("user stats: expected ErrNoData, got %v", err)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
}
