// Package dataset loads trip tables for configured cities.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"
)

// Column names in the trip CSV files.
const (
	ColStartTime    = "Start Time"
	ColEndTime      = "End Time"
	ColDuration     = "Trip Duration"
	ColStartStation = "Start Station"
	ColEndStation   = "End Station"
	ColUserType     = "User Type"
	ColGender       = "Gender"
	ColBirthYear    = "Birth Year"
)

var requiredColumns = []string{ColStartTime, ColStartStation, ColEndStation, ColDuration, ColUserType}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

var (
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadTimestamp is returned when a start time cannot be parsed.
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// LoadError reports a failure to load a city's dataset.
type LoadError struct {
	City string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load data for %s from %s: %v", e.City, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadCSV reads a trip CSV file.
func LoadCSV(path string) ([]model.Trip, bool, error) {
	return loadCSV(path, nil)
}

func loadCSV(path string, logger *slog.Logger) ([]model.Trip, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	return readCSV(file, logger)
}

// ReadCSV decodes trips from CSV data with a header row. The boolean result
// reports whether both gender and birth year columns are present. End Time
// is best-effort: an unparseable value leaves the trip without an end time.
func ReadCSV(r io.Reader) ([]model.Trip, bool, error) {
	return readCSV(r, nil)
}

func readCSV(r io.Reader, logger *slog.Logger) ([]model.Trip, bool, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, false, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, false, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}
	cols := indexColumns(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, false, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	_, hasGender := cols[ColGender]
	_, hasBirth := cols[ColBirthYear]
	demographics := hasGender && hasBirth

	var trips []model.Trip
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, false, fmt.Errorf("read record: %w", err)
		}
		trip, err := decodeTrip(record, cols, demographics, line, logger)
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		trip.Index = len(trips)
		trips = append(trips, trip)
	}
	return trips, demographics, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func decodeTrip(record []string, cols map[string]int, demographics bool, line int, logger *slog.Logger) (model.Trip, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	start, err := ParseTimestamp(field(ColStartTime))
	if err != nil {
		return model.Trip{}, err
	}
	trip := model.Trip{
		StartTime:    start,
		StartStation: field(ColStartStation),
		EndStation:   field(ColEndStation),
		UserType:     field(ColUserType),
	}
	if v := field(ColEndTime); v != "" {
		end, err := ParseTimestamp(v)
		if err != nil {
			logger.Debug("ignoring unparseable end time", "line", line, "value", v)
		} else {
			trip.EndTime = end
		}
	}
	if v := field(ColDuration); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.Trip{}, fmt.Errorf("invalid trip duration %q: %w", v, err)
		}
		trip.DurationSeconds = d
		trip.HasDuration = true
	}
	if demographics {
		trip.Gender = field(ColGender)
		if v := field(ColBirthYear); v != "" {
			year, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return model.Trip{}, fmt.Errorf("invalid birth year %q: %w", v, err)
			}
			trip.BirthYear = int(year)
			trip.HasBirthYear = true
		}
	}
	trip.Derive()
	return trip, nil
}

// ParseTimestamp parses a trip timestamp in any of the accepted layouts.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrBadTimestamp)
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, value)
}
