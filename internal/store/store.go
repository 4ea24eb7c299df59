// Package store handles SQLite persistence of imported trip data.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrCityNotImported is returned when no trips were imported for a city.
var ErrCityNotImported = errors.New("city has not been imported")

// Store wraps SQLite access for imported trips.
type Store struct {
	db *sql.DB
}

// ImportedCity summarizes one imported dataset.
type ImportedCity struct {
	ID              string
	Name            string
	Trips           int
	HasDemographics bool
	ImportedAt      time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			has_demographics INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trips (
			city_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT,
			duration_s REAL,
			start_station TEXT NOT NULL,
			end_station TEXT NOT NULL,
			user_type TEXT NOT NULL,
			gender TEXT NOT NULL,
			birth_year INTEGER,
			PRIMARY KEY (city_id, idx)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ImportTrips replaces the stored trips of a city.
func (s *Store) ImportTrips(ctx context.Context, city model.City, trips []model.Trip, hasDemographics bool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM trips WHERE city_id = ?`, city.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO cities (id, name, has_demographics, imported_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			has_demographics = excluded.has_demographics,
			imported_at = excluded.imported_at`,
		city.ID, city.Name, hasDemographics, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	if len(trips) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO trips (city_id, idx, start_time, end_time, duration_s, start_station, end_station, user_type, gender, birth_year)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, trip := range trips {
			var endTime, duration, birthYear any
			if trip.HasDuration {
				duration = trip.DurationSeconds
			}
			if !trip.EndTime.IsZero() {
				endTime = formatTime(trip.EndTime)
			}
			if trip.HasBirthYear {
				birthYear = trip.BirthYear
			}
			if _, err = stmt.ExecContext(ctx, city.ID, i, formatTime(trip.StartTime), endTime,
				duration, trip.StartStation, trip.EndStation, trip.UserType, trip.Gender, birthYear); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// LoadTrips returns the stored trips of a city in import order, with
// derived time fields filled in.
func (s *Store) LoadTrips(ctx context.Context, cityID string) ([]model.Trip, bool, error) {
	var hasDemographics bool
	err := s.db.QueryRowContext(ctx, `SELECT has_demographics FROM cities WHERE id = ?`, cityID).Scan(&hasDemographics)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrCityNotImported
		}
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, start_time, end_time, duration_s, start_station, end_station, user_type, gender, birth_year
		 FROM trips WHERE city_id = ? ORDER BY idx ASC`, cityID)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var trips []model.Trip
	for rows.Next() {
		var trip model.Trip
		var startTime string
		var endTime sql.NullString
		var duration sql.NullFloat64
		var birthYear sql.NullInt64
		if err := rows.Scan(&trip.Index, &startTime, &endTime, &duration, &trip.StartStation,
			&trip.EndStation, &trip.UserType, &trip.Gender, &birthYear); err != nil {
			return nil, false, err
		}
		trip.StartTime, err = parseTime(startTime)
		if err != nil {
			return nil, false, err
		}
		if endTime.Valid {
			if trip.EndTime, err = parseTime(endTime.String); err != nil {
				return nil, false, err
			}
		}
		if duration.Valid {
			trip.DurationSeconds = duration.Float64
			trip.HasDuration = true
		}
		if birthYear.Valid {
			trip.BirthYear = int(birthYear.Int64)
			trip.HasBirthYear = true
		}
		trip.Derive()
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return trips, hasDemographics, nil
}

// ListCities returns every imported city ordered by id.
func (s *Store) ListCities(ctx context.Context) ([]ImportedCity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.has_demographics, c.imported_at, COUNT(t.idx)
		 FROM cities c LEFT JOIN trips t ON t.city_id = c.id
		 GROUP BY c.id ORDER BY c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []ImportedCity
	for rows.Next() {
		var c ImportedCity
		var importedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.HasDemographics, &importedAt, &c.Trips); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, err
		}
		c.ImportedAt = parsed
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Trip timestamps keep their wall-clock value; the zone is not stored.
const storedTimeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.Format(storedTimeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.ParseInLocation(storedTimeLayout, value, time.Local)
}
