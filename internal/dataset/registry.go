package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/bikeshare/internal/model"
)

// ErrUnknownCity is returned for ids missing from the registry.
var ErrUnknownCity = errors.New("unknown city")

// Registry maps city ids to their datasets, in display order.
type Registry struct {
	cities []model.City
}

// NewRegistry builds a registry from the given cities. Later entries with a
// repeated id replace earlier ones in place.
func NewRegistry(cities ...model.City) *Registry {
	r := &Registry{}
	for _, c := range cities {
		r.Set(c)
	}
	return r
}

// DefaultRegistry returns the three bundled cities resolved against dataDir.
func DefaultRegistry(dataDir string) *Registry {
	return NewRegistry(
		model.City{ID: "chicago", Name: "Chicago", Path: filepath.Join(dataDir, "chicago.csv"), Source: model.SourceCSV},
		model.City{ID: "new york city", Name: "New York City", Path: filepath.Join(dataDir, "new_york_city.csv"), Source: model.SourceCSV},
		model.City{ID: "washington", Name: "Washington", Path: filepath.Join(dataDir, "washington.csv"), Source: model.SourceCSV},
	)
}

// Set adds or replaces a city.
func (r *Registry) Set(c model.City) {
	c.ID = strings.ToLower(strings.TrimSpace(c.ID))
	if c.Source == "" {
		c.Source = model.SourceCSV
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	for i, existing := range r.cities {
		if existing.ID == c.ID {
			r.cities[i] = c
			return
		}
	}
	r.cities = append(r.cities, c)
}

// Lookup returns the city with the given id.
func (r *Registry) Lookup(id string) (model.City, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, c := range r.cities {
		if c.ID == id {
			return c, nil
		}
	}
	return model.City{}, fmt.Errorf("%w: %q", ErrUnknownCity, id)
}

// Cities returns all cities in display order.
func (r *Registry) Cities() []model.City {
	return append([]model.City(nil), r.cities...)
}

// IDs returns all city ids in display order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.cities))
	for i, c := range r.cities {
		ids[i] = c.ID
	}
	return ids
}

// TripSource loads previously imported trips.
type TripSource interface {
	LoadTrips(ctx context.Context, cityID string) ([]model.Trip, bool, error)
}

// Loader reads tables for registry cities.
type Loader struct {
	registry *Registry
	db       TripSource
	logger   *slog.Logger
}

// NewLoader returns a Loader. db may be nil when no city uses the sqlite source.
func NewLoader(registry *Registry, db TripSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{registry: registry, db: db, logger: logger}
}

// Registry returns the loader's city registry.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load reads the table for a city. Failures are reported as *LoadError.
func (l *Loader) Load(ctx context.Context, cityID string) (model.Table, error) {
	city, err := l.registry.Lookup(cityID)
	if err != nil {
		return model.Table{}, &LoadError{City: cityID, Err: err}
	}

	started := time.Now()
	var (
		trips        []model.Trip
		demographics bool
	)
	switch city.Source {
	case model.SourceCSV:
		trips, demographics, err = loadCSV(city.Path, l.logger)
	case model.SourceSQLite:
		if l.db == nil {
			err = errors.New("no trip database configured")
			break
		}
		trips, demographics, err = l.db.LoadTrips(ctx, city.ID)
	default:
		err = fmt.Errorf("unsupported source %q", city.Source)
	}
	if err != nil {
		return model.Table{}, &LoadError{City: city.Name, Path: city.Path, Err: err}
	}

	l.logger.Info("dataset loaded",
		"city", city.ID,
		"source", city.Source,
		"trips", len(trips),
		"demographics", demographics,
		"elapsed", time.Since(started),
	)
	return model.Table{City: city, Trips: trips, HasDemographics: demographics}, nil
}
