// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/bikeshare/internal/dataset"
	"github.com/verte-zerg/bikeshare/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data   DataConfig            `toml:"data"`
	Report ReportConfig          `toml:"report"`
	Cities map[string]CityConfig `toml:"cities" validate:"dive"`
}

// DataConfig maps dataset locations.
type DataConfig struct {
	Dir *string `toml:"dir"`
	DB  *string `toml:"db"`
}

// ReportConfig maps report output settings.
type ReportConfig struct {
	PageSize *int    `toml:"page-size" validate:"omitempty,min=1,max=100"`
	Color    *string `toml:"color" validate:"omitempty,oneof=auto always never"`
	LogLevel *string `toml:"log-level" validate:"omitempty,oneof=debug info warn error"`
}

// CityConfig adds or overrides one city.
type CityConfig struct {
	Name   string `toml:"name" validate:"required"`
	Path   string `toml:"path"`
	Source string `toml:"source" validate:"omitempty,oneof=csv sqlite"`
}

var validate = validator.New()

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Registry builds the city registry: the bundled cities under dataDir,
// then the file's cities in id order. Relative city paths resolve against
// dataDir.
func (c FileConfig) Registry(dataDir string) *dataset.Registry {
	registry := dataset.DefaultRegistry(dataDir)
	ids := make([]string, 0, len(c.Cities))
	for id := range c.Cities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		city := c.Cities[id]
		path := city.Path
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		source := city.Source
		if source == "" {
			source = model.SourceCSV
		}
		registry.Set(model.City{ID: id, Name: city.Name, Path: path, Source: source})
	}
	return registry
}
