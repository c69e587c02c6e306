// Package config holds the planner settings and loads them from JSON or
// YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
	"choreo-planner/internal/waypoint"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration. Fields omitted from a loaded file keep
// the values from Default.
type Config struct {
	Volume    geometry.FlightVolume `json:"volume" yaml:"volume"`
	SafetyBox geometry.SafetyBox    `json:"safety_box" yaml:"safety_box"`
	Vehicles  int                   `json:"vehicles" yaml:"vehicles"`

	// Light painting
	Detail          float64 `json:"detail" yaml:"detail"`
	Speed           float64 `json:"speed" yaml:"speed"`
	DwellTime       float64 `json:"dwell_time" yaml:"dwell_time"`
	TimeModel       string  `json:"time_model" yaml:"time_model"`
	Signal          bool    `json:"signal" yaml:"signal"`
	ReorderContours bool    `json:"reorder_contours" yaml:"reorder_contours"`

	// Contour sources
	ContourEpsilon float64 `json:"contour_epsilon" yaml:"contour_epsilon"`
	OutermostOnly  bool    `json:"outermost_only" yaml:"outermost_only"`

	// Formation
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	Workers       int `json:"workers" yaml:"workers"`
	Seed          int `json:"seed" yaml:"seed"`

	Log LogConfig `json:"log" yaml:"log"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	// Dir enables rotated JSON log files in this directory.
	Dir string `json:"dir" yaml:"dir"`
}

// Default returns the built-in configuration: a 3x3x3 m volume, 0.3 m
// safety boxes and the light painting parameters of the reference flights.
func Default() *Config {
	return &Config{
		Volume:        geometry.FlightVolume{MinX: 0, MinY: 0, MinZ: 0, MaxX: 3, MaxY: 3, MaxZ: 3},
		SafetyBox:     geometry.SafetyBox{DX: 0.3, DY: 0.3, DZ: 0.3},
		Vehicles:      4,
		Detail:        0.05,
		Speed:         1.0,
		DwellTime:     1.5,
		TimeModel:     waypoint.TimeScaled.String(),
		MaxIterations: 10000,
		Log:           LogConfig{Level: "info"},
	}
}

// Load reads a .json, .yaml or .yml file over the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)

	var unmarshal func([]byte, any) error
	switch ext := filepath.Ext(cleanPath); ext {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if err := c.Volume.Validate(); err != nil {
		return err
	}
	if err := c.SafetyBox.Validate(); err != nil {
		return err
	}
	if c.Vehicles <= 0 {
		return fmt.Errorf("vehicles must be positive, got %d", c.Vehicles)
	}
	if c.Detail <= 0 {
		return fmt.Errorf("detail must be positive, got %g", c.Detail)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	if c.DwellTime < 0 {
		return fmt.Errorf("dwell_time must be non-negative, got %g", c.DwellTime)
	}
	if _, err := waypoint.ParseTimeModel(c.TimeModel); err != nil {
		return err
	}
	if c.ContourEpsilon < 0 {
		return fmt.Errorf("contour_epsilon must be non-negative, got %g", c.ContourEpsilon)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative, got %d", c.MaxIterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// GetTimeModel returns the parsed time model, TimeScaled if unparsable.
func (c *Config) GetTimeModel() waypoint.TimeModel {
	m, err := waypoint.ParseTimeModel(c.TimeModel)
	if err != nil {
		return waypoint.TimeScaled
	}
	return m
}
