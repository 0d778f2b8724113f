// Package config loads the dashboard configuration: built-in defaults, then
// an optional YAML file, then DELINQUANCE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DELINQUANCE_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Data     Data     `yaml:"data" envPrefix:"DATA_"`
	Map      Map      `yaml:"map" envPrefix:"MAP_"`
	Server   Server   `yaml:"server" envPrefix:"SERVER_"`
	Download Download `yaml:"download" envPrefix:"DOWNLOAD_"`
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
}

// Data locates the input files.
type Data struct {
	Statistics string          `yaml:"statistics" env:"STATISTICS"`
	Geometry   string          `yaml:"geometry" env:"GEOMETRY"`
	Boundaries string          `yaml:"boundaries" env:"BOUNDARIES"`
	Delimiter  string          `yaml:"delimiter" env:"DELIMITER"`
	Columns    dataset.Columns `yaml:"columns"`
}

// Map controls the statistics to geometry join.
type Map struct {
	Missing         string                  `yaml:"missing" env:"MISSING"`
	ExcludePrefixes []string                `yaml:"exclude_prefixes" env:"EXCLUDE_PREFIXES" envSeparator:","`
	Geometry        dataset.GeometryOptions `yaml:"geometry"`
}

type Server struct {
	Addr          string        `yaml:"addr" env:"ADDR"`
	HeadRows      int           `yaml:"head_rows" env:"HEAD_ROWS"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace" env:"SHUTDOWN_GRACE"`
}

// Download lists where the download command fetches missing inputs from.
type Download struct {
	Statistics string        `yaml:"statistics" env:"STATISTICS"`
	Geometry   string        `yaml:"geometry" env:"GEOMETRY"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Data: Data{
			Statistics: "data/donnee-dep-data.gouv-2022-geographie2023-produit-le2023-07-17.csv",
			Geometry:   "data/departements.geojson",
			Delimiter:  ";",
			Columns:    dataset.DefaultColumns(),
		},
		Map: Map{
			Missing:         string(pipeline.MissingZero),
			ExcludePrefixes: append([]string(nil), pipeline.OverseasPrefixes...),
			Geometry:        dataset.DefaultGeometryOptions(),
		},
		Server: Server{
			Addr:          ":8080",
			HeadRows:      5,
			SessionTTL:    2 * time.Hour,
			ShutdownGrace: 10 * time.Second,
		},
		Download: Download{
			Geometry: "https://raw.githubusercontent.com/gregoiredavid/france-geojson/master/departements.geojson",
			Timeout:  2 * time.Minute,
		},
		Log: Log{Level: "info"},
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Data.Statistics == "" {
		return fmt.Errorf("%w: data.statistics is empty", ErrInvalid)
	}
	if c.Data.Geometry == "" {
		return fmt.Errorf("%w: data.geometry is empty", ErrInvalid)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return fmt.Errorf("%w: data.delimiter must be one character, got %q", ErrInvalid, c.Data.Delimiter)
	}
	cols := c.Data.Columns
	for name, v := range map[string]string{
		"department": cols.Department,
		"year":       cols.Year,
		"class":      cols.Class,
		"facts":      cols.Facts,
	} {
		if v == "" {
			return fmt.Errorf("%w: data.columns.%s is empty", ErrInvalid, name)
		}
	}
	if _, err := pipeline.ParseMissingPolicy(c.Map.Missing); err != nil {
		return fmt.Errorf("%w: map.missing: %v", ErrInvalid, err)
	}
	if c.Map.Geometry.CodeProperty == "" {
		return fmt.Errorf("%w: map.geometry.code_property is empty", ErrInvalid)
	}
	if c.Server.HeadRows < 0 {
		return fmt.Errorf("%w: server.head_rows is negative", ErrInvalid)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("%w: server.session_ttl must be positive", ErrInvalid)
	}
	if c.Server.ShutdownGrace < 0 {
		return fmt.Errorf("%w: server.shutdown_grace is negative", ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// StatisticsOptions converts the data section for dataset.LoadStatistics.
func (c Config) StatisticsOptions() dataset.StatisticsOptions {
	r, _ := utf8.DecodeRuneInString(c.Data.Delimiter)
	return dataset.StatisticsOptions{Delimiter: r, Columns: c.Data.Columns}
}

func (c Config) GeometryOptions() dataset.GeometryOptions {
	return c.Map.Geometry
}

// JoinOptions converts the map section for pipeline.JoinStatsToGeometry.
// Validate has already checked the policy name.
func (c Config) JoinOptions() pipeline.JoinOptions {
	policy, err := pipeline.ParseMissingPolicy(c.Map.Missing)
	if err != nil {
		policy = pipeline.MissingZero
	}
	return pipeline.JoinOptions{Missing: policy, ExcludePrefixes: c.Map.ExcludePrefixes}
}
