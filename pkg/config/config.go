// Package config loads and validates evolens configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Window is the granularity used to bucket revisions for temporal coupling.
type Window string

const (
	WindowHour  Window = "hour"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// Valid reports whether the window names a known granularity.
func (w Window) Valid() bool {
	switch w {
	case WindowHour, WindowDay, WindowWeek, WindowMonth:
		return true
	}
	return false
}

// RangeError reports a configuration value outside its valid range.
// Rejected at configuration time, before any analysis runs.
type RangeError struct {
	Option string
	Value  any
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("configuration option %q: value %v out of range: %s", e.Option, e.Value, e.Reason)
}

// Config holds all configuration options for evolens.
type Config struct {
	// Coupling analysis knobs
	Coupling CouplingConfig `koanf:"coupling" toml:"coupling"`

	// Ownership analysis knobs
	Ownership OwnershipConfig `koanf:"ownership" toml:"ownership"`

	// Age / reference-time knobs
	Age AgeConfig `koanf:"age" toml:"age"`

	// Hotspot combination strategy
	Hotspot HotspotConfig `koanf:"hotspot" toml:"hotspot"`

	// Cache settings for extracted revision logs
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// CouplingConfig controls logical and temporal coupling.
type CouplingConfig struct {
	// Window is the bucket granularity for temporal coupling.
	Window string `koanf:"window" toml:"window"`
	// MaxEntitiesPerCommit skips pairwise expansion for larger commits.
	MaxEntitiesPerCommit int `koanf:"max_entities_per_commit" toml:"max_entities_per_commit"`
	// MinCouplingCount filters pairs below this co-change count.
	MinCouplingCount int `koanf:"min_coupling_count" toml:"min_coupling_count"`
	// MinCouplingPercent filters pairs below this coupling percentage.
	MinCouplingPercent float64 `koanf:"min_coupling_percent" toml:"min_coupling_percent"`
	// Precision is the number of decimals for reported percentages.
	Precision int `koanf:"precision" toml:"precision"`
}

// OwnershipConfig controls ownership and fragmentation metrics.
type OwnershipConfig struct {
	// MinorThreshold is the minimum contribution share (0-1) for an author
	// to count toward the fragmentation metric.
	MinorThreshold float64 `koanf:"minor_threshold" toml:"minor_threshold"`
}

// AgeConfig controls the analysis reference point.
type AgeConfig struct {
	// ReferenceTime overrides the default reference point (latest revision
	// timestamp) for age analysis, RFC 3339. Empty means use the default.
	ReferenceTime string `koanf:"reference_time" toml:"reference_time"`
}

// HotspotConfig selects the churn x complexity combination strategy.
type HotspotConfig struct {
	// Strategy is "multiply" or "ranksum".
	Strategy string `koanf:"strategy" toml:"strategy"`
}

// CacheConfig controls caching of extracted revision streams.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, csv, yaml
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Coupling: CouplingConfig{
			Window:               string(WindowDay),
			MaxEntitiesPerCommit: 50,
			MinCouplingCount:     0,
			MinCouplingPercent:   0,
			Precision:            1,
		},
		Ownership: OwnershipConfig{
			MinorThreshold: 0.05,
		},
		Hotspot: HotspotConfig{
			Strategy: "multiply",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".evolens/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks all thresholds and enumerations, returning a *RangeError
// for the first offending option.
func (c *Config) Validate() error {
	if !Window(c.Coupling.Window).Valid() {
		return &RangeError{Option: "coupling.window", Value: c.Coupling.Window,
			Reason: "must be one of hour, day, week, month"}
	}
	if c.Coupling.MaxEntitiesPerCommit <= 0 {
		return &RangeError{Option: "coupling.max_entities_per_commit",
			Value: c.Coupling.MaxEntitiesPerCommit, Reason: "must be positive"}
	}
	if c.Coupling.MinCouplingCount < 0 {
		return &RangeError{Option: "coupling.min_coupling_count",
			Value: c.Coupling.MinCouplingCount, Reason: "must not be negative"}
	}
	if c.Coupling.MinCouplingPercent < 0 || c.Coupling.MinCouplingPercent > 100 {
		return &RangeError{Option: "coupling.min_coupling_percent",
			Value: c.Coupling.MinCouplingPercent, Reason: "must be between 0 and 100"}
	}
	if c.Coupling.Precision < 0 || c.Coupling.Precision > 10 {
		return &RangeError{Option: "coupling.precision",
			Value: c.Coupling.Precision, Reason: "must be between 0 and 10"}
	}
	if c.Ownership.MinorThreshold < 0 || c.Ownership.MinorThreshold > 1 {
		return &RangeError{Option: "ownership.minor_threshold",
			Value: c.Ownership.MinorThreshold, Reason: "must be between 0 and 1"}
	}
	if c.Age.ReferenceTime != "" {
		if _, err := time.Parse(time.RFC3339, c.Age.ReferenceTime); err != nil {
			return &RangeError{Option: "age.reference_time",
				Value: c.Age.ReferenceTime, Reason: "must be RFC 3339"}
		}
	}
	switch c.Hotspot.Strategy {
	case "multiply", "ranksum":
	default:
		return &RangeError{Option: "hotspot.strategy",
			Value: c.Hotspot.Strategy, Reason: "must be multiply or ranksum"}
	}
	if c.Cache.TTL < 0 {
		return &RangeError{Option: "cache.ttl", Value: c.Cache.TTL,
			Reason: "must not be negative"}
	}
	return nil
}

// ReferenceTime returns the parsed reference-time override, or zero time
// when the default (latest revision timestamp) should be used. Call
// Validate first; parse errors are reported there.
func (c *Config) ReferenceTime() time.Time {
	if c.Age.ReferenceTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.Age.ReferenceTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"evolens.toml",
		"evolens.yaml",
		"evolens.yml",
		"evolens.json",
		".evolens.toml",
		".evolens.yaml",
		".evolens.yml",
		".evolens.json",
	}
	searchDirs := []string{".", ".evolens"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}
