// Package config loads, merges, and validates ldkit CLI configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ldkit-go/rdf"
)

// DefaultFile is the config file name the CLI looks for in the working
// directory when --config is not given.
const DefaultFile = "ldkit.yaml"

// Config holds the CLI configuration. Values layer in order: built-in
// defaults, then the config file, then command-line flags.
type Config struct {
	// LogLevel sets log verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
	// Base is the base IRI for resolving relative references while
	// parsing (empty = document IRIs must be absolute).
	Base string `yaml:"base"`
	// Format names the default output format.
	Format string `yaml:"format"`
	// Prefixes adds prefix table entries for Turtle output on top of
	// the built-in rdf/rdfs/xsd/sh table.
	Prefixes map[string]string `yaml:"prefixes"`
	// Validation configures the validate command. The YAML key is
	// "validate", matching the command name.
	Validation ValidationConfig `yaml:"validate"`
}

// ValidationConfig configures the validate command.
type ValidationConfig struct {
	// ReportFormat selects the report rendering: text, or an RDF
	// format name (turtle, jsonld, ntriples) for the report graph.
	ReportFormat string `yaml:"report_format"`
	// WatchDebounce is how long --watch waits after a filesystem event
	// before re-validating, absorbing editor save bursts.
	WatchDebounce Duration `yaml:"watch_debounce"`
}

// Duration wraps time.Duration so YAML accepts "500ms" style strings
// as well as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the standard library representation.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Format:   string(rdf.FormatTurtle),
		Prefixes: map[string]string{},
		Validation: ValidationConfig{
			ReportFormat:  "text",
			WatchDebounce: Duration(500 * time.Millisecond),
		},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. A missing file is not an error; the defaults are returned.
// Unknown keys are errors, so typos never pass silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays other onto c; non-zero values of other win. Prefix
// tables are merged key by key.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Base != "" {
		c.Base = other.Base
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	for prefix, ns := range other.Prefixes {
		if c.Prefixes == nil {
			c.Prefixes = map[string]string{}
		}
		c.Prefixes[prefix] = ns
	}
	if other.Validation.ReportFormat != "" {
		c.Validation.ReportFormat = other.Validation.ReportFormat
	}
	if other.Validation.WatchDebounce != 0 {
		c.Validation.WatchDebounce = other.Validation.WatchDebounce
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error: got %q", c.LogLevel)
	}
	if c.Base != "" {
		if err := rdf.ValidateIRI(c.Base); err != nil {
			return fmt.Errorf("base: %w", err)
		}
	}
	if f, ok := rdf.ParseFormat(c.Format); !ok || f == rdf.FormatAuto {
		return fmt.Errorf("format: unknown format %q", c.Format)
	}
	if c.Validation.ReportFormat != "text" {
		if f, ok := rdf.ParseFormat(c.Validation.ReportFormat); !ok || f == rdf.FormatAuto {
			return fmt.Errorf("validate.report_format must be text or an RDF format name, got %q", c.Validation.ReportFormat)
		}
	}
	if c.Validation.WatchDebounce < 0 {
		return errors.New("validate.watch_debounce must not be negative")
	}
	return nil
}
