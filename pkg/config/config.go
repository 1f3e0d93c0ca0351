package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the corestab configuration
type Config struct {
	// Journalctl is the command used to read the journal
	Journalctl string `yaml:"journalctl" json:"journalctl" mapstructure:"journalctl"`

	// Output is the record file; "-" writes to stdout
	Output string `yaml:"output" json:"output" mapstructure:"output"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`

	// Boot selection
	MaxBoots int    `yaml:"max_boots" json:"max_boots" mapstructure:"max_boots"` // -1 = all
	Boots    string `yaml:"boots" json:"boots" mapstructure:"boots"`             // "all" or "0,-1,-4"
	Since    string `yaml:"since" json:"since" mapstructure:"since"`
	Until    string `yaml:"until" json:"until" mapstructure:"until"`

	// Optional sinks
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	HistoryDB   string `yaml:"history_db" json:"history_db" mapstructure:"history_db"`

	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
}

const (
	DefaultOutput     = "dmesg_logs.json"
	DefaultYAMLOutput = "dmesg_logs.yaml"
	AllBoots          = "all"
)

// DefaultConfig returns the zero-config setup
func DefaultConfig() *Config {
	return &Config{
		Journalctl: "journalctl",
		Output:     DefaultOutput,
		Format:     "json",
		MaxBoots:   -1,
		Boots:      AllBoots,
		LogLevel:   "info",
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigFileError("read", path, err.Error(), "check that the file exists and is readable").WithCause(err)
	}

	ext := strings.ToLower(filepath.Ext(path))

	config := DefaultConfig()
	switch ext {
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, NewConfigFileError("parse", path, err.Error(), "check the file syntax").WithCause(err)
	}

	config.ApplyDefaults()

	return config, nil
}

// ApplyDefaults sets default values for missing config fields
func (c *Config) ApplyDefaults() {
	if c.Journalctl == "" {
		c.Journalctl = "journalctl"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" || c.Output == DefaultOutput {
		c.Output = DefaultOutputFor(c.Format)
	}
	if c.Boots == "" {
		c.Boots = AllBoots
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultOutputFor returns the default record file for format
func DefaultOutputFor(format string) string {
	if format == "yaml" {
		return DefaultYAMLOutput
	}
	return DefaultOutput
}

// outputFormat infers the format from the output file extension, ignoring a
// trailing ".zst". It returns "" for stdout and unknown extensions.
func outputFormat(path string) string {
	name := strings.TrimSuffix(strings.ToLower(path), ".zst")
	switch filepath.Ext(name) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// BootIndexes returns the explicit boot list, or nil when all boots are selected
func (c *Config) BootIndexes() ([]int, error) {
	list := strings.TrimSpace(c.Boots)
	if list == "" || strings.EqualFold(list, AllBoots) {
		return nil, nil
	}

	var indexes []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid boot index %q: %w", part, err)
		}
		if idx > 0 {
			return nil, fmt.Errorf("invalid boot index %d: must be 0 or negative", idx)
		}
		indexes = append(indexes, idx)
	}

	return indexes, nil
}

// Validate checks the configuration and collects every problem found
func (c *Config) Validate() error {
	var errs []ValidationError

	switch c.Format {
	case "json", "yaml":
		if f := outputFormat(c.Output); f != "" && f != c.Format {
			e := NewValidationError("output",
				fmt.Sprintf("%s is a %s file but format is %s", c.Output, f, c.Format),
				fmt.Sprintf("use --format %s or an output ending in .%s", f, c.Format))
			e.CurrentValue = c.Output
			errs = append(errs, e)
		}
	default:
		e := NewValidationError("format", fmt.Sprintf("unsupported format %q", c.Format), "use json or yaml")
		e.CurrentValue = c.Format
		e.ValidValues = []string{"json", "yaml"}
		errs = append(errs, e)
	}

	if c.MaxBoots < -1 {
		errs = append(errs, NewValidationError("max_boots",
			fmt.Sprintf("must be -1 or greater, got %d", c.MaxBoots),
			"use -1 to scan every boot"))
	}

	if _, err := c.BootIndexes(); err != nil {
		errs = append(errs, NewValidationErrorWithFix("boots", err.Error(),
			"list boot offsets as printed by journalctl --list-boots",
			"corestab boots"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, NewValidationError("log_level",
			fmt.Sprintf("unknown level %q", c.LogLevel),
			"use debug, info, warn or error"))
	}

	if c.Journalctl == "" {
		errs = append(errs, NewValidationError("journalctl", "command is empty", "leave unset to use journalctl from PATH"))
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
