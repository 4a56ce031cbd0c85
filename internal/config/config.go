// Package config loads the HCL configuration of the hackenbush tool and the
// position files it evaluates.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/hackenbush/internal/search"
	"github.com/lox/hackenbush/internal/surreal"
)

// Config represents the complete tool configuration
type Config struct {
	LogLevel string          `hcl:"log_level,optional"`
	Search   *SearchSettings `hcl:"search,block"`
	Arena    *ArenaSettings  `hcl:"arena,block"`
}

// SearchSettings mirrors search.Config
type SearchSettings struct {
	Workers        int   `hcl:"workers,optional"`
	ParallelDepth  *int  `hcl:"parallel_depth,optional"`
	Transpositions *bool `hcl:"transpositions,optional"`
	TableShards    int   `hcl:"table_shards,optional"`
	MaxEdges       int   `hcl:"max_edges,optional"`
}

// ArenaSettings bounds the surreal arena
type ArenaSettings struct {
	MaxDay int `hcl:"max_day,optional"`
}

// Default returns the default configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes configuration from HCL source
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := search.DefaultConfig()

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search == nil {
		c.Search = &SearchSettings{}
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = defaults.Workers
	}
	if c.Search.ParallelDepth == nil {
		depth := defaults.ParallelDepth
		c.Search.ParallelDepth = &depth
	}
	if c.Search.Transpositions == nil {
		enabled := defaults.Transpositions
		c.Search.Transpositions = &enabled
	}
	if c.Search.TableShards == 0 {
		c.Search.TableShards = defaults.TableShards
	}
	if c.Arena == nil {
		c.Arena = &ArenaSettings{}
	}
	if c.Arena.MaxDay == 0 {
		c.Arena.MaxDay = surreal.DefaultMaxDay
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if err := c.SearchConfig().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Arena.MaxDay < 1 || c.Arena.MaxDay > surreal.MaxSupportedDay {
		return fmt.Errorf("arena: max day must be between 1 and %d, got %d", surreal.MaxSupportedDay, c.Arena.MaxDay)
	}
	return nil
}

// SearchConfig converts the search block into an engine configuration
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		Workers:        c.Search.Workers,
		ParallelDepth:  *c.Search.ParallelDepth,
		Transpositions: c.Search.Transpositions != nil && *c.Search.Transpositions,
		TableShards:    c.Search.TableShards,
		MaxEdges:       c.Search.MaxEdges,
	}
}

// ArenaOptions converts the arena block into arena options
func (c *Config) ArenaOptions() []surreal.ArenaOption {
	return []surreal.ArenaOption{surreal.WithMaxDay(c.Arena.MaxDay)}
}
