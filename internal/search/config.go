package search

import (
	"errors"
	"fmt"
)

// Config controls how the engine walks the game tree. None of these settings
// change the values or moves it reports.
type Config struct {
	// Workers bounds how many sibling subtrees are evaluated concurrently.
	// One keeps the search on the calling goroutine.
	Workers int

	// ParallelDepth limits fan-out to nodes shallower than this depth.
	ParallelDepth int

	// Transpositions memoises subtree values by position.
	Transpositions bool

	// TableShards splits the transposition table to reduce lock contention.
	TableShards int

	// MaxEdges rejects larger positions up front. Zero disables the check.
	MaxEdges int
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.ParallelDepth < 0 {
		return errors.New("parallel depth cannot be negative")
	}
	if c.Transpositions && c.TableShards <= 0 {
		return errors.New("table shards must be > 0 when transpositions are enabled")
	}
	if c.MaxEdges < 0 {
		return fmt.Errorf("max edges cannot be negative, got %d", c.MaxEdges)
	}
	return nil
}

// DefaultConfig returns a sequential search with transpositions enabled.
func DefaultConfig() Config {
	return Config{
		Workers:        1,
		ParallelDepth:  1,
		Transpositions: true,
		TableShards:    16,
		MaxEdges:       0,
	}
}
