// Package search evaluates Hackenbush positions by exhaustive minimax, folding
// the best options of both players into a surreal value.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/hackenbush/internal/hackenbush"
	"github.com/lox/hackenbush/internal/surreal"
)

// ErrPositionTooLarge is returned when a position exceeds Config.MaxEdges.
var ErrPositionTooLarge = errors.New("position too large")

// Evaluation is the value of a position and the best move for the requested
// player, if that player has any move.
type Evaluation struct {
	Value   surreal.Value
	Move    hackenbush.EdgeID
	HasMove bool
}

// Stats captures instrumentation for the most recent evaluation.
type Stats struct {
	NodesVisited  int64
	TerminalNodes int64
	TableHits     int64
	TableSize     int
	MaxDepth      int
	Elapsed       time.Duration
}

// Step is one move of a principal line.
type Step struct {
	Mover hackenbush.Color
	Move  hackenbush.EdgeID
	// Value is the value of the position the move was played from.
	Value surreal.Value
}

// Engine evaluates positions against a shared arena.
type Engine struct {
	arena   *surreal.Arena
	cfg     Config
	logger  *log.Logger
	clock   quartz.Clock
	table   *transpositionTable
	reg     prometheus.Registerer
	metrics *metrics
	statsMu sync.Mutex
	stats   Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.WithPrefix("search")
		}
	}
}

// WithClock sets the clock used to time evaluations.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithRegisterer exports search and arena metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.reg = reg
	}
}

// NewEngine constructs an engine. The arena may be shared between engines.
func NewEngine(arena *surreal.Arena, cfg Config, opts ...Option) (*Engine, error) {
	if arena == nil {
		return nil, errors.New("arena is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		arena:  arena,
		cfg:    cfg,
		logger: log.New(io.Discard),
		clock:  quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.Transpositions {
		e.table = newTranspositionTable(cfg.TableShards)
	}
	if e.reg != nil {
		e.metrics = newMetrics(e.reg, arena)
	}
	return e, nil
}

// Arena returns the arena values are interned into.
func (e *Engine) Arena() *surreal.Arena {
	return e.arena
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluate computes the value of pos and the best move for perspective.
func (e *Engine) Evaluate(ctx context.Context, pos hackenbush.Position, perspective hackenbush.Color) (Evaluation, error) {
	eval, stats, err := e.evaluate(ctx, pos, perspective)
	e.metrics.observe(stats, err)
	if err != nil {
		return Evaluation{}, err
	}
	e.setStats(stats)

	e.logger.Debug("Evaluated position",
		"edges", pos.NumEdges(),
		"perspective", perspective,
		"value", e.arena.Format(eval.Value),
		"hasMove", eval.HasMove,
		"nodes", stats.NodesVisited,
		"tableHits", stats.TableHits,
		"elapsed", stats.Elapsed)
	return eval, nil
}

func (e *Engine) evaluate(ctx context.Context, pos hackenbush.Position, perspective hackenbush.Color) (Evaluation, Stats, error) {
	if err := pos.Validate(); err != nil {
		return Evaluation{}, Stats{}, err
	}
	if !perspective.Valid() {
		return Evaluation{}, Stats{}, fmt.Errorf("invalid perspective %s", perspective)
	}
	if e.cfg.MaxEdges > 0 && pos.NumEdges() > e.cfg.MaxEdges {
		return Evaluation{}, Stats{}, fmt.Errorf("%w: %d edges, limit is %d", ErrPositionTooLarge, pos.NumEdges(), e.cfg.MaxEdges)
	}

	start := e.clock.Now()
	tr := &traversal{engine: e}
	eval, err := tr.evaluate(ctx, pos, perspective, 0)
	if err != nil {
		return Evaluation{}, Stats{}, err
	}

	stats := tr.snapshot()
	stats.Elapsed = e.clock.Since(start)
	if e.table != nil {
		stats.TableSize = e.table.size()
	}
	return eval, stats, nil
}

// PrincipalLine plays pos out with both players choosing their best move,
// starting with first and alternating, until the player to move has no move.
func (e *Engine) PrincipalLine(ctx context.Context, pos hackenbush.Position, first hackenbush.Color) ([]Step, error) {
	var line []Step
	mover := first
	for {
		eval, err := e.Evaluate(ctx, pos, mover)
		if err != nil {
			return nil, err
		}
		if !eval.HasMove {
			return line, nil
		}
		line = append(line, Step{Mover: mover, Move: eval.Move, Value: eval.Value})
		if pos, err = pos.ApplyMove(eval.Move); err != nil {
			return nil, err
		}
		mover = mover.Invert()
	}
}

func (e *Engine) setStats(stats Stats) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	e.stats = stats
}

// Stats returns the statistics of the most recent evaluation.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}
