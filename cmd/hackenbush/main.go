package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/hackenbush/internal/config"
	"github.com/lox/hackenbush/internal/search"
	"github.com/lox/hackenbush/internal/surreal"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"hackenbush.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Workers  int    `short:"w" help:"Concurrent sibling searches (overrides config)"`
	NoColor  bool   `help:"Disable coloured output"`

	MetricsFile string `help:"Write search metrics in Prometheus text format to this file when done"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate positions and suggest the best move"`
	Playout  PlayoutCmd       `cmd:"" help:"Play a position out with both sides moving optimally"`
	Generate GenerateCmd      `cmd:"" help:"Generate random positions as HCL"`
	Frontier FrontierCmd      `cmd:"" help:"Print the surreal values born by a given day"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hackenbush"),
		kong.Description("Blue-Red Hackenbush evaluator over surreal numbers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// env is what a command needs once configuration has been resolved.
type env struct {
	logger      *log.Logger
	arena       *surreal.Arena
	engine      *search.Engine
	out         io.Writer
	registry    *prometheus.Registry
	metricsFile string
}

func (g *Globals) setup(out io.Writer) (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Apply command line overrides
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.Workers > 0 {
		cfg.Search.Workers = g.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	arena := surreal.NewArena(append(cfg.ArenaOptions(), surreal.WithLogger(logger))...)
	opts := []search.Option{search.WithLogger(logger)}
	var registry *prometheus.Registry
	if g.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, search.WithRegisterer(registry))
	}
	engine, err := search.NewEngine(arena, cfg.SearchConfig(), opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configured engine",
		"config", g.Config,
		"workers", cfg.Search.Workers,
		"parallelDepth", *cfg.Search.ParallelDepth,
		"transpositions", *cfg.Search.Transpositions,
		"maxDay", arena.MaxDay())

	return &env{
		logger:      logger,
		arena:       arena,
		engine:      engine,
		out:         out,
		registry:    registry,
		metricsFile: g.MetricsFile,
	}, nil
}

// writeMetrics dumps the registry for the node exporter textfile collector.
func (e *env) writeMetrics() error {
	if e.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(e.metricsFile, e.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	e.logger.Debug("Wrote metrics", "file", e.metricsFile)
	return nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.New(w)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
