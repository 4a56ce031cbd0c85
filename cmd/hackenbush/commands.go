package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/hackenbush/internal/config"
	"github.com/lox/hackenbush/internal/hackenbush"
	"github.com/lox/hackenbush/internal/randutil"
)

// Source selects the positions a command works on.
type Source struct {
	File   string `short:"f" help:"HCL file of position blocks" type:"existingfile"`
	Name   string `short:"n" help:"Only use the position with this name"`
	Random int    `help:"Use a generated position with this many nodes instead of a file"`
	Seed   int64  `help:"random seed; 0 uses time seed" default:"0"`
}

func (s Source) positions() ([]config.NamedPosition, error) {
	if s.Random > 0 {
		seed := s.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		pos := hackenbush.Generate(s.Random, randutil.New(seed))
		return []config.NamedPosition{{
			Name:     fmt.Sprintf("random-%d", seed),
			Position: pos,
		}}, nil
	}

	if s.File == "" {
		return nil, errors.New("either --file or --random is required")
	}
	positions, err := config.LoadPositions(s.File)
	if err != nil {
		return nil, err
	}
	if s.Name != "" {
		p, ok := config.Find(positions, s.Name)
		if !ok {
			return nil, fmt.Errorf("no position named %q in %s", s.Name, s.File)
		}
		return []config.NamedPosition{p}, nil
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%s defines no positions", s.File)
	}
	return positions, nil
}

type EvalCmd struct {
	Source

	Perspective string `short:"p" help:"Player to move (blue|red)" enum:"blue,red" default:"blue"`
}

func (cmd *EvalCmd) Run(g *Globals) error {
	e, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	perspective, err := hackenbush.ParseColor(cmd.Perspective)
	if err != nil {
		return err
	}
	positions, err := cmd.positions()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	for _, p := range positions {
		e.logger.Debug("Evaluating position", "name", p.Name, "edges", p.Position.NumEdges(), "perspective", perspective)
		eval, err := e.engine.Evaluate(ctx, p.Position, perspective)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", p.Name, err)
		}
		e.printEvaluation(p, perspective, eval, e.engine.Stats())
	}
	return e.writeMetrics()
}

type PlayoutCmd struct {
	Source

	First string `help:"Player who moves first (blue|red)" enum:"blue,red" default:"blue"`
}

func (cmd *PlayoutCmd) Run(g *Globals) error {
	e, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	first, err := hackenbush.ParseColor(cmd.First)
	if err != nil {
		return err
	}
	positions, err := cmd.positions()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	for _, p := range positions {
		line, err := e.engine.PrincipalLine(ctx, p.Position, first)
		if err != nil {
			return fmt.Errorf("play out %s: %w", p.Name, err)
		}
		e.printLine(p, first, line)
	}
	return e.writeMetrics()
}

type GenerateCmd struct {
	Size  int    `arg:"" help:"Number of nodes, ground included"`
	Count int    `help:"Number of positions to generate" default:"1"`
	Seed  int64  `help:"random seed; 0 uses time seed" default:"0"`
	Out   string `short:"o" help:"Write the positions to this HCL file instead of stdout"`
}

func (cmd *GenerateCmd) Run(g *Globals) error {
	e, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	positions := cmd.generate()

	if cmd.Out == "" {
		_, err := e.out.Write(config.EncodePositions(positions))
		return err
	}
	if err := config.SavePositions(cmd.Out, positions); err != nil {
		return err
	}
	e.logger.Info("Wrote positions", "file", cmd.Out, "count", len(positions), "size", cmd.Size)
	return nil
}

func (cmd *GenerateCmd) generate() []config.NamedPosition {
	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	positions := make([]config.NamedPosition, cmd.Count)
	for i := range positions {
		positions[i] = config.NamedPosition{
			Name:     fmt.Sprintf("random-%d-%d", seed, i+1),
			Position: hackenbush.Generate(cmd.Size, rng),
		}
	}
	return positions
}

type FrontierCmd struct {
	Day int `arg:"" help:"Generation to grow the arena to" default:"3"`
}

func (cmd *FrontierCmd) Run(g *Globals) error {
	e, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	if err := e.arena.GrowTo(cmd.Day); err != nil {
		return err
	}
	e.printFrontier()
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
