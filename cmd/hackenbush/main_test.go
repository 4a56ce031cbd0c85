package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hackenbush/internal/config"
	"github.com/lox/hackenbush/internal/hackenbush"
)

const positionsHCL = `
position "stalk" {
  edge {
    from  = "ground"
    to    = "a"
    color = "blue"
  }
  edge {
    from  = "a"
    to    = "b"
    color = "red"
  }
  edge {
    from  = "b"
    to    = "c"
    color = "blue"
  }
}

position "pair" {
  edge {
    from  = "ground"
    to    = "left"
    color = "blue"
  }
  edge {
    from  = "ground"
    to    = "right"
    color = "red"
  }
}
`

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func newTestEnv(t *testing.T) (*env, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), LogLevel: "error", NoColor: true}
	e, err := g.setup(&buf)
	require.NoError(t, err)
	return e, &buf
}

func TestNewLogger(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"error":   log.ErrorLevel,
		"unknown": log.InfoLevel,
	}
	for level, want := range tests {
		t.Run(level, func(t *testing.T) {
			assert.Equal(t, want, newLogger(&bytes.Buffer{}, level).GetLevel())
		})
	}
}

func TestSetupOverrides(t *testing.T) {
	path := writeFile(t, "hackenbush.hcl", `
log_level = "warn"

search {
  workers = 2
}
`)

	e, err := (&Globals{Config: path, Workers: 3}).setup(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, e.engine.Config().Workers)
	assert.Equal(t, log.WarnLevel, e.logger.GetLevel())

	_, err = (&Globals{Config: path, LogLevel: "loud"}).setup(&bytes.Buffer{})
	assert.Error(t, err)

	bad := writeFile(t, "bad.hcl", `search {`)
	_, err = (&Globals{Config: bad}).setup(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestSourcePositions(t *testing.T) {
	file := writeFile(t, "positions.hcl", positionsHCL)

	t.Run("whole file", func(t *testing.T) {
		positions, err := Source{File: file}.positions()
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, "stalk", positions[0].Name)
		assert.Equal(t, "pair", positions[1].Name)
	})

	t.Run("by name", func(t *testing.T) {
		positions, err := Source{File: file, Name: "pair"}.positions()
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, 2, positions[0].Position.NumEdges())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Source{File: file, Name: "ladder"}.positions()
		assert.Error(t, err)
	})

	t.Run("random", func(t *testing.T) {
		a, err := Source{Random: 6, Seed: 7}.positions()
		require.NoError(t, err)
		b, err := Source{Random: 6, Seed: 7}.positions()
		require.NoError(t, err)
		require.Len(t, a, 1)
		assert.Equal(t, "random-7", a[0].Name)
		assert.Equal(t, a[0].Position.Key(), b[0].Position.Key())
	})

	t.Run("nothing to read", func(t *testing.T) {
		_, err := Source{}.positions()
		assert.Error(t, err)
	})
}

func TestPrintEvaluation(t *testing.T) {
	e, buf := newTestEnv(t)
	positions, err := config.ParsePositions([]byte(positionsHCL), "positions.hcl")
	require.NoError(t, err)

	stalk := positions[0]
	eval, err := e.engine.Evaluate(context.Background(), stalk.Position, hackenbush.Blue)
	require.NoError(t, err)
	e.printEvaluation(stalk, hackenbush.Blue, eval, e.engine.Stats())

	out := buf.String()
	assert.Contains(t, out, "stalk")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "0.75")
	assert.Contains(t, out, "Blue wins")
	assert.Contains(t, out, "edge 2 (b-c ")

	buf.Reset()
	pair := positions[1]
	eval, err = e.engine.Evaluate(context.Background(), pair.Position, hackenbush.Red)
	require.NoError(t, err)
	e.printEvaluation(pair, hackenbush.Red, eval, e.engine.Stats())
	assert.Contains(t, buf.String(), "second player wins")
	assert.Contains(t, buf.String(), "edge 1 (ground-right ")
}

func TestPrintLine(t *testing.T) {
	e, buf := newTestEnv(t)
	positions, err := config.ParsePositions([]byte(positionsHCL), "positions.hcl")
	require.NoError(t, err)

	line, err := e.engine.PrincipalLine(context.Background(), positions[0].Position, hackenbush.Blue)
	require.NoError(t, err)
	e.printLine(positions[0], hackenbush.Blue, line)

	out := buf.String()
	assert.Contains(t, out, "1. blue removes edge 2")
	assert.Contains(t, out, "2. red removes edge 1")
	assert.Contains(t, out, "3. blue removes edge 0")
	assert.Contains(t, out, "red cannot move and loses")
}

func TestPrintFrontier(t *testing.T) {
	e, buf := newTestEnv(t)
	require.NoError(t, e.arena.GrowTo(2))
	e.printFrontier()

	out := buf.String()
	assert.Contains(t, out, "day 2")
	assert.Contains(t, out, "-2 -1 -1/2 0 1/2 1 2")
	assert.Contains(t, out, "born day 2: -2 -1/2 1/2 2")
}

func TestGenerate(t *testing.T) {
	cmd := &GenerateCmd{Size: 6, Count: 3, Seed: 11}
	positions := cmd.generate()
	require.Len(t, positions, 3)
	assert.Equal(t, "random-11-1", positions[0].Name)
	for _, p := range positions {
		assert.Equal(t, 2*6-3, p.Position.NumEdges())
	}

	again := cmd.generate()
	for i := range positions {
		assert.Equal(t, positions[i].Position.Key(), again[i].Position.Key())
	}

	decoded, err := config.ParsePositions(config.EncodePositions(positions), "generated.hcl")
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	assert.Equal(t, positions[2].Position.Edges(), decoded[2].Position.Edges())
}

func TestWriteMetrics(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "hackenbush.prom")
	g := &Globals{Config: filepath.Join(dir, "missing.hcl"), LogLevel: "error", MetricsFile: metricsFile}
	e, err := g.setup(&bytes.Buffer{})
	require.NoError(t, err)

	_, err = e.engine.Evaluate(context.Background(), hackenbush.Position{}, hackenbush.Blue)
	require.NoError(t, err)
	require.NoError(t, e.writeMetrics())

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hackenbush_search_evaluations_total{result="ok"} 1`)
	assert.Contains(t, string(data), "hackenbush_arena_values 1")

	e, err = (&Globals{Config: g.Config, LogLevel: "error"}).setup(&bytes.Buffer{})
	require.NoError(t, err)
	assert.NoError(t, e.writeMetrics())
}
