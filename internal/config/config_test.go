package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hackenbush/internal/hackenbush"
	"github.com/lox/hackenbush/internal/search"
	"github.com/lox/hackenbush/internal/surreal"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, search.DefaultConfig(), cfg.SearchConfig())
	assert.Equal(t, surreal.DefaultMaxDay, cfg.Arena.MaxDay)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hackenbush.hcl")
	src := `
log_level = "debug"

search {
  workers        = 4
  parallel_depth = 2
  transpositions = false
  max_edges      = 18
}

arena {
  max_day = 12
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, search.Config{
		Workers:        4,
		ParallelDepth:  2,
		Transpositions: false,
		TableShards:    search.DefaultConfig().TableShards,
		MaxEdges:       18,
	}, cfg.SearchConfig())
	assert.Equal(t, 12, cfg.Arena.MaxDay)

	arena := surreal.NewArena(cfg.ArenaOptions()...)
	assert.Equal(t, 12, arena.MaxDay())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `search {`},
		{"unknown attribute", `colour = "blue"`},
		{"wrong type", `search { workers = "many" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"workers", func(c *Config) { c.Search.Workers = -1 }},
		{"max edges", func(c *Config) { c.Search.MaxEdges = -3 }},
		{"max day", func(c *Config) { c.Arena.MaxDay = 64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParsePositions(t *testing.T) {
	src := `
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

position "triangle" {
  edge {
    from  = "ground"
    to    = "x"
    color = "red"
  }
  edge {
    from  = "x"
    to    = "ground"
    color = "blue"
  }
}
`
	positions, err := ParsePositions([]byte(src), "positions.hcl")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	stalk, ok := Find(positions, "stalk")
	require.True(t, ok)
	assert.Equal(t, []hackenbush.Edge{
		{ID: 0, U: hackenbush.Ground, V: 1, Color: hackenbush.Blue},
		{ID: 1, U: 1, V: 2, Color: hackenbush.Red},
		{ID: 2, U: 2, V: 3, Color: hackenbush.Blue},
	}, stalk.Position.Edges())
	assert.Equal(t, hackenbush.NodeID(3), stalk.Nodes["c"])

	triangle, ok := Find(positions, "triangle")
	require.True(t, ok)
	assert.Equal(t, 2, triangle.Position.NumEdges())
	assert.Len(t, triangle.Position.Nodes(), 2)

	_, ok = Find(positions, "missing")
	assert.False(t, ok)
}

func TestParsePositionsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad colour", `position "p" {
  edge {
    from  = "ground"
    to    = "a"
    color = "green"
  }
}`},
		{"floating edge", `position "p" {
  edge {
    from  = "a"
    to    = "b"
    color = "blue"
  }
}`},
		{"duplicate names", `position "p" {}
position "p" {}`},
		{"missing attribute", `position "p" {
  edge {
    from = "ground"
    to   = "a"
  }
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePositions([]byte(tt.src), "positions.hcl")
			assert.Error(t, err)
		})
	}

	_, err := ParsePositions([]byte(`position "p" {
  edge {
    from  = "a"
    to    = "b"
    color = "red"
  }
}`), "positions.hcl")
	assert.ErrorIs(t, err, hackenbush.ErrInvalidPosition)
}

func TestLoadExamplePositions(t *testing.T) {
	positions, err := LoadPositions(filepath.Join("..", "..", "examples", "positions.hcl"))
	require.NoError(t, err)
	require.Len(t, positions, 3)

	stalk, ok := Find(positions, "alternating-stalk")
	require.True(t, ok)
	assert.Equal(t, 3, stalk.Position.NumEdges())

	house, ok := Find(positions, "house")
	require.True(t, ok)
	assert.Equal(t, 3, house.Position.Count(hackenbush.Blue))
	assert.Equal(t, 2, house.Position.Count(hackenbush.Red))
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "hackenbush.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 24, cfg.Search.MaxEdges)
}

func TestEncodePositionsRoundTrip(t *testing.T) {
	b := hackenbush.NewBuilder()
	top := b.AddStalk(hackenbush.Ground, hackenbush.Blue, hackenbush.Red)
	b.AddEdge(top, hackenbush.Ground, hackenbush.Blue)
	generated, err := b.Build()
	require.NoError(t, err)

	positions, err := ParsePositions([]byte(`position "named" {
  edge {
    from  = "ground"
    to    = "a"
    color = "red"
  }
}`), "named.hcl")
	require.NoError(t, err)
	positions = append(positions, NamedPosition{Name: "generated", Position: generated})

	decoded, err := ParsePositions(EncodePositions(positions), "encoded.hcl")
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	for i := range positions {
		assert.Equal(t, positions[i].Name, decoded[i].Name)
		assert.Equal(t, positions[i].Position.Edges(), decoded[i].Position.Edges())
	}
	assert.Equal(t, hackenbush.NodeID(1), decoded[1].Nodes["n1"])
}

func TestSavePositions(t *testing.T) {
	positions, err := LoadPositions(filepath.Join("..", "..", "examples", "positions.hcl"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.hcl")
	require.NoError(t, SavePositions(path, positions))

	saved, err := LoadPositions(path)
	require.NoError(t, err)
	require.Len(t, saved, len(positions))
	for i := range positions {
		assert.Equal(t, positions[i].Position.Key(), saved[i].Position.Key())
	}
}

func TestNodeName(t *testing.T) {
	p := NamedPosition{Nodes: map[string]hackenbush.NodeID{GroundName: hackenbush.Ground, "top": 2}}
	assert.Equal(t, GroundName, p.NodeName(hackenbush.Ground))
	assert.Equal(t, "top", p.NodeName(2))
	assert.Equal(t, "n5", p.NodeName(5))
}

func TestParallelDepthZeroIsKept(t *testing.T) {
	cfg, err := Parse([]byte(`
search {
  workers        = 4
  parallel_depth = 0
}
`), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.SearchConfig().ParallelDepth)

	cfg, err = Parse([]byte(`search { workers = 4 }`), "test.hcl")
	require.NoError(t, err)
	assert.Equal(t, search.DefaultConfig().ParallelDepth, cfg.SearchConfig().ParallelDepth)
}

func TestMaxDayBounds(t *testing.T) {
	cfg := Default()
	cfg.Arena.MaxDay = surreal.MaxSupportedDay
	assert.NoError(t, cfg.Validate())

	cfg.Arena.MaxDay = surreal.MaxSupportedDay + 1
	assert.Error(t, cfg.Validate())

	cfg.Arena.MaxDay = 0
	assert.Error(t, cfg.Validate())
}
