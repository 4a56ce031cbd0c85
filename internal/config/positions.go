package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/lox/hackenbush/internal/fileutil"
	"github.com/lox/hackenbush/internal/hackenbush"
)

// GroundName is the node name that refers to ground in position files.
const GroundName = "ground"

// NamedPosition is a position decoded from a file along with its node names.
type NamedPosition struct {
	Name     string
	Position hackenbush.Position
	Nodes    map[string]hackenbush.NodeID
}

type positionFile struct {
	Positions []positionBlock `hcl:"position,block"`
}

type positionBlock struct {
	Name  string      `hcl:"name,label"`
	Edges []edgeBlock `hcl:"edge,block"`
}

type edgeBlock struct {
	From  string `hcl:"from"`
	To    string `hcl:"to"`
	Color string `hcl:"color"`
}

// LoadPositions reads every position block from an HCL file:
//
//	position "stalk" {
//	  edge {
//	    from  = "ground"
//	    to    = "a"
//	    color = "blue"
//	  }
//	}
func LoadPositions(filename string) ([]NamedPosition, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	return ParsePositions(src, filename)
}

// ParsePositions decodes position blocks from HCL source.
func ParsePositions(src []byte, filename string) ([]NamedPosition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var decoded positionFile
	diags = gohcl.DecodeBody(file.Body, nil, &decoded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	out := make([]NamedPosition, 0, len(decoded.Positions))
	seen := make(map[string]bool, len(decoded.Positions))
	for _, block := range decoded.Positions {
		if seen[block.Name] {
			return nil, fmt.Errorf("position %s: defined more than once", block.Name)
		}
		seen[block.Name] = true

		named, err := block.build()
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", block.Name, err)
		}
		out = append(out, named)
	}
	return out, nil
}

func (p positionBlock) build() (NamedPosition, error) {
	b := hackenbush.NewBuilder()
	nodes := map[string]hackenbush.NodeID{GroundName: hackenbush.Ground}
	node := func(name string) (hackenbush.NodeID, error) {
		if name == "" {
			return 0, errors.New("empty node name")
		}
		if id, ok := nodes[name]; ok {
			return id, nil
		}
		id := b.AddNode()
		nodes[name] = id
		return id, nil
	}

	for i, e := range p.Edges {
		color, err := hackenbush.ParseColor(e.Color)
		if err != nil {
			return NamedPosition{}, fmt.Errorf("edge %d: %w", i, err)
		}
		u, err := node(e.From)
		if err != nil {
			return NamedPosition{}, fmt.Errorf("edge %d: %w", i, err)
		}
		v, err := node(e.To)
		if err != nil {
			return NamedPosition{}, fmt.Errorf("edge %d: %w", i, err)
		}
		b.AddEdge(u, v, color)
	}

	pos, err := b.Build()
	if err != nil {
		return NamedPosition{}, err
	}
	return NamedPosition{Name: p.Name, Position: pos, Nodes: nodes}, nil
}

// Find returns the position called name.
func Find(positions []NamedPosition, name string) (NamedPosition, bool) {
	for _, p := range positions {
		if p.Name == name {
			return p, true
		}
	}
	return NamedPosition{}, false
}

// NodeName returns the file name of node id. Nodes without one, such as those
// of generated positions, are called "n<id>".
func (p NamedPosition) NodeName(id hackenbush.NodeID) string {
	if id == hackenbush.Ground {
		return GroundName
	}
	for name, n := range p.Nodes {
		if n == id {
			return name
		}
	}
	return fmt.Sprintf("n%d", id)
}

// EncodePositions renders positions in the format ParsePositions reads.
func EncodePositions(positions []NamedPosition) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, p := range positions {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("position", []string{p.Name}).Body()
		for _, e := range p.Position.Edges() {
			edge := block.AppendNewBlock("edge", nil).Body()
			edge.SetAttributeValue("from", cty.StringVal(p.NodeName(e.U)))
			edge.SetAttributeValue("to", cty.StringVal(p.NodeName(e.V)))
			edge.SetAttributeValue("color", cty.StringVal(e.Color.String()))
		}
	}
	return f.Bytes()
}

// SavePositions atomically replaces filename with the encoded positions.
func SavePositions(filename string, positions []NamedPosition) error {
	return fileutil.WriteFileAtomic(filename, EncodePositions(positions), 0o644)
}
