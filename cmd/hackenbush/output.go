package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/hackenbush/internal/config"
	"github.com/lox/hackenbush/internal/hackenbush"
	"github.com/lox/hackenbush/internal/search"
	"github.com/lox/hackenbush/internal/surreal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	blueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	redStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func colorStyle(c hackenbush.Color) lipgloss.Style {
	if c == hackenbush.Red {
		return redStyle
	}
	return blueStyle
}

// outcome names the winner of a position with value v under perfect play.
func outcome(arena *surreal.Arena, v surreal.Value) string {
	switch arena.Compare(v, surreal.Zero) {
	case 1:
		return blueStyle.Render("Blue wins")
	case -1:
		return redStyle.Render("Red wins")
	default:
		return "second player wins"
	}
}

func describeEdge(p config.NamedPosition, id hackenbush.EdgeID) string {
	e, ok := p.Position.Edge(id)
	if !ok {
		return fmt.Sprintf("edge %d", id)
	}
	return fmt.Sprintf("edge %d (%s-%s %s)", id, p.NodeName(e.U), p.NodeName(e.V), colorStyle(e.Color).Render(e.Color.String()))
}

func (e *env) printEvaluation(p config.NamedPosition, perspective hackenbush.Color, eval search.Evaluation, stats search.Stats) {
	fmt.Fprintf(e.out, "%s  %d edges (%d blue, %d red)\n",
		headerStyle.Render(p.Name),
		p.Position.NumEdges(),
		p.Position.Count(hackenbush.Blue),
		p.Position.Count(hackenbush.Red))
	fmt.Fprintf(e.out, "  value %s ≈ %g  %s\n",
		valueStyle.Render(e.arena.Format(eval.Value)),
		e.arena.Approximate(eval.Value),
		outcome(e.arena, eval.Value))

	mover := colorStyle(perspective).Render(perspective.String())
	if eval.HasMove {
		fmt.Fprintf(e.out, "  best move for %s: %s\n", mover, describeEdge(p, eval.Move))
	} else {
		fmt.Fprintf(e.out, "  %s has no move\n", mover)
	}

	fmt.Fprintln(e.out, dimStyle.Render(fmt.Sprintf("  nodes %d  terminals %d  table hits %d  table size %d  depth %d  elapsed %s",
		stats.NodesVisited, stats.TerminalNodes, stats.TableHits, stats.TableSize, stats.MaxDepth, stats.Elapsed)))
}

func (e *env) printLine(p config.NamedPosition, first hackenbush.Color, line []search.Step) {
	fmt.Fprintf(e.out, "%s  %s moves first\n", headerStyle.Render(p.Name), colorStyle(first).Render(first.String()))
	for i, step := range line {
		fmt.Fprintf(e.out, "  %2d. %s removes %s  %s\n",
			i+1,
			colorStyle(step.Mover).Render(step.Mover.String()),
			describeEdge(p, step.Move),
			dimStyle.Render("from "+e.arena.Format(step.Value)))
	}

	loser := first
	if len(line) > 0 {
		loser = line[len(line)-1].Mover.Invert()
	}
	fmt.Fprintf(e.out, "  %s cannot move and loses\n", colorStyle(loser).Render(loser.String()))
}

func (e *env) printFrontier() {
	frontier := e.arena.Frontier()
	byDay := make(map[int][]string)
	for _, v := range frontier {
		day, err := e.arena.Birthday(v)
		if err != nil {
			continue
		}
		byDay[day] = append(byDay[day], e.arena.Format(v))
	}
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	fmt.Fprintf(e.out, "%s  %d values\n", headerStyle.Render(fmt.Sprintf("day %d", e.arena.Day())), len(frontier))
	strs := make([]string, len(frontier))
	for i, v := range frontier {
		strs[i] = e.arena.Format(v)
	}
	fmt.Fprintf(e.out, "  %s\n", valueStyle.Render(strings.Join(strs, " ")))
	for _, d := range days {
		fmt.Fprintf(e.out, "  %s %s\n", dimStyle.Render(fmt.Sprintf("born day %d:", d)), strings.Join(byDay[d], " "))
	}
}
