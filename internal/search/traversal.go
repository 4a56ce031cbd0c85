package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lox/hackenbush/internal/hackenbush"
	"github.com/lox/hackenbush/internal/surreal"
)

type move struct {
	id    hackenbush.EdgeID
	color hackenbush.Color
}

type childResult struct {
	move  move
	value surreal.Value
}

// traversal holds the counters of one Evaluate call.
type traversal struct {
	engine    *Engine
	nodes     atomic.Int64
	terminals atomic.Int64
	hits      atomic.Int64
	maxDepth  atomic.Int64
}

func (t *traversal) snapshot() Stats {
	return Stats{
		NodesVisited:  t.nodes.Load(),
		TerminalNodes: t.terminals.Load(),
		TableHits:     t.hits.Load(),
		MaxDepth:      int(t.maxDepth.Load()),
	}
}

func (t *traversal) visit(depth int) {
	t.nodes.Add(1)
	for {
		cur := t.maxDepth.Load()
		if int64(depth) <= cur || t.maxDepth.CompareAndSwap(cur, int64(depth)) {
			return
		}
	}
}

func (t *traversal) evaluate(ctx context.Context, pos hackenbush.Position, perspective hackenbush.Color, depth int) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	t.visit(depth)

	if pos.IsTerminal() {
		t.terminals.Add(1)
		return Evaluation{Value: surreal.Zero}, nil
	}

	moves := make([]move, 0, pos.NumEdges())
	for _, c := range []hackenbush.Color{hackenbush.Blue, hackenbush.Red} {
		for _, id := range pos.LegalMoves(c) {
			moves = append(moves, move{id: id, color: c})
		}
	}

	results, err := t.children(ctx, pos, moves, depth)
	if err != nil {
		return Evaluation{}, err
	}

	arena := t.engine.arena
	left, right := surreal.None, surreal.None
	var leftMove, rightMove hackenbush.EdgeID
	for _, r := range results {
		switch r.move.color {
		case hackenbush.Blue:
			if left == surreal.None || arena.Less(left, r.value) {
				left, leftMove = r.value, r.move.id
			}
		case hackenbush.Red:
			if right == surreal.None || arena.Less(r.value, right) {
				right, rightMove = r.value, r.move.id
			}
		}
	}

	value, err := arena.Intern(left, right)
	if err != nil {
		return Evaluation{}, fmt.Errorf("fold position with %d edges: %w", pos.NumEdges(), err)
	}

	eval := Evaluation{Value: value}
	switch perspective {
	case hackenbush.Blue:
		eval.Move, eval.HasMove = leftMove, left != surreal.None
	case hackenbush.Red:
		eval.Move, eval.HasMove = rightMove, right != surreal.None
	}
	return eval, nil
}

// children evaluates every move. Results keep move order regardless of how
// the subtrees were scheduled, so ties resolve the same way in parallel.
func (t *traversal) children(ctx context.Context, pos hackenbush.Position, moves []move, depth int) ([]childResult, error) {
	results := make([]childResult, len(moves))
	cfg := t.engine.cfg

	if cfg.Workers > 1 && depth < cfg.ParallelDepth && len(moves) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for i, m := range moves {
			g.Go(func() error {
				v, err := t.child(gctx, pos, m, depth)
				if err != nil {
					return err
				}
				results[i] = childResult{move: m, value: v}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	}

	for i, m := range moves {
		v, err := t.child(ctx, pos, m, depth)
		if err != nil {
			return nil, err
		}
		results[i] = childResult{move: m, value: v}
	}
	return results, nil
}

// child returns the value of the position after m, from the opponent's side.
func (t *traversal) child(ctx context.Context, pos hackenbush.Position, m move, depth int) (surreal.Value, error) {
	next, err := pos.ApplyMove(m.id)
	if err != nil {
		return surreal.None, err
	}

	table := t.engine.table
	var key string
	if table != nil {
		key = next.Key()
		if v, ok := table.get(key); ok {
			t.hits.Add(1)
			return v, nil
		}
	}

	eval, err := t.evaluate(ctx, next, m.color.Invert(), depth+1)
	if err != nil {
		return surreal.None, err
	}
	if table != nil {
		table.put(key, eval.Value)
	}
	return eval.Value, nil
}
