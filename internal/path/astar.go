package path

import (
	"container/heap"

	"github.com/isleclash/server/internal/grid"
)

// Walkable is the grid view the planner needs.
type Walkable interface {
	CanMove(p grid.Vec3) bool
}

// DefaultMaxExpanded bounds a search when the planner is left unconfigured.
const DefaultMaxExpanded = 4096

// Planner runs A* searches. The zero value uses DefaultMaxExpanded.
type Planner struct {
	// MaxExpanded caps closed-set growth per search; hitting it yields no path.
	MaxExpanded int
}

// Result carries the path plus search statistics.
type Result struct {
	Path     []grid.Vec3
	Expanded int
}

// FindPath returns the cells from the step after start up to and including
// goal, or nil when the goal cannot be reached.
func (p Planner) FindPath(start, goal grid.Vec3, w Walkable, rule MovementRule) []grid.Vec3 {
	return p.Search(start, goal, w, rule).Path
}

// Search is FindPath with statistics. Every step costs 1. Equal f-scores are
// popped in insertion order.
func (p Planner) Search(start, goal grid.Vec3, w Walkable, rule MovementRule) Result {
	if start == goal {
		return Result{}
	}
	limit := p.MaxExpanded
	if limit <= 0 {
		limit = DefaultMaxExpanded
	}

	var (
		open     nodeHeap
		seq      uint64
		gScore   = map[grid.Vec3]int32{start: 0}
		cameFrom = make(map[grid.Vec3]grid.Vec3)
		closed   = make(map[grid.Vec3]struct{})
	)
	heap.Push(&open, node{pos: start, f: rule.Heuristic(start, goal), seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(&open).(node)
		if _, done := closed[cur.pos]; done {
			continue
		}
		if cur.pos == goal {
			return Result{Path: reconstruct(cameFrom, start, goal), Expanded: len(closed)}
		}
		closed[cur.pos] = struct{}{}
		if len(closed) > limit {
			return Result{Expanded: len(closed)}
		}

		g := gScore[cur.pos]
		for _, off := range rule.Offsets {
			next, ok := rule.step(w, cur.pos, off)
			if !ok {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}
			tentative := g + 1
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.pos
			seq++
			heap.Push(&open, node{pos: next, f: tentative + rule.Heuristic(next, goal), seq: seq})
		}
	}
	return Result{Expanded: len(closed)}
}

// step tries the direct move, then one up when climbing is allowed, then one
// down when dropping is allowed.
func (r MovementRule) step(w Walkable, from, off grid.Vec3) (grid.Vec3, bool) {
	n := from.Add(off)
	if w.CanMove(n) {
		return n, true
	}
	if r.CanClimb {
		if up := n.Add(grid.Up); w.CanMove(up) {
			return up, true
		}
	}
	if r.CanDrop {
		if down := n.Add(grid.Down); w.CanMove(down) {
			return down, true
		}
	}
	return grid.Vec3{}, false
}

func reconstruct(cameFrom map[grid.Vec3]grid.Vec3, start, goal grid.Vec3) []grid.Vec3 {
	var rev []grid.Vec3
	for cur := goal; cur != start; cur = cameFrom[cur] {
		rev = append(rev, cur)
	}
	out := make([]grid.Vec3, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

type node struct {
	pos grid.Vec3
	f   int32
	seq uint64
}

// nodeHeap is a min-heap on f, then insertion sequence.
type nodeHeap []node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
