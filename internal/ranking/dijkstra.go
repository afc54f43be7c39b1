// Package ranking implements shortest-path ranking over a frozen similarity
// graph. Every call allocates its own traversal state, so functions are safe
// to call concurrently on the same graph.
package ranking

import (
	"container/heap"
	"strconv"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/graph"
)

// Distance is a shortest-path length or the Unreachable marker.
type Distance struct {
	value     int
	reachable bool
}

// Unreachable is the distance of a vertex the source cannot reach.
var Unreachable = Distance{}

// Reachable returns a finite distance.
func Reachable(d int) Distance {
	return Distance{value: d, reachable: true}
}

// IsReachable reports whether the distance is finite.
func (d Distance) IsReachable() bool {
	return d.reachable
}

// Value returns the finite distance. It is 0 for Unreachable; check
// IsReachable first.
func (d Distance) Value() int {
	return d.value
}

// Less orders finite distances ascending with Unreachable last.
func (d Distance) Less(o Distance) bool {
	switch {
	case !d.reachable:
		return false
	case !o.reachable:
		return true
	default:
		return d.value < o.value
	}
}

func (d Distance) String() string {
	if !d.reachable {
		return "unreachable"
	}
	return strconv.Itoa(d.value)
}

// Paths holds single-source shortest-path distances.
type Paths struct {
	g      *graph.Graph
	source int32
	valid  bool
	dist   []int
	seen   []bool
}

// Source returns the source vertex and whether it was in the graph.
func (p *Paths) Source() (catalog.ID, bool) {
	if !p.valid {
		return "", false
	}
	return p.g.IDAt(p.source), true
}

// Distance returns the distance from the source to id.
func (p *Paths) Distance(id catalog.ID) Distance {
	if !p.valid {
		return Unreachable
	}
	i, ok := p.g.Index(id)
	if !ok || !p.seen[i] {
		return Unreachable
	}
	return Reachable(p.dist[i])
}

// Reached calls fn for every reachable vertex other than the source, in arena
// order.
func (p *Paths) Reached(fn func(i int32, d int)) {
	if !p.valid {
		return
	}
	for i, ok := range p.seen {
		if ok && int32(i) != p.source { //nolint:gosec // arena index fits int32
			fn(int32(i), p.dist[i]) //nolint:gosec // arena index fits int32
		}
	}
}

// ShortestPaths runs Dijkstra's algorithm from source. A source that is not a
// vertex yields Paths in which everything is unreachable.
func ShortestPaths(g *graph.Graph, source catalog.ID) *Paths {
	src, ok := g.Index(source)
	p := &Paths{g: g, source: src, valid: ok}
	if !ok {
		return p
	}

	n := g.Len()
	p.dist = make([]int, n)
	p.seen = make([]bool, n)
	done := make([]bool, n)

	p.dist[src] = 0
	p.seen[src] = true
	frontier := &minHeap{{vertex: src, dist: 0}}

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(entry) //nolint:errcheck,forcetypeassert // heap only holds entry
		if done[cur.vertex] {
			continue
		}
		done[cur.vertex] = true

		for _, e := range g.EdgesAt(cur.vertex) {
			if done[e.To] {
				continue
			}
			nd := cur.dist + e.Weight
			if !p.seen[e.To] || nd < p.dist[e.To] {
				p.seen[e.To] = true
				p.dist[e.To] = nd
				heap.Push(frontier, entry{vertex: e.To, dist: nd})
			}
		}
	}
	return p
}

type entry struct {
	vertex int32
	dist   int
}

// minHeap is a binary heap of frontier entries; stale entries are skipped on
// pop.
type minHeap []entry

func (h minHeap) Len() int { return len(h) }

func (h minHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].vertex < h[j].vertex
}

func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(entry)) } //nolint:forcetypeassert // heap only holds entry

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
