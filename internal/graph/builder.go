package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/animerec/animerec-server/internal/catalog"
)

// ErrInvalidWeight is returned when an edge weight is not a positive integer.
var ErrInvalidWeight = errors.New("graph: edge weight must be positive")

// Builder accumulates vertices and edges before freezing them into a Graph.
// It is not safe for concurrent use.
type Builder struct {
	ids   []catalog.ID
	index map[catalog.ID]int32
	ranks []catalog.Rank
	adj   []map[int32]int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[catalog.ID]int32)}
}

// AddVertex registers id with its popularity. Registering an id twice is a
// no-op; the first registration wins. It reports whether a vertex was added.
func (b *Builder) AddVertex(id catalog.ID, rank catalog.Rank) bool {
	if _, exists := b.index[id]; exists {
		return false
	}
	b.index[id] = int32(len(b.ids)) //nolint:gosec // vertex count stays far below 2^31
	b.ids = append(b.ids, id)
	b.ranks = append(b.ranks, rank)
	b.adj = append(b.adj, nil)
	return true
}

// Has reports whether id has been registered.
func (b *Builder) Has(id catalog.ID) bool {
	_, ok := b.index[id]
	return ok
}

// AddEdge stores an undirected edge between x and y, overwriting any weight
// already stored for the pair. It is a no-op, reporting false, when either
// endpoint is unregistered or x == y. A non-positive weight is an error.
func (b *Builder) AddEdge(x, y catalog.ID, weight int) (bool, error) {
	if weight <= 0 {
		return false, fmt.Errorf("%w: %d for (%s, %s)", ErrInvalidWeight, weight, x, y)
	}
	ix, ok := b.index[x]
	if !ok {
		return false, nil
	}
	iy, ok := b.index[y]
	if !ok || ix == iy {
		return false, nil
	}
	b.setHalf(ix, iy, weight)
	b.setHalf(iy, ix, weight)
	return true, nil
}

func (b *Builder) setHalf(from, to int32, weight int) {
	if b.adj[from] == nil {
		b.adj[from] = make(map[int32]int)
	}
	b.adj[from][to] = weight
}

// Freeze produces the immutable Graph. The builder must not be used afterwards.
func (b *Builder) Freeze() *Graph {
	g := &Graph{
		ids:   b.ids,
		index: b.index,
		ranks: b.ranks,
		edges: make([][]Edge, len(b.ids)),
	}
	half := 0
	for i, m := range b.adj {
		if len(m) == 0 {
			continue
		}
		list := make([]Edge, 0, len(m))
		for to, w := range m {
			list = append(list, Edge{To: to, Weight: w})
		}
		sort.Slice(list, func(p, q int) bool { return list[p].To < list[q].To })
		g.edges[i] = list
		half += len(list)
	}
	g.edgeCount = half / 2

	b.ids, b.index, b.ranks, b.adj = nil, nil, nil, nil
	return g
}
