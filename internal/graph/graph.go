// Package graph holds the frozen similarity graph built from catalog records.
//
// Vertices live in an arena indexed by a dense int32; each vertex owns an
// adjacency list of (index, weight) pairs sorted by neighbor index. A Graph is
// immutable once frozen and safe for concurrent readers without locking.
package graph

import (
	"sort"

	"github.com/animerec/animerec-server/internal/catalog"
)

// Edge category weights. Lower weight means a stronger relation.
const (
	WeightRelated = 1
	WeightGenre   = 2
	WeightStudio  = 3
)

// Edge is one adjacency entry.
type Edge struct {
	To     int32
	Weight int
}

// Graph is an immutable weighted undirected graph over catalog items.
type Graph struct {
	ids       []catalog.ID
	index     map[catalog.ID]int32
	ranks     []catalog.Rank
	edges     [][]Edge
	edgeCount int
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	return len(g.ids)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Has reports whether id is a vertex.
func (g *Graph) Has(id catalog.ID) bool {
	_, ok := g.index[id]
	return ok
}

// Index returns the arena index of id.
func (g *Graph) Index(id catalog.ID) (int32, bool) {
	i, ok := g.index[id]
	return i, ok
}

// IDAt returns the identifier stored at arena index i.
func (g *Graph) IDAt(i int32) catalog.ID {
	return g.ids[i]
}

// RankAt returns the popularity of the vertex at arena index i.
func (g *Graph) RankAt(i int32) catalog.Rank {
	return g.ranks[i]
}

// EdgesAt returns the adjacency list of the vertex at arena index i, sorted by
// neighbor index. The slice is shared and must not be modified.
func (g *Graph) EdgesAt(i int32) []Edge {
	return g.edges[i]
}

// Vertices returns every vertex id in registration order.
func (g *Graph) Vertices() []catalog.ID {
	out := make([]catalog.ID, len(g.ids))
	copy(out, g.ids)
	return out
}

// Neighbors returns a fresh map of neighbor id to edge weight. It is empty
// when id is not a vertex.
func (g *Graph) Neighbors(id catalog.ID) map[catalog.ID]int {
	i, ok := g.index[id]
	if !ok {
		return map[catalog.ID]int{}
	}
	out := make(map[catalog.ID]int, len(g.edges[i]))
	for _, e := range g.edges[i] {
		out[g.ids[e.To]] = e.Weight
	}
	return out
}

// Weight returns the weight of the edge between a and b.
func (g *Graph) Weight(a, b catalog.ID) (int, bool) {
	ia, ok := g.index[a]
	if !ok {
		return 0, false
	}
	ib, ok := g.index[b]
	if !ok {
		return 0, false
	}
	adj := g.edges[ia]
	k := sort.Search(len(adj), func(n int) bool { return adj[n].To >= ib })
	if k < len(adj) && adj[k].To == ib {
		return adj[k].Weight, true
	}
	return 0, false
}

// Popularity returns the popularity rank of id, or catalog.Unknown when id is
// not a vertex.
func (g *Graph) Popularity(id catalog.ID) catalog.Rank {
	i, ok := g.index[id]
	if !ok {
		return catalog.Unknown
	}
	return g.ranks[i]
}
