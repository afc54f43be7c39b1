package ranking

import (
	"sort"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/graph"
)

// Window is the largest popularity-rank difference between a source and an
// eligible candidate.
const Window = 100

// Closest returns the most popular candidate among the vertices nearest to
// source, restricted to those within Window popularity ranks of it.
//
// Only the nearest tier is considered: if none of the vertices at the minimum
// distance pass the popularity window there is no recommendation, even when a
// farther vertex would pass.
func Closest(g *graph.Graph, source catalog.ID) (catalog.ID, bool) {
	return closestFrom(g, ShortestPaths(g, source))
}

func closestFrom(g *graph.Graph, p *Paths) (catalog.ID, bool) {
	src, ok := p.Source()
	if !ok {
		return "", false
	}
	srcRank := g.Popularity(src)

	minDist := -1
	var tier []int32
	p.Reached(func(i int32, d int) {
		switch {
		case minDist < 0 || d < minDist:
			minDist = d
			tier = append(tier[:0], i)
		case d == minDist:
			tier = append(tier, i)
		}
	})

	var (
		best     int32
		bestRank catalog.Rank
		found    bool
	)
	for _, i := range tier {
		r := g.RankAt(i)
		if !srcRank.Within(r, Window) {
			continue
		}
		if !found || r.Less(bestRank) || (!bestRank.Less(r) && g.IDAt(i) < g.IDAt(best)) {
			best, bestRank, found = i, r, true
		}
	}
	if !found {
		return "", false
	}
	return g.IDAt(best), true
}

type candidate struct {
	id   catalog.ID
	dist int
	diff int
}

// TopN returns up to n popularity-eligible vertices reachable from source,
// ordered by distance, then popularity difference, then id. n <= 0 yields an
// empty list.
func TopN(g *graph.Graph, source catalog.ID, n int) []catalog.ID {
	return topNFrom(g, ShortestPaths(g, source), n)
}

func topNFrom(g *graph.Graph, p *Paths, n int) []catalog.ID {
	if n <= 0 {
		return []catalog.ID{}
	}
	src, ok := p.Source()
	if !ok {
		return []catalog.ID{}
	}
	srcRank := g.Popularity(src)

	var cands []candidate
	p.Reached(func(i int32, d int) {
		diff, ok := srcRank.Diff(g.RankAt(i))
		if !ok || diff > Window {
			return
		}
		cands = append(cands, candidate{id: g.IDAt(i), dist: d, diff: diff})
	})

	sort.Slice(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.dist != cb.dist {
			return ca.dist < cb.dist
		}
		if ca.diff != cb.diff {
			return ca.diff < cb.diff
		}
		return ca.id < cb.id
	})

	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]catalog.ID, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}

// Result bundles the closest item and a ranked list from one traversal.
type Result struct {
	Closest catalog.ID
	Found   bool
	// Alternatives is the top-N list with Closest removed.
	Alternatives []catalog.ID
}

// Recommend computes Closest and TopN from a single shortest-path run. The
// alternatives are the top n with the closest item removed, so there are
// n-1 of them when the closest ranks inside the top n.
func Recommend(g *graph.Graph, source catalog.ID, n int) Result {
	p := ShortestPaths(g, source)
	closest, found := closestFrom(g, p)

	ranked := topNFrom(g, p, n)
	alts := make([]catalog.ID, 0, len(ranked))
	for _, id := range ranked {
		if found && id == closest {
			continue
		}
		alts = append(alts, id)
	}
	return Result{Closest: closest, Found: found, Alternatives: alts}
}
