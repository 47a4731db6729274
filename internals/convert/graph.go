package convert

import (
	"asset-exchange/internals/core/domain"
)

// graph is an undirected adjacency set over asset symbols. An edge (A, B)
// exists iff the conversion map holds a rate history for (A, B) or (B, A);
// the path search can traverse it either way because a direct rate in one
// direction implies a computable inverse.
type graph struct {
	adjacency map[domain.SymbolID]map[domain.SymbolID]struct{}
}

func newGraph(conversionMap domain.ConversionMap) *graph {
	g := &graph{adjacency: make(map[domain.SymbolID]map[domain.SymbolID]struct{})}
	for from, targets := range conversionMap {
		for to := range targets {
			g.addEdge(from, to)
			g.addEdge(to, from)
		}
	}
	return g
}

func (g *graph) addEdge(a, b domain.SymbolID) {
	if g.adjacency[a] == nil {
		g.adjacency[a] = make(map[domain.SymbolID]struct{})
	}
	g.adjacency[a][b] = struct{}{}
}

func (g *graph) hasNode(s domain.SymbolID) bool {
	_, ok := g.adjacency[s]
	return ok
}

// shortestPath runs a breadth-first search from src to dst and returns the
// node sequence, src and dst included. Hop count is the sole optimization
// criterion, edges carry no weight. Returns nil when dst is unreachable.
func (g *graph) shortestPath(src, dst domain.SymbolID) []domain.SymbolID {
	if src == dst {
		return []domain.SymbolID{src}
	}

	previous := map[domain.SymbolID]domain.SymbolID{src: src}
	queue := []domain.SymbolID{src}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for neighbor := range g.adjacency[node] {
			if _, visited := previous[neighbor]; visited {
				continue
			}
			previous[neighbor] = node
			if neighbor == dst {
				return unwindPath(previous, src, dst)
			}
			queue = append(queue, neighbor)
		}
	}
	return nil
}

func unwindPath(previous map[domain.SymbolID]domain.SymbolID, src, dst domain.SymbolID) []domain.SymbolID {
	path := []domain.SymbolID{dst}
	for node := dst; node != src; node = previous[node] {
		path = append(path, previous[node])
	}
	// The unwind walks dst -> src, flip it.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
