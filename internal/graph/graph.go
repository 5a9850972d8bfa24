package graph

import (
	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

type pair struct {
	from types.TokenID
	to   types.TokenID
}

// Graph is a directed weighted token graph with at most one edge per ordered pair.
// It is immutable once returned by the builder; accessors return copies.
type Graph struct {
	nodes   []types.TokenID
	index   map[types.TokenID]int
	edges   []types.Edge
	byPair  map[pair]int
	succ    map[types.TokenID][]types.TokenID
	symbols map[types.TokenID]string
}

func newGraph(capacity int) *Graph {
	return &Graph{
		nodes:   make([]types.TokenID, 0, capacity),
		index:   make(map[types.TokenID]int, capacity),
		edges:   make([]types.Edge, 0, capacity),
		byPair:  make(map[pair]int, capacity),
		succ:    make(map[types.TokenID][]types.TokenID, capacity),
		symbols: make(map[types.TokenID]string, capacity),
	}
}

// addNode registers a node on first sight, keeping first-appearance order.
func (g *Graph) addNode(id types.TokenID, symbol string) {
	if _, ok := g.index[id]; !ok {
		g.index[id] = len(g.nodes)
		g.nodes = append(g.nodes, id)
	}
	if symbol != "" {
		if _, ok := g.symbols[id]; !ok {
			g.symbols[id] = symbol
		}
	}
}

// addEdge inserts e, overwriting any previous edge for the same ordered pair.
// Reports whether an existing edge was replaced.
func (g *Graph) addEdge(e types.Edge) bool {
	g.addNode(e.From, e.FromSymbol)
	g.addNode(e.To, e.ToSymbol)

	key := pair{from: e.From, to: e.To}
	if idx, ok := g.byPair[key]; ok {
		g.edges[idx] = e
		return true
	}

	g.byPair[key] = len(g.edges)
	g.edges = append(g.edges, e)
	g.succ[e.From] = append(g.succ[e.From], e.To)
	return false
}

// Nodes returns the token nodes in first-appearance order.
func (g *Graph) Nodes() []types.TokenID {
	out := make([]types.TokenID, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges in first-insertion order of their ordered pair.
func (g *Graph) Edges() []types.Edge {
	out := make([]types.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of token nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id types.TokenID) bool {
	_, ok := g.index[id]
	return ok
}

// NodeIndex returns the position of id in Nodes(), or -1.
func (g *Graph) NodeIndex(id types.TokenID) int {
	idx, ok := g.index[id]
	if !ok {
		return -1
	}
	return idx
}

// HasEdge reports whether a from→to edge exists.
func (g *Graph) HasEdge(from, to types.TokenID) bool {
	_, ok := g.byPair[pair{from: from, to: to}]
	return ok
}

// Edge returns the from→to edge.
func (g *Graph) Edge(from, to types.TokenID) (types.Edge, bool) {
	idx, ok := g.byPair[pair{from: from, to: to}]
	if !ok {
		return types.Edge{}, false
	}
	return g.edges[idx], true
}

// Successors returns the out-neighbours of id in edge insertion order.
func (g *Graph) Successors(id types.TokenID) []types.TokenID {
	succ := g.succ[id]
	out := make([]types.TokenID, len(succ))
	copy(out, succ)
	return out
}

// Symbol returns the display symbol of a node, taken from an incident edge.
// Falls back to a shortened address when no edge carried a symbol.
func (g *Graph) Symbol(id types.TokenID) string {
	if sym, ok := g.symbols[id]; ok {
		return sym
	}
	return id.Short()
}

// Symbols maps each token in path to its display symbol.
func (g *Graph) Symbols(path []types.TokenID) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = g.Symbol(id)
	}
	return out
}

// PathEdges returns the edges along path, skipping missing hops.
func (g *Graph) PathEdges(path []types.TokenID) []types.Edge {
	if len(path) < 2 {
		return nil
	}

	out := make([]types.Edge, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		if e, ok := g.Edge(path[i], path[i+1]); ok {
			out = append(out, e)
		}
	}
	return out
}
