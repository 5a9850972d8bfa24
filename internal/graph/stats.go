package graph

// Stats summarises the shape of a graph.
type Stats struct {
	Nodes               int `json:"total_nodes"`
	Edges               int `json:"total_edges"`
	BidirectionalPairs  int `json:"bidirectional_pairs"`
	UnidirectionalEdges int `json:"unidirectional_edges"`
}

// Stats counts nodes, edges and reciprocal token pairs.
func (g *Graph) Stats() Stats {
	bidirectional := 0
	for _, e := range g.edges {
		// Count each reciprocal pair once, from its lexicographically smaller side.
		if e.From < e.To && g.HasEdge(e.To, e.From) {
			bidirectional++
		}
	}

	return Stats{
		Nodes:               len(g.nodes),
		Edges:               len(g.edges),
		BidirectionalPairs:  bidirectional,
		UnidirectionalEdges: len(g.edges) - 2*bidirectional,
	}
}

// EdgeSummary is a display row for one edge.
type EdgeSummary struct {
	Index          int
	From           string
	To             string
	Weight         float64
	TotalFee       float64
	PriceRatio     float64
	SlippageBps    int
	PriceImpactPct float64
}

// EdgeSummaries returns display rows for at most limit edges (all when limit <= 0).
func (g *Graph) EdgeSummaries(limit int) []EdgeSummary {
	n := len(g.edges)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]EdgeSummary, 0, n)
	for i := 0; i < n; i++ {
		e := g.edges[i]
		out = append(out, EdgeSummary{
			Index:          i + 1,
			From:           g.Symbol(e.From),
			To:             g.Symbol(e.To),
			Weight:         e.Weight,
			TotalFee:       e.TotalFee,
			PriceRatio:     e.PriceRatio,
			SlippageBps:    e.SlippageBps,
			PriceImpactPct: e.PriceImpactPct,
		})
	}
	return out
}
