package arbitrage

import (
	"sort"
	"strings"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

const keySep = "\x1f"

// openCycle returns the cycle nodes without the closing repeat of the start.
func openCycle(path []types.TokenID) []types.TokenID {
	if len(path) > 1 && path[0] == path[len(path)-1] {
		return path[:len(path)-1]
	}
	return path
}

// closeCycle appends the start node to an open cycle.
func closeCycle(cycle []types.TokenID) []types.TokenID {
	out := make([]types.TokenID, 0, len(cycle)+1)
	out = append(out, cycle...)
	return append(out, cycle[0])
}

// rotateToMin rotates an open cycle so it starts at its smallest node.
func rotateToMin(cycle []types.TokenID) []types.TokenID {
	if len(cycle) == 0 {
		return nil
	}

	minIdx := 0
	for i, t := range cycle {
		if t < cycle[minIdx] {
			minIdx = i
		}
	}

	out := make([]types.TokenID, 0, len(cycle))
	out = append(out, cycle[minIdx:]...)
	return append(out, cycle[:minIdx]...)
}

// CanonicalRotation returns the closed form of path rotated to start at its
// smallest node. Rotations of the same directed cycle map to the same result.
func CanonicalRotation(path []types.TokenID) []types.TokenID {
	cycle := openCycle(path)
	if len(cycle) == 0 {
		return nil
	}
	return closeCycle(rotateToMin(cycle))
}

// rotationKey identifies a directed cycle up to rotation.
func rotationKey(path []types.TokenID) string {
	return joinKey(rotateToMin(openCycle(path)))
}

// equivalenceKey identifies a cycle up to rotation and reflection.
func equivalenceKey(path []types.TokenID) string {
	cycle := openCycle(path)
	reversed := make([]types.TokenID, len(cycle))
	for i, t := range cycle {
		reversed[len(cycle)-1-i] = t
	}

	forward := joinKey(rotateToMin(cycle))
	backward := joinKey(rotateToMin(reversed))
	if backward < forward {
		return backward
	}
	return forward
}

// nodeSetKey identifies a cycle by its sorted node multiset. This is coarser
// than rotation equivalence: any ordering of the same nodes collides.
func nodeSetKey(path []types.TokenID) string {
	cycle := openCycle(path)
	nodes := make([]types.TokenID, len(cycle))
	copy(nodes, cycle)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return joinKey(nodes)
}

func joinKey(nodes []types.TokenID) string {
	parts := make([]string, len(nodes))
	for i, t := range nodes {
		parts[i] = string(t)
	}
	return strings.Join(parts, keySep)
}

// comparePaths orders paths lexicographically, shorter prefix first.
func comparePaths(a, b []types.TokenID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// preferred reports whether candidate should replace incumbent when both
// represent the same cycle: higher profit wins, then the smaller path.
func preferred(candidate, incumbent *types.Opportunity) bool {
	if candidate.ProfitRatio != incumbent.ProfitRatio {
		return candidate.ProfitRatio > incumbent.ProfitRatio
	}
	return comparePaths(candidate.Path, incumbent.Path) < 0
}

// dedupe keeps one opportunity per key, chosen by preferred, in first-seen key order.
func dedupe(opps []*types.Opportunity, key func([]types.TokenID) string) []*types.Opportunity {
	index := make(map[string]int, len(opps))
	out := make([]*types.Opportunity, 0, len(opps))

	for _, opp := range opps {
		k := key(opp.Path)
		if i, ok := index[k]; ok {
			if preferred(opp, out[i]) {
				out[i] = opp
			}
			continue
		}
		index[k] = len(out)
		out = append(out, opp)
	}

	return out
}
