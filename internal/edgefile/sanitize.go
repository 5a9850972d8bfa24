package edgefile

import (
	"errors"

	"github.com/mselser95/solana-cycle-arb/pkg/types"
)

// Dropped describes an edge removed by Sanitize.
type Dropped struct {
	Index int
	Edge  types.Edge
	Err   *types.ValidationError
}

// Sanitize splits edges into those that pass validation and those that would
// make the graph builder reject the whole batch. Quote feeds occasionally
// return zero amounts or self-quotes; serve mode skips those instead of
// failing the run.
func Sanitize(edges []types.Edge) ([]types.Edge, []Dropped) {
	kept := make([]types.Edge, 0, len(edges))
	var dropped []Dropped

	for i := range edges {
		err := edges[i].Validate()
		if err == nil {
			kept = append(kept, edges[i])
			continue
		}

		var vErr *types.ValidationError
		if !errors.As(err, &vErr) {
			vErr = types.NewValidationError(i, "", err.Error())
		}
		vErr.Index = i
		dropped = append(dropped, Dropped{Index: i, Edge: edges[i], Err: vErr})
	}

	return kept, dropped
}
