package arbitrage

import (
	"errors"
	"fmt"
)

// AlgorithmError is an unexpected failure inside one search algorithm. The
// detector records it and continues with the remaining algorithms.
type AlgorithmError struct {
	Algorithm string
	Err       error
}

func (e *AlgorithmError) Error() string {
	return fmt.Sprintf("algorithm %s failed: %v", e.Algorithm, e.Err)
}

func (e *AlgorithmError) Unwrap() error {
	return e.Err
}

// IsAlgorithmError reports whether err is (or wraps) an AlgorithmError.
func IsAlgorithmError(err error) bool {
	var aErr *AlgorithmError
	return errors.As(err, &aErr)
}

// RejectReason explains why a candidate path produced no opportunity.
// Rejections are expected outcomes, not errors.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectPathTooShort      RejectReason = "path_too_short"
	RejectPathNotClosed     RejectReason = "path_not_closed"
	RejectExceedsMaxHops    RejectReason = "exceeds_max_hops"
	RejectMissingEdge       RejectReason = "missing_edge"
	RejectNonNegativeWeight RejectReason = "non_negative_weight"
	RejectBelowMinProfit    RejectReason = "below_min_profit"
)
