// Package valuation implements the deal-level calculators: earnings power
// value, EV/EBITDA multiple grids, the LBO capital-structure simulator, the
// DSCR leverage sweep, and the price discipline check.
package valuation

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Input validation errors
// are fatal for the whole run; per-trial and per-draw failures are isolated
// by the callers and reported alongside successful results.
var (
	// ErrInvalidScenario marks a referenced scenario that is absent or has a
	// non-positive WACC.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrInfeasibleStructure marks a debt structure whose required service
	// exceeds available cash in some year, or that leaves no entry equity.
	ErrInfeasibleStructure = errors.New("infeasible structure")

	// ErrConvergenceFailure marks a draw or solve that produced no finite
	// result. Such draws are excluded from aggregates and counted, never
	// silently coerced to zero.
	ErrConvergenceFailure = errors.New("convergence failure")
)

// ConsistencyWarning records an internal cross-check mismatch or a
// non-monotonic result. Warnings are surfaced on results, not fatal.
type ConsistencyWarning struct {
	Check  string  `json:"check"`
	Detail string  `json:"detail"`
	Gap    float64 `json:"gap"`
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("%s: %s (gap %.6f)", w.Check, w.Detail, w.Gap)
}
