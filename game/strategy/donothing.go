package strategy

import "github.com/mwegmann/gridrace/game/engine"

// DoNotMove is the trivial strategy: it never accelerates, so the car keeps
// coasting on whatever velocity it already has (standing still from a
// standing start). It is also the fallback when a smarter strategy cannot
// produce a plan.
type DoNotMove struct{}

// NewDoNotMove creates the no-acceleration strategy.
func NewDoNotMove() *DoNotMove {
	return &DoNotMove{}
}

// NextMove always returns the neutral acceleration.
func (s *DoNotMove) NextMove() engine.Direction {
	return engine.None
}
